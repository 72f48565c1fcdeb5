package model

import (
	"errors"
	"fmt"
)

var (
	// Account related errors
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already registered")

	// Catalog related errors
	ErrItemNotFound      = errors.New("item not found")
	ErrInsufficientStock = errors.New("insufficient stock")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)

// StockError reports a purchase that asked for more units than are on hand.
type StockError struct {
	ItemID    int64
	Name      string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d: requested %d, available %d", e.ItemID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}
