package model

import (
	"math"
	"time"
)

// MaxQuantity is the largest stock level the items table can hold.
const MaxQuantity = math.MaxInt32

type Item struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemInput carries every mutable field of an item. Price and Quantity are
// pointers so an omitted field can be told apart from an explicit zero.
type ItemInput struct {
	Name     string   `json:"name" validate:"required"`
	Category string   `json:"category" validate:"required"`
	Price    *float64 `json:"price" validate:"required,gt=0"`
	Quantity *int     `json:"quantity" validate:"required,gte=0,lte=2147483647"`
}

type SearchFilters struct {
	Name     string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

func (f SearchFilters) IsEmpty() bool {
	return f.Name == "" && f.Category == "" && f.MinPrice == nil && f.MaxPrice == nil
}

// QuantityRequest is the body of purchase and restock. The upper bound is
// applied per operation: an oversized purchase is a stock shortfall, an
// oversized restock is invalid.
type QuantityRequest struct {
	Quantity int `json:"quantity" validate:"gt=0"`
}

type InventoryResult struct {
	Item
	Message string `json:"message"`
}

type DeleteResult struct {
	Deleted bool  `json:"deleted"`
	ID      int64 `json:"id"`
}

type ItemListData struct {
	Items []Item `json:"items"`
}
