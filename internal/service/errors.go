package service

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"sweetshop/internal/model"
	"sweetshop/pkg/apierror"
)

// itemError translates store errors for item operations into API errors.
// Errors it does not recognise are returned unchanged.
func itemError(err error, id int64) error {
	var stockErr *model.StockError
	switch {
	case errors.As(err, &stockErr):
		if stockErr.Available == 0 {
			return apierror.New(apierror.CodeInsufficientStock, "Sweet is out of stock", strconv.FormatInt(id, 10), http.StatusBadRequest)
		}
		return apierror.New(apierror.CodeInsufficientStock,
			fmt.Sprintf("Insufficient stock. Only %d available", stockErr.Available),
			strconv.FormatInt(id, 10), http.StatusBadRequest)
	case errors.Is(err, model.ErrItemNotFound):
		return apierror.New(apierror.CodeNotFound, fmt.Sprintf("Sweet with id %d not found", id), strconv.FormatInt(id, 10), http.StatusNotFound)
	case errors.Is(err, model.ErrInvalidInput):
		return validationError("value out of range", strconv.FormatInt(id, 10))
	default:
		return err
	}
}
