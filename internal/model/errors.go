package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error taxonomy shared by services and handlers. Repository errors are
// translated into these at the service boundary; nothing is silently
// swallowed.
var (
	ErrValidation            = errors.New("validation failed")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrProductNotFound       = errors.New("product not found")
	ErrPersonNotFound        = errors.New("person not found")
	ErrSaleNotFound          = errors.New("sale not found")
	ErrDuplicateProductName  = errors.New("product name already exists")
	ErrCommitFailed          = errors.New("sale commit failed")
	ErrBalanceRequiresPerson = errors.New("balance payment requires a person")
)

// InsufficientStockError identifies the cart line that could not be
// reserved. Carrying the observed stock lets clients re-render quantities
// without another fetch.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: requested %d, available %d",
		e.Name, e.Requested, e.Available)
}
