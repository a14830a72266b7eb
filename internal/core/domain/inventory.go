package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LowStockThreshold marks records the catalog view should flag for restocking.
const LowStockThreshold = 10

type InventoryRecord struct {
	ID    int64
	Name  string
	Price decimal.Decimal
	Stock int
}

func (r InventoryRecord) IsLowStock() bool {
	return r.Stock < LowStockThreshold
}

// ValidateItem checks the fields an inventory write is allowed to persist.
func ValidateItem(price decimal.Decimal, stock int) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return ValidateStock(stock)
}

func ValidateStock(stock int) error {
	if stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrValidation)
	}
	return nil
}
