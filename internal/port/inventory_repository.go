package port

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rl1809/counter-pos/internal/core/domain"
)

type InventoryRepository interface {
	// Create persists a new item and returns its store-assigned id
	Create(ctx context.Context, name string, price decimal.Decimal, stock int) (int64, error)

	// Update overwrites every field of the record, returns affected rows (0 if id is missing)
	Update(ctx context.Context, record domain.InventoryRecord) (int64, error)

	// SetStock overwrites stock only, leaving name and price untouched
	SetStock(ctx context.Context, id int64, stock int) error

	// Delete removes the record, returns affected rows
	Delete(ctx context.Context, id int64) (int64, error)

	// ListAll returns every record sorted by name, then id
	ListAll(ctx context.Context) ([]domain.InventoryRecord, error)
}
