package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rl1809/counter-pos/internal/core/domain"
)

// BillingService mutates an explicit bill session and keeps inventory stock in
// step with it. Each call is one step: the line change and the stock change
// either both happen or neither does.
type BillingService struct {
	cache  *InventoryCache
	logger *zap.Logger
}

func NewBillingService(cache *InventoryCache, logger *zap.Logger) *BillingService {
	return &BillingService{cache: cache, logger: logger}
}

// AddUnit adds one unit of inventoryID, merging into an existing line.
func (b *BillingService) AddUnit(ctx context.Context, s *domain.BillSession, inventoryID int64) (AdjustResult, error) {
	rec, ok := b.cache.Find(inventoryID)
	if !ok {
		return AdjustResult{}, fmt.Errorf("add item %d: %w", inventoryID, domain.ErrNotFound)
	}
	if rec.Stock <= 0 {
		return AdjustResult{}, fmt.Errorf("add %q: %w", rec.Name, domain.ErrOutOfStock)
	}

	return b.apply(ctx, s, inventoryID, 1, func() {
		if i := s.IndexOf(inventoryID); i >= 0 {
			s.Lines[i].Quantity++
			return
		}
		s.Lines = append(s.Lines, domain.LineItem{
			InventoryID: rec.ID,
			Name:        rec.Name,
			UnitPrice:   rec.Price,
			Quantity:    1,
		})
	})
}

func (b *BillingService) IncrementLine(ctx context.Context, s *domain.BillSession, index int) (AdjustResult, error) {
	if !s.ValidIndex(index) {
		return AdjustResult{}, fmt.Errorf("increment line %d of %d: %w", index, len(s.Lines), domain.ErrLineIndex)
	}

	line := s.Lines[index]
	rec, ok := b.cache.Find(line.InventoryID)
	if !ok {
		return AdjustResult{}, fmt.Errorf("increment %q: %w", line.Name, domain.ErrNotFound)
	}
	if rec.Stock <= 0 {
		return AdjustResult{}, fmt.Errorf("increment %q: %w", line.Name, domain.ErrOutOfStock)
	}

	return b.apply(ctx, s, line.InventoryID, 1, func() {
		s.Lines[index].Quantity++
	})
}

// RemoveLine drops a whole line and gives its units back to stock. A line whose
// item was deleted from the catalog is dropped without a restore.
func (b *BillingService) RemoveLine(ctx context.Context, s *domain.BillSession, index int) (AdjustResult, error) {
	if !s.ValidIndex(index) {
		return AdjustResult{}, fmt.Errorf("remove line %d of %d: %w", index, len(s.Lines), domain.ErrLineIndex)
	}

	line := s.Lines[index]
	drop := func() {
		s.Lines = append(s.Lines[:index], s.Lines[index+1:]...)
	}

	if _, ok := b.cache.Find(line.InventoryID); !ok {
		drop()
		b.logger.Warn("removed line for deleted item, nothing restored",
			zap.String("session_id", s.ID),
			zap.Int64("inventory_id", line.InventoryID),
			zap.Int("quantity", line.Quantity),
		)
		return AdjustResult{ID: line.InventoryID}, nil
	}

	return b.apply(ctx, s, line.InventoryID, -line.Quantity, drop)
}

// Cancel gives back every line's units and empties the bill. It stops at the
// first failed restore; lines not yet restored stay on the bill.
func (b *BillingService) Cancel(ctx context.Context, s *domain.BillSession) ([]AdjustResult, error) {
	results := make([]AdjustResult, 0, len(s.Lines))
	for len(s.Lines) > 0 {
		res, err := b.RemoveLine(ctx, s, 0)
		if err != nil {
			return results, fmt.Errorf("cancel bill %s: %w", s.ID, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (b *BillingService) apply(ctx context.Context, s *domain.BillSession, inventoryID int64, delta int, mutate func()) (AdjustResult, error) {
	before := s.SnapshotLines()
	mutate()

	res, err := b.cache.AdjustStock(ctx, inventoryID, delta)
	if err != nil {
		s.Lines = before
		if delta > 0 && errors.Is(err, domain.ErrInsufficientStock) {
			return AdjustResult{}, fmt.Errorf("%w: %w", domain.ErrOutOfStock, err)
		}
		return AdjustResult{}, err
	}
	return res, nil
}
