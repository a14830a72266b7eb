package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/counter-pos/internal/core/domain"
	"github.com/rl1809/counter-pos/internal/port"
)

// CatalogService edits inventory records and keeps the shared cache in sync.
type CatalogService struct {
	repo   port.InventoryRepository
	cache  *InventoryCache
	logger *zap.Logger
}

func NewCatalogService(repo port.InventoryRepository, cache *InventoryCache, logger *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, cache: cache, logger: logger}
}

func (s *CatalogService) CreateItem(ctx context.Context, name string, price decimal.Decimal, stock int) (domain.InventoryRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.InventoryRecord{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if err := domain.ValidateItem(price, stock); err != nil {
		return domain.InventoryRecord{}, err
	}

	id, err := s.repo.Create(ctx, name, price, stock)
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("create item: %w", err)
	}

	rec := domain.InventoryRecord{ID: id, Name: name, Price: price, Stock: stock}
	s.cache.Upsert(rec)
	s.logger.Info("item created", zap.Int64("inventory_id", id), zap.String("name", name), zap.Int("stock", stock))
	return rec, nil
}

// UpdateItem overwrites a record. A missing id is reported as ErrNotFound with
// nothing written.
func (s *CatalogService) UpdateItem(ctx context.Context, rec domain.InventoryRecord) (domain.InventoryRecord, error) {
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.Name == "" {
		return domain.InventoryRecord{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if err := domain.ValidateItem(rec.Price, rec.Stock); err != nil {
		return domain.InventoryRecord{}, err
	}

	n, err := s.cache.UpdateRecord(ctx, rec)
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("update item %d: %w", rec.ID, err)
	}
	if n == 0 {
		return domain.InventoryRecord{}, fmt.Errorf("update item %d: %w", rec.ID, domain.ErrNotFound)
	}

	s.logger.Info("item updated", zap.Int64("inventory_id", rec.ID), zap.Int("stock", rec.Stock))
	return rec, nil
}

func (s *CatalogService) DeleteItem(ctx context.Context, id int64) error {
	n, err := s.cache.DeleteRecord(ctx, id)
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete item %d: %w", id, domain.ErrNotFound)
	}

	s.logger.Info("item deleted", zap.Int64("inventory_id", id))
	return nil
}

// ListItems reloads the cache from the store and returns it.
func (s *CatalogService) ListItems(ctx context.Context) ([]domain.InventoryRecord, error) {
	if err := s.cache.Load(ctx); err != nil {
		return nil, err
	}
	return s.cache.List(), nil
}
