package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rl1809/counter-pos/internal/core/domain"
	"github.com/rl1809/counter-pos/internal/port"
)

// AdjustResult reports a stock change that was written to both the store and
// the mirror. Invalidated tells display code to re-derive what it shows.
type AdjustResult struct {
	ID          int64
	Previous    int
	Stock       int
	Invalidated bool
}

// Delta is the consumption the adjustment applied (negative for restores).
func (r AdjustResult) Delta() int {
	return r.Previous - r.Stock
}

// InventoryCache mirrors the inventory store in memory. Every stock change is
// written through to the store inside the same critical section, so the mirror
// never shows a value the store does not hold.
type InventoryCache struct {
	repo   port.InventoryRepository
	logger *zap.Logger
	group  singleflight.Group

	mu      sync.RWMutex
	records map[int64]domain.InventoryRecord
	version uint64
}

func NewInventoryCache(repo port.InventoryRepository, logger *zap.Logger) *InventoryCache {
	return &InventoryCache{
		repo:    repo,
		logger:  logger,
		records: make(map[int64]domain.InventoryRecord),
	}
}

// Load replaces the mirror with the store's current contents. Concurrent
// callers share a single ListAll.
func (c *InventoryCache) Load(ctx context.Context) error {
	_, err, _ := c.group.Do("load", func() (interface{}, error) {
		c.mu.Lock()
		defer c.mu.Unlock()

		records, err := c.repo.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("list inventory: %w", err)
		}

		c.records = make(map[int64]domain.InventoryRecord, len(records))
		for _, r := range records {
			c.records[r.ID] = r
		}
		c.version++
		c.logger.Debug("inventory cache loaded", zap.Int("records", len(records)))
		return nil, nil
	})
	return err
}

func (c *InventoryCache) Find(id int64) (domain.InventoryRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.records[id]
	return r, ok
}

// List returns the mirrored records in store order (name, then id).
func (c *InventoryCache) List() []domain.InventoryRecord {
	c.mu.RLock()
	records := make([]domain.InventoryRecord, 0, len(c.records))
	for _, r := range c.records {
		records = append(records, r)
	}
	c.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		return records[i].ID < records[j].ID
	})
	return records
}

func (c *InventoryCache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// AdjustStock consumes delta units (a negative delta restores them). The
// store is written first; on failure the mirror is left untouched.
func (c *InventoryCache) AdjustStock(ctx context.Context, id int64, delta int) (AdjustResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[id]
	if !ok {
		return AdjustResult{}, fmt.Errorf("adjust stock of item %d: %w", id, domain.ErrNotFound)
	}

	newStock := rec.Stock - delta
	if newStock < 0 {
		return AdjustResult{}, fmt.Errorf("item %d has %d left, %d requested: %w",
			id, rec.Stock, delta, domain.ErrInsufficientStock)
	}

	if err := c.repo.SetStock(ctx, id, newStock); err != nil {
		return AdjustResult{}, fmt.Errorf("persist stock of item %d: %w", id, err)
	}

	previous := rec.Stock
	rec.Stock = newStock
	c.records[id] = rec
	c.version++

	c.logger.Debug("stock adjusted",
		zap.Int64("inventory_id", id),
		zap.Int("delta", delta),
		zap.Int("stock", newStock),
	)

	return AdjustResult{ID: id, Previous: previous, Stock: newStock, Invalidated: true}, nil
}

// UpdateRecord overwrites a record in the store and the mirror under the stock
// lock, so a concurrent AdjustStock cannot write back a stale stock value.
// It returns the store's affected rows; the mirror is untouched when none.
func (c *InventoryCache) UpdateRecord(ctx context.Context, r domain.InventoryRecord) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.repo.Update(ctx, r)
	if err != nil || n == 0 {
		return n, err
	}
	c.records[r.ID] = r
	c.version++
	return n, nil
}

// DeleteRecord removes a record from the store and the mirror under the stock lock.
func (c *InventoryCache) DeleteRecord(ctx context.Context, id int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.repo.Delete(ctx, id)
	if err != nil {
		return n, err
	}
	if _, ok := c.records[id]; ok {
		delete(c.records, id)
		c.version++
	}
	return n, nil
}

// Upsert mirrors a record the catalog just wrote to the store.
func (c *InventoryCache) Upsert(r domain.InventoryRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[r.ID] = r
	c.version++
}
