package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rl1809/counter-pos/internal/core/domain"
)

// MemoryInventoryStore keeps the catalog in process memory. It backs the
// server when no database is configured.
type MemoryInventoryStore struct {
	mu      sync.Mutex
	records map[int64]domain.InventoryRecord
	nextID  int64
}

func NewMemoryInventoryStore() *MemoryInventoryStore {
	return &MemoryInventoryStore{records: make(map[int64]domain.InventoryRecord)}
}

func (m *MemoryInventoryStore) Create(ctx context.Context, name string, price decimal.Decimal, stock int) (int64, error) {
	if err := domain.ValidateItem(price, stock); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.records[m.nextID] = domain.InventoryRecord{ID: m.nextID, Name: name, Price: price, Stock: stock}
	return m.nextID, nil
}

func (m *MemoryInventoryStore) Update(ctx context.Context, rec domain.InventoryRecord) (int64, error) {
	if err := domain.ValidateItem(rec.Price, rec.Stock); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.ID]; !ok {
		return 0, nil
	}
	m.records[rec.ID] = rec
	return 1, nil
}

func (m *MemoryInventoryStore) SetStock(ctx context.Context, id int64, stock int) error {
	if err := domain.ValidateStock(stock); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[id]; ok {
		r.Stock = stock
		m.records[id] = r
	}
	return nil
}

func (m *MemoryInventoryStore) Delete(ctx context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return 0, nil
	}
	delete(m.records, id)
	return 1, nil
}

func (m *MemoryInventoryStore) ListAll(ctx context.Context) ([]domain.InventoryRecord, error) {
	m.mu.Lock()
	records := make([]domain.InventoryRecord, 0, len(m.records))
	for _, r := range m.records {
		records = append(records, r)
	}
	m.mu.Unlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}
