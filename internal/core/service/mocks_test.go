package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/counter-pos/internal/core/domain"
)

var errStoreDown = errors.New("store unavailable")

// Mock InventoryRepository
type mockInventoryRepo struct {
	mu            sync.Mutex
	records       map[int64]domain.InventoryRecord
	nextID        int64
	failSetStock  bool
	setStockCalls int
	listCalls     int

	// when set, SetStock signals setStockEntered and blocks until setStockGate closes
	setStockEntered chan struct{}
	setStockGate    chan struct{}
}

func newMockInventoryRepo(records ...domain.InventoryRecord) *mockInventoryRepo {
	m := &mockInventoryRepo{records: make(map[int64]domain.InventoryRecord)}
	for _, r := range records {
		m.records[r.ID] = r
		if r.ID > m.nextID {
			m.nextID = r.ID
		}
	}
	return m
}

func (m *mockInventoryRepo) Create(ctx context.Context, name string, price decimal.Decimal, stock int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.records[m.nextID] = domain.InventoryRecord{ID: m.nextID, Name: name, Price: price, Stock: stock}
	return m.nextID, nil
}

func (m *mockInventoryRepo) Update(ctx context.Context, rec domain.InventoryRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.ID]; !ok {
		return 0, nil
	}
	m.records[rec.ID] = rec
	return 1, nil
}

func (m *mockInventoryRepo) SetStock(ctx context.Context, id int64, stock int) error {
	if m.setStockGate != nil {
		m.setStockEntered <- struct{}{}
		<-m.setStockGate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.setStockCalls++
	if m.failSetStock {
		return errStoreDown
	}
	if err := domain.ValidateStock(stock); err != nil {
		return err
	}
	r := m.records[id]
	r.Stock = stock
	m.records[id] = r
	return nil
}

func (m *mockInventoryRepo) Delete(ctx context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return 0, nil
	}
	delete(m.records, id)
	return 1, nil
}

func (m *mockInventoryRepo) ListAll(ctx context.Context) ([]domain.InventoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	records := make([]domain.InventoryRecord, 0, len(m.records))
	for _, r := range m.records {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

func (m *mockInventoryRepo) stock(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[id].Stock
}

func (m *mockInventoryRepo) setFailSetStock(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSetStock = fail
}

// Mock SessionRepository and IdempotencyRepository
type mockSessionRepo struct {
	mu             sync.Mutex
	sessions       map[string]*domain.BillSession
	idempotencySet map[string]bool
	savedAt        map[string]time.Time
	failSave       bool
	failDelete     bool
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{
		sessions:       make(map[string]*domain.BillSession),
		idempotencySet: make(map[string]bool),
		savedAt:        make(map[string]time.Time),
	}
}

func (m *mockSessionRepo) SaveSession(ctx context.Context, s *domain.BillSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return errStoreDown
	}
	m.sessions[s.ID] = s.Clone()
	m.savedAt[s.ID] = time.Now()
	return nil
}

func (m *mockSessionRepo) LoadSession(ctx context.Context, id string) (*domain.BillSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *mockSessionRepo) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		return errStoreDown
	}
	delete(m.sessions, id)
	delete(m.savedAt, id)
	return nil
}

func (m *mockSessionRepo) IdleSessions(ctx context.Context, savedBefore time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, at := range m.savedAt {
		if at.Before(savedBefore) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockSessionRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

func (m *mockSessionRepo) setFailSave(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSave = fail
}

func (m *mockSessionRepo) setFailDelete(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failDelete = fail
}

// Mock ReceiptExporter
type mockExporter struct {
	name     string
	err      error
	receipts []domain.ReceiptRecord
}

func (m *mockExporter) Name() string {
	return m.name
}

func (m *mockExporter) Export(ctx context.Context, r domain.ReceiptRecord) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.receipts = append(m.receipts, r)
	return "mock://" + r.ID, nil
}

func item(id int64, name, price string, stock int) domain.InventoryRecord {
	return domain.InventoryRecord{ID: id, Name: name, Price: decimal.RequireFromString(price), Stock: stock}
}
