package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/counter-pos/internal/core/domain"
)

func TestMemoryInventoryStore_ListSortedByName(t *testing.T) {
	store := NewMemoryInventoryStore()
	ctx := context.Background()

	ids := make(map[string][]int64)
	for _, name := range []string{"Pen", "Book", "Pen", "Eraser", "Pen"} {
		id, err := store.Create(ctx, name, decimal.NewFromInt(1), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids[name] = append(ids[name], id)
	}

	// equal names fall back to id order; run a few times since the store
	// iterates a map
	for round := 0; round < 5; round++ {
		records, err := store.ListAll(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 5 {
			t.Fatalf("expected 5 records, got %d", len(records))
		}

		want := []struct {
			name string
			id   int64
		}{
			{"Book", ids["Book"][0]},
			{"Eraser", ids["Eraser"][0]},
			{"Pen", ids["Pen"][0]},
			{"Pen", ids["Pen"][1]},
			{"Pen", ids["Pen"][2]},
		}
		for i, r := range records {
			if r.Name != want[i].name || r.ID != want[i].id {
				t.Errorf("position %d: expected %s/%d, got %s/%d", i, want[i].name, want[i].id, r.Name, r.ID)
			}
		}
	}
}

func TestMemoryInventoryStore_UpdateDeleteMissing(t *testing.T) {
	store := NewMemoryInventoryStore()
	ctx := context.Background()

	rows, err := store.Update(ctx, domain.InventoryRecord{ID: 42, Name: "x", Price: decimal.Zero})
	if err != nil || rows != 0 {
		t.Errorf("expected 0 rows and no error, got %d, %v", rows, err)
	}

	rows, err = store.Delete(ctx, 42)
	if err != nil || rows != 0 {
		t.Errorf("expected 0 rows and no error, got %d, %v", rows, err)
	}
}

func TestMemoryInventoryStore_Validation(t *testing.T) {
	store := NewMemoryInventoryStore()
	ctx := context.Background()

	if _, err := store.Create(ctx, "x", decimal.NewFromInt(-1), 1); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for negative price, got %v", err)
	}

	id, _ := store.Create(ctx, "x", decimal.NewFromInt(1), 1)
	if err := store.SetStock(ctx, id, -1); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for negative stock, got %v", err)
	}
}

func TestMemorySessionStore_RoundTrip(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	if _, err := store.LoadSession(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	s := domain.NewBillSession("b1", timeFixture)
	s.Lines = append(s.Lines, domain.LineItem{InventoryID: 1, Name: "Pen", UnitPrice: decimal.NewFromInt(10), Quantity: 2})
	if err := store.SaveSession(ctx, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// mutating the caller's copy must not leak into the store
	s.Lines[0].Quantity = 99

	loaded, err := store.LoadSession(ctx, "b1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Lines[0].Quantity != 2 {
		t.Errorf("expected stored quantity 2, got %d", loaded.Lines[0].Quantity)
	}

	store.DeleteSession(ctx, "b1")
	if _, err := store.LoadSession(ctx, "b1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestMemorySessionStore_IdleSessions(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	now := timeFixture
	store.now = func() time.Time { return now }
	store.SaveSession(ctx, domain.NewBillSession("old", timeFixture))
	now = now.Add(time.Hour)
	store.SaveSession(ctx, domain.NewBillSession("new", timeFixture))

	ids, err := store.IdleSessions(ctx, timeFixture.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "old" {
		t.Errorf("expected [old], got %v", ids)
	}

	// saving again renews the lease
	store.SaveSession(ctx, domain.NewBillSession("old", timeFixture))
	ids, _ = store.IdleSessions(ctx, timeFixture.Add(30*time.Minute))
	if len(ids) != 0 {
		t.Errorf("expected no idle bills, got %v", ids)
	}

	store.DeleteSession(ctx, "new")
	ids, _ = store.IdleSessions(ctx, now.Add(time.Minute))
	if len(ids) != 1 || ids[0] != "old" {
		t.Errorf("expected [old], got %v", ids)
	}
}

func TestMemorySessionStore_Idempotency(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	ok, _ := store.SetIdempotency(ctx, "req-1")
	if !ok {
		t.Error("first call should succeed")
	}
	ok, _ = store.SetIdempotency(ctx, "req-1")
	if ok {
		t.Error("second call should be rejected")
	}
}
