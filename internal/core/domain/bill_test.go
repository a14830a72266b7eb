package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestBillSession_TotalUsesSnapshotPrices(t *testing.T) {
	s := NewBillSession("bill-1", time.Now())
	s.Lines = append(s.Lines,
		LineItem{InventoryID: 1, Name: "Pen", UnitPrice: decimal.NewFromInt(10), Quantity: 2},
		LineItem{InventoryID: 2, Name: "Pad", UnitPrice: decimal.RequireFromString("2.25"), Quantity: 4},
	)

	if got := s.Total(); !got.Equal(decimal.NewFromInt(29)) {
		t.Errorf("expected total 29, got %s", got)
	}
	if s.State() != BillOpen {
		t.Errorf("expected open state, got %s", s.State())
	}
}

func TestBillSession_IndexOfAndQuantity(t *testing.T) {
	s := NewBillSession("bill-1", time.Now())
	s.Lines = append(s.Lines, LineItem{InventoryID: 7, Quantity: 3})

	if s.IndexOf(7) != 0 {
		t.Errorf("expected index 0, got %d", s.IndexOf(7))
	}
	if s.IndexOf(8) != -1 {
		t.Errorf("expected -1 for missing id, got %d", s.IndexOf(8))
	}
	if s.Quantity(7) != 3 || s.Quantity(8) != 0 {
		t.Errorf("unexpected quantities %d/%d", s.Quantity(7), s.Quantity(8))
	}
	if s.ValidIndex(1) || s.ValidIndex(-1) || !s.ValidIndex(0) {
		t.Error("ValidIndex disagrees with line count")
	}
}

func TestBillSession_CloneIsDeep(t *testing.T) {
	s := NewBillSession("bill-1", time.Now())
	s.Lines = append(s.Lines, LineItem{InventoryID: 1, Quantity: 1})

	c := s.Clone()
	c.Lines[0].Quantity = 5
	s.Clear()

	if len(c.Lines) != 1 || c.Lines[0].Quantity != 5 {
		t.Errorf("clone changed with original: %+v", c.Lines)
	}
	if s.State() != BillEmpty {
		t.Errorf("expected empty state after Clear, got %s", s.State())
	}
}

func TestValidateItem(t *testing.T) {
	if err := ValidateItem(decimal.NewFromInt(1), 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateItem(decimal.NewFromInt(-1), 0); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for negative price, got %v", err)
	}
	if err := ValidateItem(decimal.Zero, -1); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for negative stock, got %v", err)
	}
}

func TestInventoryRecord_IsLowStock(t *testing.T) {
	if !(InventoryRecord{Stock: 9}).IsLowStock() {
		t.Error("expected 9 to be low stock")
	}
	if (InventoryRecord{Stock: 10}).IsLowStock() {
		t.Error("expected 10 not to be low stock")
	}
}
