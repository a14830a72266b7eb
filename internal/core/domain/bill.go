package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BillState string

const (
	BillEmpty BillState = "empty"
	BillOpen  BillState = "open"
)

// LineItem is one entry of an open bill. Name and UnitPrice are captured when
// the item is first added and never follow later catalog edits.
type LineItem struct {
	InventoryID int64           `json:"inventory_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// BillSession holds the lines of one unconfirmed sale, at most one per inventory id.
type BillSession struct {
	ID       string     `json:"id"`
	Lines    []LineItem `json:"lines"`
	OpenedAt time.Time  `json:"opened_at"`
}

func NewBillSession(id string, openedAt time.Time) *BillSession {
	return &BillSession{
		ID:       id,
		Lines:    []LineItem{},
		OpenedAt: openedAt,
	}
}

func (s *BillSession) State() BillState {
	if len(s.Lines) == 0 {
		return BillEmpty
	}
	return BillOpen
}

// IndexOf returns the line index holding inventoryID, or -1.
func (s *BillSession) IndexOf(inventoryID int64) int {
	for i, l := range s.Lines {
		if l.InventoryID == inventoryID {
			return i
		}
	}
	return -1
}

func (s *BillSession) ValidIndex(i int) bool {
	return i >= 0 && i < len(s.Lines)
}

// Quantity returns how many units of inventoryID the bill currently holds.
func (s *BillSession) Quantity(inventoryID int64) int {
	if i := s.IndexOf(inventoryID); i >= 0 {
		return s.Lines[i].Quantity
	}
	return 0
}

func (s *BillSession) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (s *BillSession) Clear() {
	s.Lines = s.Lines[:0]
}

// SnapshotLines returns a copy of the lines that shares no memory with the session.
func (s *BillSession) SnapshotLines() []LineItem {
	lines := make([]LineItem, len(s.Lines))
	copy(lines, s.Lines)
	return lines
}

func (s *BillSession) Clone() *BillSession {
	c := *s
	c.Lines = s.SnapshotLines()
	return &c
}
