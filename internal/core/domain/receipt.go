package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptRecord is the immutable result of a confirmed sale, handed to
// formatters and publishers.
type ReceiptRecord struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Timestamp time.Time       `json:"timestamp"`
}

func (r ReceiptRecord) UnitCount() int {
	n := 0
	for _, it := range r.Items {
		n += it.Quantity
	}
	return n
}
