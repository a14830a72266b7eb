package handler

import (
	"time"

	"github.com/rl1809/counter-pos/internal/core/domain"
	"github.com/rl1809/counter-pos/internal/core/service"
)

// Money values leave the process as fixed two-decimal strings.

type ItemView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Stock    int    `json:"stock"`
	LowStock bool   `json:"low_stock"`
}

type LineView struct {
	InventoryID int64  `json:"inventory_id"`
	Name        string `json:"name"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	Subtotal    string `json:"subtotal"`
}

type BillView struct {
	ID       string     `json:"id"`
	State    string     `json:"state"`
	Lines    []LineView `json:"lines"`
	Total    string     `json:"total"`
	OpenedAt time.Time  `json:"opened_at"`
}

type ReceiptView struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Items     []LineView `json:"items"`
	Total     string     `json:"total"`
	Timestamp time.Time  `json:"timestamp"`
}

type ExportView struct {
	Exporter string `json:"exporter"`
	Location string `json:"location,omitempty"`
	Error    string `json:"error,omitempty"`
}

func toItemView(r domain.InventoryRecord) ItemView {
	return ItemView{
		ID:       r.ID,
		Name:     r.Name,
		Price:    r.Price.StringFixed(2),
		Stock:    r.Stock,
		LowStock: r.IsLowStock(),
	}
}

func toItemViews(records []domain.InventoryRecord) []ItemView {
	views := make([]ItemView, 0, len(records))
	for _, r := range records {
		views = append(views, toItemView(r))
	}
	return views
}

func toLineViews(lines []domain.LineItem) []LineView {
	views := make([]LineView, 0, len(lines))
	for _, l := range lines {
		views = append(views, LineView{
			InventoryID: l.InventoryID,
			Name:        l.Name,
			UnitPrice:   l.UnitPrice.StringFixed(2),
			Quantity:    l.Quantity,
			Subtotal:    l.Subtotal().StringFixed(2),
		})
	}
	return views
}

func toBillView(s *domain.BillSession) *BillView {
	return &BillView{
		ID:       s.ID,
		State:    string(s.State()),
		Lines:    toLineViews(s.Lines),
		Total:    s.Total().StringFixed(2),
		OpenedAt: s.OpenedAt,
	}
}

func toReceiptView(r domain.ReceiptRecord) *ReceiptView {
	return &ReceiptView{
		ID:        r.ID,
		SessionID: r.SessionID,
		Items:     toLineViews(r.Items),
		Total:     r.Total.StringFixed(2),
		Timestamp: r.Timestamp,
	}
}

func toExportViews(results []service.ExportResult) []ExportView {
	views := make([]ExportView, 0, len(results))
	for _, r := range results {
		v := ExportView{Exporter: r.Exporter, Location: r.Location}
		if r.Err != nil {
			v.Error = r.Err.Error()
		}
		views = append(views, v)
	}
	return views
}
