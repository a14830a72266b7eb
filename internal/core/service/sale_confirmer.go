package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/counter-pos/internal/core/domain"
)

// SaleConfirmer turns an open bill into a receipt. Stock was already taken as
// lines were added, so confirming changes no stock.
type SaleConfirmer struct {
	now    func() time.Time
	newID  func() string
	logger *zap.Logger
}

func NewSaleConfirmer(logger *zap.Logger) *SaleConfirmer {
	return &SaleConfirmer{
		now:    time.Now,
		newID:  uuid.NewString,
		logger: logger,
	}
}

func (c *SaleConfirmer) Confirm(s *domain.BillSession) (domain.ReceiptRecord, error) {
	if len(s.Lines) == 0 {
		return domain.ReceiptRecord{}, fmt.Errorf("confirm bill %s: %w", s.ID, domain.ErrEmptySale)
	}

	receipt := domain.ReceiptRecord{
		ID:        c.newID(),
		SessionID: s.ID,
		Items:     s.SnapshotLines(),
		Total:     s.Total(),
		Timestamp: c.now(),
	}
	s.Clear()

	c.logger.Info("sale confirmed",
		zap.String("session_id", receipt.SessionID),
		zap.String("receipt_id", receipt.ID),
		zap.Int("lines", len(receipt.Items)),
		zap.String("total", receipt.Total.StringFixed(2)),
	)
	return receipt, nil
}
