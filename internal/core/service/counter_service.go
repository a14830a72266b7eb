package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/counter-pos/internal/core/domain"
	"github.com/rl1809/counter-pos/internal/port"
)

type ExportResult struct {
	Exporter string
	Location string
	Err      error
}

type ConfirmResult struct {
	Receipt domain.ReceiptRecord
	Exports []ExportResult
}

// CounterService is the command surface of the counter. It owns every open
// bill: each command loads the bill, applies one step and stores it again.
type CounterService struct {
	cache     *InventoryCache
	billing   *BillingService
	confirmer *SaleConfirmer
	sessions  port.SessionRepository
	idem      port.IdempotencyRepository
	exporters []port.ReceiptExporter
	logger    *zap.Logger
	now       func() time.Time

	mu sync.Mutex
}

func NewCounterService(
	cache *InventoryCache,
	billing *BillingService,
	confirmer *SaleConfirmer,
	sessions port.SessionRepository,
	idem port.IdempotencyRepository,
	exporters []port.ReceiptExporter,
	logger *zap.Logger,
) *CounterService {
	return &CounterService{
		cache:     cache,
		billing:   billing,
		confirmer: confirmer,
		sessions:  sessions,
		idem:      idem,
		exporters: exporters,
		logger:    logger,
		now:       time.Now,
	}
}

// OpenBill starts an empty bill and refreshes the inventory mirror for it.
func (c *CounterService) OpenBill(ctx context.Context) (*domain.BillSession, error) {
	if err := c.cache.Load(ctx); err != nil {
		return nil, err
	}

	s := domain.NewBillSession(uuid.NewString(), c.now())
	if err := c.sessions.SaveSession(ctx, s); err != nil {
		return nil, fmt.Errorf("save bill %s: %w", s.ID, err)
	}
	c.logger.Info("bill opened", zap.String("session_id", s.ID))
	return s, nil
}

func (c *CounterService) GetBill(ctx context.Context, id string) (*domain.BillSession, error) {
	return c.sessions.LoadSession(ctx, id)
}

func (c *CounterService) AddToBill(ctx context.Context, sessionID string, inventoryID int64, requestID string) (*domain.BillSession, error) {
	return c.step(ctx, sessionID, func(s *domain.BillSession) (AdjustResult, error) {
		if requestID != "" {
			ok, err := c.idem.SetIdempotency(ctx, fmt.Sprintf("bill:%s:req:%s", sessionID, requestID))
			if err != nil {
				return AdjustResult{}, fmt.Errorf("idempotency check failed: %w", err)
			}
			if !ok {
				return AdjustResult{}, domain.ErrDuplicateRequest
			}
		}
		return c.billing.AddUnit(ctx, s, inventoryID)
	})
}

func (c *CounterService) IncrementLine(ctx context.Context, sessionID string, index int) (*domain.BillSession, error) {
	return c.step(ctx, sessionID, func(s *domain.BillSession) (AdjustResult, error) {
		return c.billing.IncrementLine(ctx, s, index)
	})
}

func (c *CounterService) RemoveLine(ctx context.Context, sessionID string, index int) (*domain.BillSession, error) {
	return c.step(ctx, sessionID, func(s *domain.BillSession) (AdjustResult, error) {
		return c.billing.RemoveLine(ctx, s, index)
	})
}

// CancelSale gives every unit on the bill back to stock and forgets the bill.
func (c *CounterService) CancelSale(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.sessions.LoadSession(ctx, sessionID)
	if err != nil {
		return err
	}

	results, cancelErr := c.billing.Cancel(ctx, s)
	if cancelErr != nil {
		// keep the lines that still hold stock
		if err := c.sessions.SaveSession(ctx, s); err != nil {
			c.logger.Error("CRITICAL: partially cancelled bill not saved",
				zap.String("session_id", s.ID), zap.Error(err))
		}
		return cancelErr
	}

	if err := c.sessions.DeleteSession(ctx, s.ID); err != nil {
		return fmt.Errorf("delete bill %s: %w", s.ID, err)
	}
	c.logger.Info("bill cancelled", zap.String("session_id", s.ID), zap.Int("lines_restored", len(results)))
	return nil
}

// ConfirmSale finalises the bill and hands the receipt to every exporter.
// Export failures are reported in the result; the sale stays confirmed.
func (c *CounterService) ConfirmSale(ctx context.Context, sessionID string) (ConfirmResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.sessions.LoadSession(ctx, sessionID)
	if err != nil {
		return ConfirmResult{}, err
	}

	receipt, err := c.confirmer.Confirm(s)
	if err != nil {
		return ConfirmResult{}, err
	}

	// The sold lines must not stay reachable, or a later cancel would give
	// their units back. If the cleared bill cannot be stored it is dropped.
	if err := c.sessions.SaveSession(ctx, s); err != nil {
		saveErr := fmt.Errorf("save bill %s: %w", s.ID, err)
		if delErr := c.sessions.DeleteSession(ctx, s.ID); delErr != nil {
			c.logger.Error("CRITICAL: confirm not recorded, bill left open",
				zap.String("session_id", s.ID), zap.String("receipt_id", receipt.ID), zap.Error(delErr))
			return ConfirmResult{}, errors.Join(saveErr, delErr)
		}
		c.logger.Warn("confirmed bill dropped from session store",
			zap.String("session_id", s.ID), zap.Error(saveErr))
	}

	result := ConfirmResult{Receipt: receipt}

	for _, exp := range c.exporters {
		loc, err := exp.Export(ctx, receipt)
		if err != nil {
			c.logger.Warn("receipt export failed",
				zap.String("exporter", exp.Name()), zap.String("receipt_id", receipt.ID), zap.Error(err))
		}
		result.Exports = append(result.Exports, ExportResult{Exporter: exp.Name(), Location: loc, Err: err})
	}
	return result, nil
}

// ReapIdle cancels every bill that has not been saved for maxIdle, giving
// its units back to stock. A bill whose cancel fails keeps its remaining
// lines and is retried on the next pass.
func (c *CounterService) ReapIdle(ctx context.Context, maxIdle time.Duration) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids, err := c.sessions.IdleSessions(ctx, c.now().Add(-maxIdle))
	if err != nil {
		return 0, fmt.Errorf("list idle bills: %w", err)
	}

	reaped := 0
	for _, id := range ids {
		s, err := c.sessions.LoadSession(ctx, id)
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.sessions.DeleteSession(ctx, id)
			continue
		}
		if err != nil {
			c.logger.Warn("idle bill not loaded", zap.String("session_id", id), zap.Error(err))
			continue
		}

		results, err := c.billing.Cancel(ctx, s)
		if err != nil {
			c.logger.Warn("idle bill partially cancelled", zap.String("session_id", id), zap.Error(err))
			if err := c.sessions.SaveSession(ctx, s); err != nil {
				c.logger.Error("CRITICAL: partially cancelled bill not saved",
					zap.String("session_id", id), zap.Error(err))
			}
			continue
		}
		if err := c.sessions.DeleteSession(ctx, id); err != nil {
			c.logger.Warn("idle bill not deleted", zap.String("session_id", id), zap.Error(err))
			continue
		}
		reaped++
		c.logger.Info("idle bill cancelled", zap.String("session_id", id), zap.Int("lines_restored", len(results)))
	}
	return reaped, nil
}

// Inventory returns the mirrored catalog and its version.
func (c *CounterService) Inventory() ([]domain.InventoryRecord, uint64) {
	return c.cache.List(), c.cache.Version()
}

// step runs one bill mutation and stores the bill. If the bill cannot be
// stored the stock change is reversed so store and bill stay consistent.
func (c *CounterService) step(ctx context.Context, sessionID string, fn func(*domain.BillSession) (AdjustResult, error)) (*domain.BillSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.sessions.LoadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	res, err := fn(s)
	if err != nil {
		return nil, err
	}

	if err := c.sessions.SaveSession(ctx, s); err != nil {
		saveErr := fmt.Errorf("save bill %s: %w", s.ID, err)
		if d := res.Delta(); d != 0 {
			if _, undoErr := c.cache.AdjustStock(ctx, res.ID, -d); undoErr != nil {
				c.logger.Error("CRITICAL: stock compensation failed",
					zap.String("session_id", s.ID), zap.Int64("inventory_id", res.ID), zap.Error(undoErr))
				return nil, errors.Join(saveErr, undoErr)
			}
		}
		return nil, saveErr
	}
	return s, nil
}
