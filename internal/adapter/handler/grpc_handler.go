package handler

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/counter-pos/internal/adapter/receipt"
	"github.com/rl1809/counter-pos/internal/core/domain"
	"github.com/rl1809/counter-pos/internal/core/service"
)

type GRPCHandler struct {
	counter *service.CounterService
	catalog *service.CatalogService
	logger  *zap.Logger
}

func NewGRPCHandler(counter *service.CounterService, catalog *service.CatalogService, logger *zap.Logger) *GRPCHandler {
	return &GRPCHandler{counter: counter, catalog: catalog, logger: logger}
}

func (h *GRPCHandler) OpenBill(ctx context.Context, req *OpenBillRequest) (*BillReply, error) {
	s, err := h.counter.OpenBill(ctx)
	if err != nil {
		return nil, h.fail("OpenBill", err)
	}
	return &BillReply{Bill: toBillView(s)}, nil
}

func (h *GRPCHandler) AddToBill(ctx context.Context, req *AddToBillRequest) (*BillReply, error) {
	s, err := h.counter.AddToBill(ctx, req.SessionID, req.InventoryID, req.RequestID)
	if err != nil {
		return nil, h.fail("AddToBill", err)
	}
	return &BillReply{Bill: toBillView(s)}, nil
}

func (h *GRPCHandler) IncrementLine(ctx context.Context, req *LineRequest) (*BillReply, error) {
	s, err := h.counter.IncrementLine(ctx, req.SessionID, req.Index)
	if err != nil {
		return nil, h.fail("IncrementLine", err)
	}
	return &BillReply{Bill: toBillView(s)}, nil
}

func (h *GRPCHandler) RemoveLine(ctx context.Context, req *LineRequest) (*BillReply, error) {
	s, err := h.counter.RemoveLine(ctx, req.SessionID, req.Index)
	if err != nil {
		return nil, h.fail("RemoveLine", err)
	}
	return &BillReply{Bill: toBillView(s)}, nil
}

func (h *GRPCHandler) ConfirmSale(ctx context.Context, req *BillRequest) (*ConfirmReply, error) {
	result, err := h.counter.ConfirmSale(ctx, req.SessionID)
	if err != nil {
		return nil, h.fail("ConfirmSale", err)
	}
	return &ConfirmReply{
		Receipt: toReceiptView(result.Receipt),
		Text:    receipt.FormatText(result.Receipt),
		Exports: toExportViews(result.Exports),
	}, nil
}

func (h *GRPCHandler) CancelSale(ctx context.Context, req *BillRequest) (*CancelReply, error) {
	if err := h.counter.CancelSale(ctx, req.SessionID); err != nil {
		return nil, h.fail("CancelSale", err)
	}
	return &CancelReply{SessionID: req.SessionID}, nil
}

func (h *GRPCHandler) ListItems(ctx context.Context, req *ListItemsRequest) (*ListItemsReply, error) {
	records, err := h.catalog.ListItems(ctx)
	if err != nil {
		return nil, h.fail("ListItems", err)
	}
	_, version := h.counter.Inventory()
	return &ListItemsReply{Items: toItemViews(records), Version: version}, nil
}

func (h *GRPCHandler) CreateItem(ctx context.Context, req *CreateItemRequest) (*ItemReply, error) {
	price, stock, err := parseItem(req.Price, req.Stock)
	if err != nil {
		return nil, h.fail("CreateItem", err)
	}
	rec, err := h.catalog.CreateItem(ctx, req.Name, price, stock)
	if err != nil {
		return nil, h.fail("CreateItem", err)
	}
	item := toItemView(rec)
	return &ItemReply{Item: &item}, nil
}

func (h *GRPCHandler) UpdateItem(ctx context.Context, req *UpdateItemRequest) (*ItemReply, error) {
	price, stock, err := parseItem(req.Price, req.Stock)
	if err != nil {
		return nil, h.fail("UpdateItem", err)
	}
	rec, err := h.catalog.UpdateItem(ctx, domain.InventoryRecord{ID: req.ID, Name: req.Name, Price: price, Stock: stock})
	if err != nil {
		return nil, h.fail("UpdateItem", err)
	}
	item := toItemView(rec)
	return &ItemReply{Item: &item}, nil
}

func (h *GRPCHandler) DeleteItem(ctx context.Context, req *DeleteItemRequest) (*DeleteItemReply, error) {
	if err := h.catalog.DeleteItem(ctx, req.ID); err != nil {
		return nil, h.fail("DeleteItem", err)
	}
	return &DeleteItemReply{ID: req.ID}, nil
}

func parseItem(price, stock string) (decimal.Decimal, int, error) {
	p, err := domain.ParseMoney(price)
	if err != nil {
		return decimal.Zero, 0, err
	}
	n, err := domain.ParseQuantity(stock)
	if err != nil {
		return decimal.Zero, 0, err
	}
	return p, n, nil
}

func (h *GRPCHandler) fail(method string, err error) error {
	st := mapError(err)
	h.logger.Debug("rpc failed", zap.String("method", method), zap.Error(err))
	return st
}
