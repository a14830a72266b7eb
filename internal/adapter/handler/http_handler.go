package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/counter-pos/internal/adapter/receipt"
	"github.com/rl1809/counter-pos/internal/core/domain"
	"github.com/rl1809/counter-pos/internal/core/service"
)

type HTTPHandler struct {
	counter *service.CounterService
	catalog *service.CatalogService
	logger  *zap.Logger
}

// ItemRequest carries price and stock as typed by the operator; they are
// parsed on the server.
type ItemRequest struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock string `json:"stock"`
}

type AddItemRequest struct {
	InventoryID int64  `json:"inventory_id"`
	RequestID   string `json:"request_id"`
}

type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Item    *ItemView    `json:"item,omitempty"`
	Items   []ItemView   `json:"items,omitempty"`
	Bill    *BillView    `json:"bill,omitempty"`
	Receipt *ReceiptView `json:"receipt,omitempty"`
	Text    string       `json:"text,omitempty"`
	Exports []ExportView `json:"exports,omitempty"`
	Version uint64       `json:"version,omitempty"`
}

func NewHTTPHandler(counter *service.CounterService, catalog *service.CatalogService, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{counter: counter, catalog: catalog, logger: logger}
}

func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)

	mux.HandleFunc("GET /api/items", h.ListItems)
	mux.HandleFunc("POST /api/items", h.CreateItem)
	mux.HandleFunc("PUT /api/items/{id}", h.UpdateItem)
	mux.HandleFunc("DELETE /api/items/{id}", h.DeleteItem)

	mux.HandleFunc("POST /api/bills", h.OpenBill)
	mux.HandleFunc("GET /api/bills/{id}", h.GetBill)
	mux.HandleFunc("POST /api/bills/{id}/items", h.AddToBill)
	mux.HandleFunc("POST /api/bills/{id}/lines/{index}/increment", h.IncrementLine)
	mux.HandleFunc("DELETE /api/bills/{id}/lines/{index}", h.RemoveLine)
	mux.HandleFunc("POST /api/bills/{id}/confirm", h.ConfirmSale)
	mux.HandleFunc("POST /api/bills/{id}/cancel", h.CancelSale)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	records, err := h.catalog.ListItems(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	_, version := h.counter.Inventory()
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: fmt.Sprintf("%d items", len(records)),
		Items:   toItemViews(records),
		Version: version,
	})
}

func (h *HTTPHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	req, price, stock, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	rec, err := h.catalog.CreateItem(r.Context(), req.Name, price, stock)
	if err != nil {
		h.writeError(w, err)
		return
	}

	item := toItemView(rec)
	writeJSON(w, http.StatusCreated, Response{Success: true, Message: "item added", Item: &item})
}

func (h *HTTPHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid item id"})
		return
	}

	req, price, stock, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	rec, err := h.catalog.UpdateItem(r.Context(), domain.InventoryRecord{ID: id, Name: req.Name, Price: price, Stock: stock})
	if err != nil {
		h.writeError(w, err)
		return
	}

	item := toItemView(rec)
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "item updated", Item: &item})
}

func (h *HTTPHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid item id"})
		return
	}

	if err := h.catalog.DeleteItem(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "item deleted"})
}

func (h *HTTPHandler) OpenBill(w http.ResponseWriter, r *http.Request) {
	s, err := h.counter.OpenBill(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Message: "bill opened", Bill: toBillView(s)})
}

func (h *HTTPHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	s, err := h.counter.GetBill(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: string(s.State()), Bill: toBillView(s)})
}

func (h *HTTPHandler) AddToBill(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}
	if req.InventoryID <= 0 {
		writeJSON(w, http.StatusBadRequest, Response{Message: "missing required fields"})
		return
	}

	s, err := h.counter.AddToBill(r.Context(), r.PathValue("id"), req.InventoryID, req.RequestID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "item added to bill", Bill: toBillView(s)})
}

func (h *HTTPHandler) IncrementLine(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid line index"})
		return
	}

	s, err := h.counter.IncrementLine(r.Context(), r.PathValue("id"), index)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "quantity increased", Bill: toBillView(s)})
}

func (h *HTTPHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid line index"})
		return
	}

	s, err := h.counter.RemoveLine(r.Context(), r.PathValue("id"), index)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "line removed", Bill: toBillView(s)})
}

func (h *HTTPHandler) ConfirmSale(w http.ResponseWriter, r *http.Request) {
	result, err := h.counter.ConfirmSale(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "sale confirmed",
		Receipt: toReceiptView(result.Receipt),
		Text:    receipt.FormatText(result.Receipt),
		Exports: toExportViews(result.Exports),
	})
}

func (h *HTTPHandler) CancelSale(w http.ResponseWriter, r *http.Request) {
	if err := h.counter.CancelSale(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "sale cancelled"})
}

func (h *HTTPHandler) decodeItem(w http.ResponseWriter, r *http.Request) (ItemRequest, decimal.Decimal, int, bool) {
	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid request body"})
		return req, decimal.Zero, 0, false
	}

	price, err := domain.ParseMoney(req.Price)
	if err != nil {
		h.writeError(w, err)
		return req, decimal.Zero, 0, false
	}
	stock, err := domain.ParseQuantity(req.Stock)
	if err != nil {
		h.writeError(w, err)
		return req, decimal.Zero, 0, false
	}
	return req, price, stock, true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status, _, message := errorKind(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, Response{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
