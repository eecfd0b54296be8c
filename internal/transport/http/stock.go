package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"maskchain/internal/stock"
)

// StockService is the inventory surface the handler exposes.
type StockService interface {
	MinistryStock(ctx context.Context) (int64, error)
	ProducerStock(ctx context.Context, producerID int64) (*stock.ProducerStock, error)
	AllProducerStock(ctx context.Context) ([]*stock.ProducerStock, error)
	UpdateProducerStock(ctx context.Context, producerID, amount int64) (*stock.ProducerStock, error)
}

// StockHandler serves ledger-held inventory endpoints.
type StockHandler struct {
	svc    StockService
	logger *slog.Logger
}

func NewStockHandler(svc StockService, logger *slog.Logger) *StockHandler {
	return &StockHandler{svc: svc, logger: logger}
}

func (h *StockHandler) Register(r chi.Router) {
	r.Get("/masks/ministry", h.ministryStock)
	r.Get("/masks/producers", h.allProducerStock)
	r.Get("/masks/producers/{id}", h.producerStock)
	r.Put("/masks/producers/{id}", h.updateProducerStock)
}

func (h *StockHandler) ministryStock(w http.ResponseWriter, r *http.Request) {
	amount, err := h.svc.MinistryStock(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int64{"masks": amount})
}

func (h *StockHandler) allProducerStock(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.svc.AllProducerStock(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stocks)
}

func (h *StockHandler) producerStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	producerStock, err := h.svc.ProducerStock(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, producerStock)
}

func (h *StockHandler) updateProducerStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	var req struct {
		Masks int64 `json:"masks"`
	}
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	producerStock, err := h.svc.UpdateProducerStock(r.Context(), id, req.Masks)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, producerStock)
}
