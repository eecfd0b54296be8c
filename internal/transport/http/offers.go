package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"maskchain/internal/ledger"
	"maskchain/internal/offers"
)

// OffersService is the producer offer surface the handler exposes.
type OffersService interface {
	Create(ctx context.Context, producerID int64, orderID string, offer int64) (string, error)
	List(ctx context.Context, filter offers.Filter) ([]*ledger.OfferInfo, error)
	Get(ctx context.Context, offerID string) (*ledger.OfferInfo, error)
	Accept(ctx context.Context, offerID, orderID string) error
}

// OffersHandler serves producer offer endpoints.
type OffersHandler struct {
	svc    OffersService
	logger *slog.Logger
}

func NewOffersHandler(svc OffersService, logger *slog.Logger) *OffersHandler {
	return &OffersHandler{svc: svc, logger: logger}
}

func (h *OffersHandler) Register(r chi.Router) {
	r.Post("/offers", h.create)
	r.Get("/offers", h.list)
	r.Get("/offers/{id}", h.get)
	r.Post("/offers/{id}/accept", h.accept)
}

func (h *OffersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Producer int64  `json:"producer"`
		Order    string `json:"order"`
		Offer    int64  `json:"offer"`
	}
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	offerID, err := h.svc.Create(r.Context(), req.Producer, req.Order, req.Offer)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"id": offerID})
}

func (h *OffersHandler) list(w http.ResponseWriter, r *http.Request) {
	var filter offers.Filter
	if raw := r.URL.Query().Get("producer"); raw != "" {
		producerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			WriteError(w, invalidParam("producer"))
			return
		}
		filter.ProducerID = producerID
	}
	filter.Order = r.URL.Query().Get("order")

	list, err := h.svc.List(r.Context(), filter)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

func (h *OffersHandler) get(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, info)
}

func (h *OffersHandler) accept(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order string `json:"order"`
	}
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.svc.Accept(r.Context(), chi.URLParam(r, "id"), req.Order); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
