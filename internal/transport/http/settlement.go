package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"maskchain/internal/settlement"
	"maskchain/internal/settlement/chain"
)

// SettlementService is the settlement read/write surface the handler exposes.
type SettlementService interface {
	CreatePayment(ctx context.Context, order string, price int64, producerKey string) (*settlement.Payment, error)
	ListPayments(ctx context.Context, order string, unpaidOnly bool) ([]*settlement.PaymentView, error)
	ListLetters(ctx context.Context, bankID, producerID int64) ([]*settlement.LetterView, error)
	ListDeals(ctx context.Context, producerID int64) ([]*settlement.DealView, error)
	ListDeliveries(ctx context.Context) ([]*settlement.DeliveryView, error)
	UpdateDeliveryStatus(ctx context.Context, deliveryID, status string) error
}

// ChainRunner is the orchestrator surface the handler exposes. Issuing a
// payment letter runs the whole letter, deal, delivery chain.
type ChainRunner interface {
	Run(ctx context.Context, paymentID, bankID int64) (*chain.Result, error)
	Status(ctx context.Context, paymentID int64) (*chain.Progress, error)
	Unresolved(ctx context.Context) ([]*chain.Progress, error)
}

// SettlementHandler serves payment, letter, deal and delivery endpoints.
type SettlementHandler struct {
	svc    SettlementService
	chain  ChainRunner
	logger *slog.Logger
}

func NewSettlementHandler(svc SettlementService, runner ChainRunner, logger *slog.Logger) *SettlementHandler {
	return &SettlementHandler{svc: svc, chain: runner, logger: logger}
}

func (h *SettlementHandler) Register(r chi.Router) {
	r.Post("/payments", h.createPayment)
	r.Get("/payments", h.listPayments)
	r.Post("/payment-letters", h.createPaymentLetter)
	r.Get("/payment-letters", h.listPaymentLetters)
	r.Get("/chains", h.listUnresolvedChains)
	r.Get("/chains/{payment}", h.chainStatus)
	r.Get("/deals", h.listDeals)
	r.Get("/deliveries", h.listDeliveries)
	r.Patch("/deliveries/{id}", h.updateDelivery)
}

func (h *SettlementHandler) createPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order    string `json:"order"`
		Price    int64  `json:"price"`
		Producer string `json:"producer"`
	}
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	payment, err := h.svc.CreatePayment(r.Context(), req.Order, req.Price, req.Producer)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, payment)
}

func (h *SettlementHandler) listPayments(w http.ResponseWriter, r *http.Request) {
	_, unpaidOnly := r.URL.Query()["unpaid"]
	list, err := h.svc.ListPayments(r.Context(), r.URL.Query().Get("order"), unpaidOnly)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

// createPaymentLetter triggers the settlement chain for a payment. The
// response carries the full committed set; a halt after a partial commit
// comes back as an error body with the committed prefix attached.
func (h *SettlementHandler) createPaymentLetter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Bank    int64 `json:"bank"`
		Payment int64 `json:"payment"`
	}
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	result, err := h.chain.Run(r.Context(), req.Payment, req.Bank)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, result)
}

func (h *SettlementHandler) listPaymentLetters(w http.ResponseWriter, r *http.Request) {
	bankID, err := queryID(r, "bank")
	if err != nil {
		WriteError(w, err)
		return
	}
	producerID, err := queryID(r, "producer")
	if err != nil {
		WriteError(w, err)
		return
	}
	list, err := h.svc.ListLetters(r.Context(), bankID, producerID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

func (h *SettlementHandler) listUnresolvedChains(w http.ResponseWriter, r *http.Request) {
	list, err := h.chain.Unresolved(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

func (h *SettlementHandler) chainStatus(w http.ResponseWriter, r *http.Request) {
	paymentID, err := pathID(r, "payment")
	if err != nil {
		WriteError(w, err)
		return
	}
	progress, err := h.chain.Status(r.Context(), paymentID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, progress)
}

func (h *SettlementHandler) listDeals(w http.ResponseWriter, r *http.Request) {
	producerID, err := queryID(r, "producer")
	if err != nil {
		WriteError(w, err)
		return
	}
	list, err := h.svc.ListDeals(r.Context(), producerID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

func (h *SettlementHandler) listDeliveries(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListDeliveries(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

func (h *SettlementHandler) updateDelivery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.svc.UpdateDeliveryStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// queryID parses an optional numeric query parameter; absent means zero.
func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, invalidParam(name)
	}
	return id, nil
}
