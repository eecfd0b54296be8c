package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"maskchain/internal/ledger"
	"maskchain/internal/orders"
)

// OrdersService is the order management surface the handler exposes.
type OrdersService interface {
	CreateMinistryOrder(ctx context.Context, maskAmount int64, endDate string) (string, error)
	ListMinistryOrders(ctx context.Context, unpaidOnly bool) ([]*ledger.OrderInfo, error)
	GetMinistryOrder(ctx context.Context, orderID string) (*ledger.OrderInfo, error)
	CreateHospitalOrder(ctx context.Context, hospitalID, maskAmount, urgency int64) (string, error)
	ListHospitalOrders(ctx context.Context, hospitalID int64) (*orders.HospitalOrders, error)
	ListAllHospitalOrders(ctx context.Context) ([]*orders.HospitalOrders, error)
	UpdateHospitalDeliveryStatus(ctx context.Context, orderID, status string) error
}

// OrdersHandler serves regulator and hospital order endpoints.
type OrdersHandler struct {
	svc    OrdersService
	logger *slog.Logger
}

func NewOrdersHandler(svc OrdersService, logger *slog.Logger) *OrdersHandler {
	return &OrdersHandler{svc: svc, logger: logger}
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders/ministry", h.createMinistryOrder)
	r.Get("/orders/ministry", h.listMinistryOrders)
	r.Get("/orders/ministry/{id}", h.getMinistryOrder)
	r.Post("/orders/hospital", h.createHospitalOrder)
	r.Get("/orders/hospital", h.listHospitalOrders)
	r.Patch("/orders/hospital/{id}/delivery", h.updateHospitalDelivery)
}

func (h *OrdersHandler) createMinistryOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MaskAmount int64  `json:"maskAmount"`
		EndDate    string `json:"endDate"`
	}
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	orderID, err := h.svc.CreateMinistryOrder(r.Context(), req.MaskAmount, req.EndDate)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"id": orderID})
}

func (h *OrdersHandler) listMinistryOrders(w http.ResponseWriter, r *http.Request) {
	_, unpaidOnly := r.URL.Query()["unpaid"]
	list, err := h.svc.ListMinistryOrders(r.Context(), unpaidOnly)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) getMinistryOrder(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.GetMinistryOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, info)
}

func (h *OrdersHandler) createHospitalOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hospital   int64 `json:"hospital"`
		MaskAmount int64 `json:"maskAmount"`
		Urgency    int64 `json:"urgency"`
	}
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	orderID, err := h.svc.CreateHospitalOrder(r.Context(), req.Hospital, req.MaskAmount, req.Urgency)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"id": orderID})
}

// listHospitalOrders serves both the per-hospital listing (?hospital=N) and
// the aggregate view across every demand-side organization.
func (h *OrdersHandler) listHospitalOrders(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("hospital"); raw != "" {
		hospitalID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			WriteError(w, invalidParam("hospital"))
			return
		}
		view, err := h.svc.ListHospitalOrders(r.Context(), hospitalID)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, view)
		return
	}

	views, err := h.svc.ListAllHospitalOrders(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, views)
}

func (h *OrdersHandler) updateHospitalDelivery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if err := h.svc.UpdateHospitalDeliveryStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
