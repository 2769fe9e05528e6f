package httpx

import (
	"encoding/json"
	"net/http"

	"aleenascuisine/internal/models"
	"aleenascuisine/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrdersHandler struct {
	Svc *service.OrderService
}

type createOrderReq struct {
	CartID     uuid.UUID `json:"cart_id"`
	CustomerID *string   `json:"customer_id,omitempty"`
	IsTest     bool      `json:"is_test,omitempty"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getOrderStatus)
	r.Post("/orders/{id}/cancel", h.cancelOrder)
	r.Post("/orders/{id}/status", h.updateStatus)
	r.Post("/orders/{id}/payment", h.ensureProviderOrder)
	r.Post("/payments/{id}/refund", h.requestRefund)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.CartID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cart_id is required"})
		return
	}

	in := service.CreateOrderInput{
		CartID:     req.CartID,
		CustomerID: req.CustomerID,
		IsTest:     req.IsTest,
	}
	if key := r.Header.Get("Idempotency-Key"); key != "" {
		in.IdempotencyKey = &key
	}

	res, err := h.Svc.CreateOrder(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	code := http.StatusOK
	if res.Created {
		code = http.StatusCreated
	}
	writeJSON(w, code, map[string]any{"order": res.Order, "created": res.Created})
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customer_id")
	if customerID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "customer_id is required"})
		return
	}
	orders, err := h.Svc.ListOrders(r.Context(), customerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": orders})
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	order, err := h.Svc.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	snap, err := h.Svc.GetOrderStatus(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	order, err := h.Svc.CancelOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}
	order, err := h.Svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) ensureProviderOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	order, err := h.Svc.EnsureProviderOrder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) requestRefund(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payment id"})
		return
	}
	var req struct {
		Amount *decimal.Decimal `json:"amount,omitempty"`
		Reason *string          `json:"reason,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	refund, err := h.Svc.RequestRefund(r.Context(), id, req.Amount, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, refund)
}
