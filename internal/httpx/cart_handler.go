package httpx

import (
	"encoding/json"
	"net/http"

	"aleenascuisine/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartHandler struct {
	Svc     *service.CartService
	Pricing service.PricingRules
}

type cartLineReq struct {
	CakeID    uuid.UUID       `json:"cake_id"`
	Quantity  int             `json:"quantity"`
	PriceEach decimal.Decimal `json:"price_each"`
}

type upsertCartReq struct {
	CustomerID *string       `json:"customer_id,omitempty"`
	CartToken  *string       `json:"cart_token,omitempty"`
	Items      []cartLineReq `json:"items"`
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Put("/cart", h.upsertCart)
	r.Get("/cart/{ref}", h.getCart)
	r.Delete("/cart/{id}", h.deleteCart)
}

func (h *CartHandler) upsertCart(w http.ResponseWriter, r *http.Request) {
	var req upsertCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	items := make([]service.CartLineInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.CartLineInput{
			CakeID:    it.CakeID,
			Quantity:  it.Quantity,
			PriceEach: it.PriceEach,
		})
	}
	cart, err := h.Svc.UpsertCart(r.Context(), req.CustomerID, req.CartToken, items)
	if err != nil {
		writeError(w, err)
		return
	}
	totals := service.CartTotals(cart, h.Pricing)
	writeJSON(w, http.StatusOK, map[string]any{"cart": cart, "totals": totals})
}

// getCart accepts a cart id or a cart token.
func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.Svc.GetCartByReference(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		writeError(w, err)
		return
	}
	totals := service.CartTotals(cart, h.Pricing)
	writeJSON(w, http.StatusOK, map[string]any{"cart": cart, "totals": totals})
}

func (h *CartHandler) deleteCart(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cart id"})
		return
	}
	if err := h.Svc.DeleteCart(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
