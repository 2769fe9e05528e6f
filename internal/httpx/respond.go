package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"aleenascuisine/internal/service"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var (
		statusErr   *service.OrderStatusUpdateError
		mismatchErr *service.CartPriceMismatchError
		stockErr    *service.InventoryUnavailableError
	)
	switch {
	case errors.Is(err, service.ErrCakeNotFound),
		errors.Is(err, service.ErrCartNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrPaymentNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &mismatchErr):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      "cart prices are out of date",
			"mismatches": mismatchErr.Mismatches,
		})
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":   "insufficient stock",
			"cake_id": stockErr.CakeID,
		})
	case errors.Is(err, service.ErrDuplicateSlug):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.As(err, &statusErr),
		errors.Is(err, service.ErrOrderCancellationNotAllowed),
		errors.Is(err, service.ErrCartEmpty),
		errors.Is(err, service.ErrQuantityInvalid),
		errors.Is(err, service.ErrCartItemCakeNotFound),
		errors.Is(err, service.ErrInvalidInventoryAdjustment):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrPaymentProviderUnavailable):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
