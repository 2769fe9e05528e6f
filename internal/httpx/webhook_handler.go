package httpx

import (
	"encoding/json"
	"io"
	"net/http"

	"aleenascuisine/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SignatureVerifier checks the provider's webhook signature over the raw
// body. A nil verifier disables the check (local development).
type SignatureVerifier interface {
	VerifyWebhookSignature(body []byte, signature string) error
}

type WebhookHandler struct {
	Svc      *service.OrderService
	Verifier SignatureVerifier
	Log      *zap.Logger
}

func (h *WebhookHandler) Register(r *chi.Mux) {
	r.Post("/webhooks/payment", h.handlePaymentWebhook)
}

func (h *WebhookHandler) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}
	signature := r.Header.Get("X-Razorpay-Signature")

	if h.Verifier != nil {
		if err := h.Verifier.VerifyWebhookSignature(body, signature); err != nil {
			h.Log.Warn("webhook signature rejected", zap.Error(err))
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid signature"})
			return
		}
	}

	// Journal the raw event before any interpretation, so reconciliation can
	// be replayed from the record if needed.
	if err := h.Svc.RecordProviderEvent(r.Context(), serializeHeaders(r.Header), string(body), signature); err != nil {
		h.Log.Error("record provider event failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	ev, err := service.DecodePaymentEvent(body)
	if err != nil {
		h.Log.Warn("webhook payload undecodable", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	order, payment, err := h.Svc.ApplyPaymentEvent(r.Context(), ev)
	if err != nil {
		writeError(w, err)
		return
	}
	if order == nil {
		// Recorded but unmatched; acknowledge so the provider stops retrying.
		h.Log.Warn("webhook matched no payment",
			zap.String("event", ev.Event),
			zap.String("provider_payment_id", ev.ProviderPaymentID),
			zap.String("provider_order_id", ev.ProviderOrderID))
		writeJSON(w, http.StatusOK, map[string]string{"result": "ignored"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"result":         "applied",
		"order_id":       order.ID,
		"order_status":   order.Status,
		"payment_id":     payment.ID,
		"payment_status": payment.Status,
	})
}

// serializeHeaders stores headers deterministically; json.Marshal sorts map
// keys.
func serializeHeaders(h http.Header) string {
	flat := make(map[string]string, len(h))
	for k := range h {
		flat[k] = h.Get(k)
	}
	b, _ := json.Marshal(flat)
	return string(b)
}
