package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"aleenascuisine/internal/models"
	"aleenascuisine/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestWriteError_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"order not found", service.ErrOrderNotFound, http.StatusNotFound},
		{"cake not found", service.ErrCakeNotFound, http.StatusNotFound},
		{"empty cart", service.ErrCartEmpty, http.StatusBadRequest},
		{"duplicate slug", service.ErrDuplicateSlug, http.StatusConflict},
		{"cancellation window", service.ErrOrderCancellationNotAllowed, http.StatusBadRequest},
		{"provider down", service.ErrPaymentProviderUnavailable, http.StatusBadGateway},
		{"bad transition", &service.OrderStatusUpdateError{
			From: models.OrderStatusCreated,
			To:   models.OrderStatusShipped,
		}, http.StatusBadRequest},
		{"price mismatch", &service.CartPriceMismatchError{}, http.StatusConflict},
		{"out of stock", &service.InventoryUnavailableError{CakeID: uuid.New()}, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)
			require.Equal(t, tc.code, rec.Code)
			require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestWriteError_WrappedErrorsStillMap(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.Join(errors.New("context"), service.ErrOrderNotFound))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
