package provider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"aleenascuisine/internal/service"

	"go.uber.org/zap"
)

var ErrInvalidWebhookSignature = errors.New("invalid webhook signature")

type Config struct {
	BaseURL       string
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

// RazorpayClient talks to the Razorpay REST API. Orders are created with
// payment_capture=1 so a successful payment captures immediately.
type RazorpayClient struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

func NewRazorpayClient(cfg Config, log *zap.Logger) (*RazorpayClient, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, errors.New("razorpay credentials are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.razorpay.com/v1"
	}
	return &RazorpayClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
		log:  log,
	}, nil
}

func (c *RazorpayClient) CreateOrder(ctx context.Context, in service.ProviderOrderInput) (service.ProviderOrderResult, error) {
	notes := map[string]any{}
	for k, v := range in.Notes {
		notes[k] = v
	}
	if in.TestMode {
		notes["test_mode"] = true
	}
	payload := map[string]any{
		"amount":          in.AmountMinorUnits,
		"currency":        in.Currency,
		"receipt":         in.Receipt,
		"notes":           notes,
		"payment_capture": 1,
	}

	var raw struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := c.post(ctx, "/orders", payload, &raw); err != nil {
		return service.ProviderOrderResult{}, err
	}
	return service.ProviderOrderResult{ID: raw.ID, Status: raw.Status}, nil
}

func (c *RazorpayClient) RequestRefund(ctx context.Context, in service.ProviderRefundInput) (service.ProviderRefundResult, error) {
	payload := map[string]any{}
	if in.AmountMinorUnits != nil {
		payload["amount"] = *in.AmountMinorUnits
	}
	if len(in.Notes) > 0 {
		payload["notes"] = in.Notes
	}

	var raw struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	path := fmt.Sprintf("/payments/%s/refund", in.ProviderPaymentID)
	if err := c.post(ctx, path, payload, &raw); err != nil {
		return service.ProviderRefundResult{}, err
	}
	return service.ProviderRefundResult{ID: raw.ID, Status: raw.Status}, nil
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header: hex HMAC
// SHA-256 of the raw body under the webhook secret.
func (c *RazorpayClient) VerifyWebhookSignature(body []byte, signature string) error {
	return VerifySignature(body, signature, c.cfg.WebhookSecret)
}

func VerifySignature(body []byte, signature, secret string) error {
	if secret == "" {
		return errors.New("webhook secret is not configured")
	}
	if signature == "" {
		return ErrInvalidWebhookSignature
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidWebhookSignature
	}
	return nil
}

func (c *RazorpayClient) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("razorpay request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", data))
		return fmt.Errorf("razorpay %s: unexpected status %d", path, resp.StatusCode)
	}
	return json.Unmarshal(data, out)
}
