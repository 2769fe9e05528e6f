package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aleenascuisine/internal/models"
	"aleenascuisine/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderConfig struct {
	Currency              string
	Pricing               PricingRules
	PriceTolerance        decimal.Decimal
	ReservationTTLMinutes int
	CancellationWindow    time.Duration
}

type CreateOrderInput struct {
	IdempotencyKey *string
	CartID         uuid.UUID
	CustomerID     *string
	IsTest         bool
}

type CreateOrderResult struct {
	Order   *models.Order
	Created bool
}

// OrderService owns the order/payment state machine: creation with inventory
// reservation, the status transition table, webhook reconciliation, refunds
// and the reservation sweep. Every state change runs as one transaction.
type OrderService struct {
	repo     *repository.Repository
	provider PaymentProvider
	events   EventBus
	cache    StatusCache
	cfg      OrderConfig
	log      *zap.Logger
	now      func() time.Time
}

func NewOrderService(
	repo *repository.Repository,
	provider PaymentProvider,
	events EventBus,
	cache StatusCache,
	cfg OrderConfig,
	log *zap.Logger,
) *OrderService {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if cfg.CancellationWindow <= 0 {
		cfg.CancellationWindow = 24 * time.Hour
	}
	return &OrderService{
		repo:     repo,
		provider: provider,
		events:   events,
		cache:    cache,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// CreateOrder turns a cart into an order with a reservation hold. Safe to
// retry: a supplied idempotency key returns the already-created order, and a
// concurrent duplicate insert is resolved by read-after-conflict.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (CreateOrderResult, error) {
	if in.IdempotencyKey != nil && *in.IdempotencyKey != "" {
		existing, err := s.repo.Orders.GetByIdempotencyKey(ctx, *in.IdempotencyKey)
		if err != nil {
			return CreateOrderResult{}, err
		}
		if existing != nil {
			return CreateOrderResult{Order: existing, Created: false}, nil
		}
	} else {
		in.IdempotencyKey = nil
	}

	now := s.now()
	var orderID uuid.UUID

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		cart, err := tx.Carts.GetByID(ctx, in.CartID)
		if err != nil {
			return err
		}
		if cart == nil {
			return ErrCartNotFound
		}
		if len(cart.Items) == 0 {
			return ErrCartEmpty
		}

		// Piggy-back the sweep onto the hot path so stock numbers are fresh
		// before this cart tries to reserve.
		if s.cfg.ReservationTTLMinutes > 0 {
			if _, err := s.expireStale(ctx, tx, now); err != nil {
				return err
			}
		}

		mismatches, err := ValidatePrices(cart, s.cfg.PriceTolerance)
		if err != nil {
			return err
		}
		if len(mismatches) > 0 {
			return &CartPriceMismatchError{Mismatches: mismatches}
		}

		totals := CartTotals(cart, s.cfg.Pricing)

		// All-or-nothing reservation: the first shortfall aborts the whole
		// transaction, rolling back lines reserved so far.
		for _, item := range cart.Items {
			ok, err := tx.Cakes.Reserve(ctx, item.CakeID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &InventoryUnavailableError{CakeID: item.CakeID}
			}
		}

		customerID := in.CustomerID
		if customerID == nil {
			customerID = cart.CustomerID
		}

		var expiresAt *time.Time
		if s.cfg.ReservationTTLMinutes > 0 {
			t := now.Add(time.Duration(s.cfg.ReservationTTLMinutes) * time.Minute)
			expiresAt = &t
		}

		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			items = append(items, models.OrderItem{
				CakeID:    item.CakeID,
				Quantity:  item.Quantity,
				PriceEach: item.PriceEach,
				LineTotal: quantize(item.PriceEach.Mul(decimal.NewFromInt(int64(item.Quantity)))),
			})
		}

		order := &models.Order{
			CartID:               &cart.ID,
			CustomerID:           customerID,
			Status:               models.OrderStatusCreated,
			PaymentStatus:        models.PaymentStatusPending,
			Currency:             s.cfg.Currency,
			Subtotal:             totals.Subtotal,
			Taxes:                totals.Taxes,
			Shipping:             totals.Shipping,
			Total:                totals.Total,
			IdempotencyKey:       in.IdempotencyKey,
			IsTest:               in.IsTest,
			ReservationExpiresAt: expiresAt,
			InventoryReleased:    false,
			Items:                items,
			Payments: []models.Payment{{
				Amount:   totals.Total,
				Currency: s.cfg.Currency,
				Status:   models.PaymentStatusPending,
			}},
		}
		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}
		orderID = order.ID
		return nil
	})

	if err != nil {
		// A concurrent retry with the same key lost the insert race; the
		// winner's order is the answer.
		if in.IdempotencyKey != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, lookupErr := s.repo.Orders.GetByIdempotencyKey(ctx, *in.IdempotencyKey)
			if lookupErr == nil && existing != nil {
				return CreateOrderResult{Order: existing, Created: false}, nil
			}
		}
		return CreateOrderResult{}, err
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return CreateOrderResult{}, err
	}
	s.cacheStatus(ctx, order)
	return CreateOrderResult{Order: order, Created: true}, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// OrderStatusSnapshot is the polling payload: just the two status fields.
type OrderStatusSnapshot struct {
	OrderID       uuid.UUID            `json:"order_id"`
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
}

// GetOrderStatus answers status polls from the cache when possible and falls
// back to the database, re-priming the cache on a miss.
func (s *OrderService) GetOrderStatus(ctx context.Context, id uuid.UUID) (OrderStatusSnapshot, error) {
	if s.cache != nil {
		status, paymentStatus, ok, err := s.cache.GetOrderStatus(ctx, id)
		if err != nil {
			s.log.Warn("order status cache read failed", zap.String("order_id", id.String()), zap.Error(err))
		} else if ok {
			return OrderStatusSnapshot{OrderID: id, Status: status, PaymentStatus: paymentStatus}, nil
		}
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return OrderStatusSnapshot{}, err
	}
	s.cacheStatus(ctx, order)
	return OrderStatusSnapshot{OrderID: order.ID, Status: order.Status, PaymentStatus: order.PaymentStatus}, nil
}

func (s *OrderService) ListOrders(ctx context.Context, customerID string) ([]models.Order, error) {
	return s.repo.Orders.ListByCustomer(ctx, customerID)
}

// UpdateStatus applies one transition from the allow-list. A self-transition
// is a no-op success; anything not listed fails without touching the order.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, target models.OrderStatus) (*models.Order, error) {
	now := s.now()
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		order, err := tx.Orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.Status == target {
			return nil
		}
		if !models.CanTransition(order.Status, target) {
			return &OrderStatusUpdateError{From: order.Status, To: target}
		}

		fields := map[string]any{"status": target, "updated_at": now}
		switch target {
		case models.OrderStatusCancelled:
			if err := s.releaseInventoryHold(ctx, tx, order, now); err != nil {
				return err
			}
			fields["payment_status"] = models.PaymentStatusCancelled
			if err := s.cancelOpenPayments(ctx, tx, order, now); err != nil {
				return err
			}
		case models.OrderStatusExpired:
			if err := s.releaseInventoryHold(ctx, tx, order, now); err != nil {
				return err
			}
			fields["payment_status"] = models.PaymentStatusCancelled
		case models.OrderStatusDelivered:
			// Delivery implies the payment went through even if the capture
			// webhook never arrived.
			if order.PaymentStatus == models.PaymentStatusPending ||
				order.PaymentStatus == models.PaymentStatusAuthorized {
				fields["payment_status"] = models.PaymentStatusPaid
			}
		}
		return tx.Orders.UpdateFields(ctx, order.ID, fields)
	})
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheStatus(ctx, order)
	return order, nil
}

// CancelOrder is the customer-facing cancellation: only early statuses and
// only within the cancellation window counted from creation.
func (s *OrderService) CancelOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	now := s.now()
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		order, err := tx.Orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if !s.cancellationAllowed(order, now) {
			return ErrOrderCancellationNotAllowed
		}

		if err := s.releaseInventoryHold(ctx, tx, order, now); err != nil {
			return err
		}
		if err := s.cancelOpenPayments(ctx, tx, order, now); err != nil {
			return err
		}
		return tx.Orders.UpdateFields(ctx, order.ID, map[string]any{
			"status":         models.OrderStatusCancelled,
			"payment_status": models.PaymentStatusCancelled,
			"updated_at":     now,
		})
	})
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheStatus(ctx, order)
	return order, nil
}

// EnsureProviderOrder creates the gateway-side order once and stores its
// reference. Subsequent calls return the order unchanged.
func (s *OrderService) EnsureProviderOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.ProviderOrderID != nil {
		return order, nil
	}
	if s.provider == nil {
		return nil, ErrPaymentProviderUnavailable
	}

	res, err := s.provider.CreateOrder(ctx, ProviderOrderInput{
		AmountMinorUnits: toMinorUnits(order.Total),
		Currency:         order.Currency,
		Receipt:          order.ID.String(),
		Notes:            map[string]string{"order_id": order.ID.String()},
		TestMode:         order.IsTest,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProviderUnavailable, err)
	}

	if err := s.repo.Orders.UpdateFields(ctx, order.ID, map[string]any{
		"provider_order_id": res.ID,
		"updated_at":        s.now(),
	}); err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, id)
}

// ApplyPaymentEvent reconciles one provider event onto exactly one
// order+payment pair. Unmatched events return (nil, nil, nil) and are the
// caller's to log. Replays are harmless: the terminal-status guard and the
// monotonic inventory_released flag make the application idempotent.
func (s *OrderService) ApplyPaymentEvent(ctx context.Context, ev PaymentEvent) (*models.Order, *models.Payment, error) {
	now := s.now()

	var (
		orderID        uuid.UUID
		paymentID      uuid.UUID
		matched        bool
		confirmedNow   bool
		paidNow        bool
		terminalChange bool
	)

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		payment, err := s.resolvePayment(ctx, tx, ev)
		if err != nil {
			return err
		}
		if payment == nil {
			return nil
		}
		matched = true
		paymentID = payment.ID

		// Backfill the provider payment id when the fallback lookup found
		// the payment through the order reference.
		if ev.ProviderPaymentID != "" &&
			(payment.ProviderPaymentID == nil || *payment.ProviderPaymentID != ev.ProviderPaymentID) {
			if err := tx.Payments.UpdateFields(ctx, payment.ID, map[string]any{
				"provider_payment_id": ev.ProviderPaymentID,
				"updated_at":          now,
			}); err != nil {
				return err
			}
		}

		order, err := tx.Orders.GetByID(ctx, payment.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		orderID = order.ID

		if ev.Kind == PaymentEventRefunded {
			// Refunds override any non-terminal order state.
			if err := tx.Payments.UpdateFields(ctx, payment.ID, map[string]any{
				"status":     models.PaymentStatusRefunded,
				"updated_at": now,
			}); err != nil {
				return err
			}
			if err := s.releaseInventoryHold(ctx, tx, order, now); err != nil {
				return err
			}
			terminalChange = order.Status != models.OrderStatusRefunded
			return tx.Orders.UpdateFields(ctx, order.ID, map[string]any{
				"status":         models.OrderStatusRefunded,
				"payment_status": models.PaymentStatusRefunded,
				"updated_at":     now,
			})
		}

		if ev.EntityStatus == "" {
			return nil
		}
		if err := tx.Payments.UpdateFields(ctx, payment.ID, map[string]any{
			"status":     models.PaymentStatus(ev.EntityStatus),
			"updated_at": now,
		}); err != nil {
			return err
		}

		// A late webhook must not resurrect a cancelled or refunded order.
		if order.Status == models.OrderStatusCancelled || order.Status == models.OrderStatusRefunded {
			return nil
		}

		switch ev.Kind {
		case PaymentEventCaptured, PaymentEventAuthorized:
			paymentStatus := models.PaymentStatusAuthorized
			if ev.Kind == PaymentEventCaptured {
				paymentStatus = models.PaymentStatusPaid
			}
			fields := map[string]any{
				"payment_status": paymentStatus,
				// The hold converts to a committed sale: the expiry is gone
				// but nothing goes back to the pool.
				"reservation_expires_at": nil,
				"inventory_released":     false,
				"updated_at":             now,
			}
			if order.Status == models.OrderStatusCreated || order.Status == models.OrderStatusPending {
				fields["status"] = models.OrderStatusConfirmed
				confirmedNow = true
			}
			paidNow = paymentStatus == models.PaymentStatusPaid &&
				order.PaymentStatus != models.PaymentStatusPaid
			return tx.Orders.UpdateFields(ctx, order.ID, fields)
		case PaymentEventFailed:
			// The sale did not happen; the hold goes back to stock.
			if err := s.releaseInventoryHold(ctx, tx, order, now); err != nil {
				return err
			}
			terminalChange = order.Status != models.OrderStatusPaymentFailed
			return tx.Orders.UpdateFields(ctx, order.ID, map[string]any{
				"payment_status": models.PaymentStatusFailed,
				"status":         models.OrderStatusPaymentFailed,
				"updated_at":     now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if !matched {
		return nil, nil, nil
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	payment, err := s.repo.Payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}
	s.cacheStatus(ctx, order)
	s.publishReconciliation(ctx, order, confirmedNow, paidNow, terminalChange)
	return order, payment, nil
}

// RequestRefund records the refund intent and, when a provider is wired and
// the payment carries a provider id, initiates the gateway refund. Provider
// confirmation arrives later through ApplyPaymentEvent.
func (s *OrderService) RequestRefund(ctx context.Context, paymentID uuid.UUID, amount *decimal.Decimal, reason *string) (*models.Refund, error) {
	payment, err := s.repo.Payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	refundAmount := payment.Amount
	if amount != nil {
		refundAmount = *amount
	}

	refund := &models.Refund{
		PaymentID: payment.ID,
		Amount:    refundAmount,
		Status:    models.RefundStatusRequested,
		Reason:    reason,
	}

	if s.provider != nil && payment.ProviderPaymentID != nil {
		minor := toMinorUnits(refundAmount)
		res, err := s.provider.RequestRefund(ctx, ProviderRefundInput{
			ProviderPaymentID: *payment.ProviderPaymentID,
			AmountMinorUnits:  &minor,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPaymentProviderUnavailable, err)
		}
		if res.ID != "" {
			refund.ProviderRefundID = &res.ID
		}
	}

	now := s.now()
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Payments.CreateRefund(ctx, refund); err != nil {
			return err
		}
		if err := tx.Payments.UpdateFields(ctx, payment.ID, map[string]any{
			"status":     models.PaymentStatusRefundRequested,
			"updated_at": now,
		}); err != nil {
			return err
		}
		order, err := tx.Orders.GetByID(ctx, payment.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		fields := map[string]any{
			"payment_status": models.PaymentStatusRefundRequested,
			"updated_at":     now,
		}
		if order.Status != models.OrderStatusRefunded && order.Status != models.OrderStatusCancelled {
			fields["status"] = models.OrderStatusRefundInitiated
		}
		return tx.Orders.UpdateFields(ctx, order.ID, fields)
	})
	if err != nil {
		return nil, err
	}
	return refund, nil
}

// ExpireStaleReservations releases holds on unpaid orders whose reservation
// passed its expiry. Safe to run concurrently with itself and with the
// inline sweep: released orders drop out of the selection predicate.
func (s *OrderService) ExpireStaleReservations(ctx context.Context, now time.Time) (int, error) {
	var count int
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		n, err := s.expireStale(ctx, tx, now)
		count = n
		return err
	})
	return count, err
}

// RecordProviderEvent journals the raw webhook before reconciliation.
func (s *OrderService) RecordProviderEvent(ctx context.Context, headersJSON, payloadJSON, signature string) error {
	return s.repo.Payments.RecordProviderEvent(ctx, &models.ProviderEvent{
		HeadersJSON: headersJSON,
		PayloadJSON: payloadJSON,
		Signature:   signature,
	})
}

func (s *OrderService) expireStale(ctx context.Context, tx *repository.Repository, now time.Time) (int, error) {
	expired, err := tx.Orders.FindExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	for i := range expired {
		order := &expired[i]
		if err := s.releaseInventoryHold(ctx, tx, order, now); err != nil {
			return 0, err
		}
		if err := tx.Orders.UpdateFields(ctx, order.ID, map[string]any{
			"status":         models.OrderStatusExpired,
			"payment_status": models.PaymentStatusCancelled,
			"updated_at":     now,
		}); err != nil {
			return 0, err
		}
	}
	return len(expired), nil
}

// releaseInventoryHold restocks the order's items once. The monotonic
// inventory_released flag makes repeated calls no-ops; the expiry is cleared
// either way to keep the released-implies-no-expiry invariant.
func (s *OrderService) releaseInventoryHold(ctx context.Context, tx *repository.Repository, order *models.Order, now time.Time) error {
	if order.InventoryReleased {
		if order.ReservationExpiresAt != nil {
			order.ReservationExpiresAt = nil
			return tx.Orders.UpdateFields(ctx, order.ID, map[string]any{
				"reservation_expires_at": nil,
			})
		}
		return nil
	}
	for _, item := range order.Items {
		if err := tx.Cakes.Release(ctx, item.CakeID, item.Quantity); err != nil {
			return err
		}
	}
	order.InventoryReleased = true
	order.ReservationExpiresAt = nil
	return tx.Orders.UpdateFields(ctx, order.ID, map[string]any{
		"inventory_released":     true,
		"reservation_expires_at": nil,
		"updated_at":             now,
	})
}

func (s *OrderService) cancelOpenPayments(ctx context.Context, tx *repository.Repository, order *models.Order, now time.Time) error {
	for _, p := range order.Payments {
		if p.Status == models.PaymentStatusRefunded || p.Status == models.PaymentStatusRefundRequested {
			continue
		}
		if err := tx.Payments.UpdateFields(ctx, p.ID, map[string]any{
			"status":     models.PaymentStatusCancelled,
			"updated_at": now,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderService) resolvePayment(ctx context.Context, tx *repository.Repository, ev PaymentEvent) (*models.Payment, error) {
	if ev.ProviderPaymentID != "" {
		payment, err := tx.Payments.GetByProviderPaymentID(ctx, ev.ProviderPaymentID)
		if err != nil || payment != nil {
			return payment, err
		}
	}
	if ev.ProviderOrderID != "" {
		return tx.Payments.GetByProviderOrderID(ctx, ev.ProviderOrderID)
	}
	return nil, nil
}

func (s *OrderService) cancellationAllowed(order *models.Order, now time.Time) bool {
	switch order.Status {
	case models.OrderStatusCreated, models.OrderStatusPending, models.OrderStatusConfirmed:
	default:
		return false
	}
	return now.Sub(order.CreatedAt) <= s.cfg.CancellationWindow
}

func (s *OrderService) cacheStatus(ctx context.Context, order *models.Order) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetOrderStatus(ctx, order.ID, order.Status, order.PaymentStatus); err != nil {
		s.log.Warn("order status cache write failed", zap.String("order_id", order.ID.String()), zap.Error(err))
	}
}

func (s *OrderService) publishReconciliation(ctx context.Context, order *models.Order, confirmedNow, paidNow, terminalChange bool) {
	if s.events == nil {
		return
	}
	now := s.now()
	if confirmedNow {
		if err := s.events.PublishOrderConfirmed(ctx, OrderConfirmedEvent{
			OrderID:     order.ID,
			CustomerID:  order.CustomerID,
			Status:      string(order.Status),
			Total:       order.Total,
			Currency:    order.Currency,
			ConfirmedAt: now,
		}); err != nil {
			s.log.Error("publish order confirmed failed", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}
	if paidNow {
		if err := s.events.PublishOrderPaid(ctx, OrderPaidEvent{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			Amount:     order.Total,
			Currency:   order.Currency,
			PaidAt:     now,
		}); err != nil {
			s.log.Error("publish order paid failed", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}
	if terminalChange {
		if err := s.events.PublishOrderStatusChanged(ctx, OrderStatusChangedEvent{
			OrderID:       order.ID,
			CustomerID:    order.CustomerID,
			Status:        order.Status,
			PaymentStatus: string(order.PaymentStatus),
			ChangedAt:     now,
		}); err != nil {
			s.log.Error("publish order status changed failed", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}
}

// toMinorUnits converts a 2-decimal money amount to the currency's minor
// units (paise for INR).
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
