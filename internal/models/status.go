package models

type OrderStatus string

const (
	OrderStatusCreated         OrderStatus = "created"
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusConfirmed       OrderStatus = "confirmed"
	OrderStatusProcessing      OrderStatus = "processing"
	OrderStatusShipped         OrderStatus = "shipped"
	OrderStatusDelivered       OrderStatus = "delivered"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusRefunded        OrderStatus = "refunded"
	OrderStatusPaymentFailed   OrderStatus = "payment_failed"
	OrderStatusExpired         OrderStatus = "expired"
	OrderStatusRefundInitiated OrderStatus = "refund_initiated"
)

type PaymentStatus string

const (
	PaymentStatusPending         PaymentStatus = "pending"
	PaymentStatusAuthorized      PaymentStatus = "authorized"
	PaymentStatusCaptured        PaymentStatus = "captured"
	PaymentStatusPaid            PaymentStatus = "paid"
	PaymentStatusFailed          PaymentStatus = "failed"
	PaymentStatusCancelled       PaymentStatus = "cancelled"
	PaymentStatusRefundRequested PaymentStatus = "refund_requested"
	PaymentStatusRefunded        PaymentStatus = "refunded"
)

// allowedTransitions is the explicit allow-list for order status updates.
// Anything not present is rejected; a self-transition is a no-op upstream.
var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusCreated: {
		OrderStatusPending:   true,
		OrderStatusConfirmed: true,
		OrderStatusCancelled: true,
		OrderStatusExpired:   true,
	},
	OrderStatusPending: {
		OrderStatusConfirmed: true,
		OrderStatusCancelled: true,
		OrderStatusExpired:   true,
	},
	OrderStatusConfirmed: {
		OrderStatusProcessing: true,
		OrderStatusShipped:    true,
		OrderStatusCancelled:  true,
	},
	OrderStatusProcessing: {
		OrderStatusShipped:   true,
		OrderStatusCancelled: true,
	},
	OrderStatusShipped: {
		OrderStatusDelivered: true,
	},
	OrderStatusDelivered:     {},
	OrderStatusCancelled:     {},
	OrderStatusRefunded:      {},
	OrderStatusPaymentFailed: {},
	OrderStatusExpired:       {},
}

func CanTransition(from, to OrderStatus) bool {
	return allowedTransitions[from][to]
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s OrderStatus) IsTerminal() bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}
