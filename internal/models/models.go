package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cake is a sellable catalog item. Rows are never deleted; unavailable cakes
// are soft-disabled via IsAvailable.
type Cake struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string          `gorm:"type:varchar(150);not null"`
	Slug          string          `gorm:"type:varchar(160);not null;uniqueIndex:ux_cakes_slug"`
	Description   *string         `gorm:"type:text"`
	Price         decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Currency      string          `gorm:"type:char(3);not null;default:'INR'"`
	ImageURL      *string         `gorm:"type:varchar(512)"`
	Category      *string         `gorm:"type:varchar(100)"`
	StockQuantity int             `gorm:"not null;default:0"`
	IsAvailable   bool            `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Cake) TableName() string { return "cakes" }

// Cart holds a customer's (or guest's) pending selection. Upserts replace the
// whole line set; the cart disappears when an order supersedes it.
type Cart struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID *string   `gorm:"type:varchar(64);index"`
	CartToken  *string   `gorm:"type:varchar(64);uniqueIndex:ux_carts_token"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

func (Cart) TableName() string { return "carts" }

type CartItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CartID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	CakeID    uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int             `gorm:"not null"`
	PriceEach decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`

	Cake *Cake `gorm:"foreignKey:CakeID;constraint:OnDelete:RESTRICT"`
}

func (CartItem) TableName() string { return "cart_items" }

// Order owns its items and payments. Orders are never deleted.
type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CartID        *uuid.UUID      `gorm:"type:uuid"`
	CustomerID    *string         `gorm:"type:varchar(64);index"`
	Status        OrderStatus     `gorm:"type:varchar(32);not null;default:'created';index"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(32);not null;default:'pending';index"`
	Currency      string          `gorm:"type:char(3);not null;default:'INR'"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Taxes         decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Shipping      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Total         decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	ProviderOrderID *string `gorm:"type:varchar(64);uniqueIndex:ux_orders_provider_order"`
	IdempotencyKey  *string `gorm:"type:varchar(128);uniqueIndex:ux_orders_idempotency_key"`
	IsTest          bool    `gorm:"not null;default:false"`

	// Reservation hold bookkeeping. InventoryReleased is monotonic false->true;
	// InventoryReleased=true implies ReservationExpiresAt=nil.
	ReservationExpiresAt *time.Time `gorm:"index"`
	InventoryReleased    bool       `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments []Payment   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is an immutable price snapshot taken from the cart at creation.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CakeID    uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int             `gorm:"not null"`
	PriceEach decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	LineTotal decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`

	Cake *Cake `gorm:"foreignKey:CakeID;constraint:OnDelete:RESTRICT"`
}

func (OrderItem) TableName() string { return "order_items" }

// Payment tracks the provider-side life of an order's money. Exactly one row
// is created per order; refunds attach Refund rows instead of new payments.
type Payment struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount            decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Currency          string          `gorm:"type:char(3);not null;default:'INR'"`
	Status            PaymentStatus   `gorm:"type:varchar(32);not null;default:'pending'"`
	ProviderPaymentID *string         `gorm:"type:varchar(64);uniqueIndex:ux_payments_provider_payment"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Payment) TableName() string { return "payments" }

type RefundStatus string

const (
	RefundStatusRequested RefundStatus = "requested"
	RefundStatusProcessed RefundStatus = "processed"
	RefundStatusFailed    RefundStatus = "failed"
)

type Refund struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Status           RefundStatus    `gorm:"type:varchar(32);not null;default:'requested'"`
	Reason           *string         `gorm:"type:text"`
	ProviderRefundID *string         `gorm:"type:varchar(64)"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Refund) TableName() string { return "refunds" }

// ProviderEvent journals every inbound webhook before reconciliation, so
// unmatched or replayed deliveries stay auditable.
type ProviderEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	HeadersJSON string    `gorm:"type:text;not null"`
	PayloadJSON string    `gorm:"type:text;not null"`
	Signature   string    `gorm:"type:varchar(256)"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (ProviderEvent) TableName() string { return "provider_events" }

// Invoice is produced at most once per paid order by the order.paid worker.
type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceNumber string          `gorm:"type:varchar(64);not null;uniqueIndex:ux_invoices_number"`
	Total         decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Currency      string          `gorm:"type:char(3);not null;default:'INR'"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (Invoice) TableName() string { return "invoices" }
