package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the order lifecycle state. Transitions are linear:
// AWAITING_PAYMENT -> PROCESSING -> DONE, no back-transitions.
type OrderStatus string

const (
	OrderStatusAwaitingPayment OrderStatus = "AWAITING_PAYMENT"
	OrderStatusProcessing      OrderStatus = "PROCESSING"
	OrderStatusDone            OrderStatus = "DONE"
)

// ParseOrderStatus converts the external string representation into an
// OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusAwaitingPayment, OrderStatusProcessing, OrderStatusDone:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// CanTransition reports whether moving from s to next is a legal
// lifecycle step.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	switch s {
	case OrderStatusAwaitingPayment:
		return next == OrderStatusProcessing
	case OrderStatusProcessing:
		return next == OrderStatusDone
	}
	return false
}

// Order snapshots cart pricing at creation time. The provider-side
// payment object is the source of truth for payment state; PaidAt and
// Status are a local cache of it, updated via reconciliation. PaidAt is
// set at most once: nil implies AWAITING_PAYMENT, non-nil implies
// PROCESSING or DONE.
type Order struct {
	BaseModel
	SubTotal              int64       `json:"sub_total"`
	Tax                   int64       `json:"tax"`
	GrandTotal            int64       `json:"grand_total"`
	ExternalTransactionID *string     `json:"external_transaction_id"`
	PaymentMethodID       *string     `json:"payment_method_id"`
	PaidAt                *time.Time  `json:"paid_at"`
	Status                OrderStatus `gorm:"type:varchar(32);index" json:"status"`
	Items                 []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// OrderItem is owned exclusively by one Order and never mutated after
// creation. Price is the unit price snapshot taken from the catalog.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"quantity"`
}
