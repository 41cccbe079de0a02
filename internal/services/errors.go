package services

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart            = errors.New("cart has no items")
	ErrQuantityInvalid      = errors.New("quantity must be at least 1")
	ErrPriceInvalid         = errors.New("unit price must not be negative")
	ErrProductNotFound      = errors.New("product not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrNoPaymentRequest     = errors.New("order has no active payment request")
	ErrDuplicateRequest     = errors.New("payment request already exists for this order")
	ErrPaymentNotSuccessful = errors.New("payment not successful")
	ErrInvalidStatusFilter  = errors.New("invalid status filter")
)

// InvalidStateError reports an illegal order lifecycle transition.
type InvalidStateError struct {
	From string
	To   string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid order transition from %s to %s", e.From, e.To)
}

// GatewayError wraps a payment provider failure, including transport
// timeouts and non-2xx responses.
type GatewayError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: provider returned status %d: %s", e.Op, e.Status, e.Body)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
