package errors

import (
	"fmt"
	"strings"

	"github.com/harry1917/basalto-web/internal/domain"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict is returned when there's a conflict (e.g., idempotency, a checkout already in flight)
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrUnavailable is returned when a size has no SKU assigned
type ErrUnavailable struct {
	Title string
	Size  string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("size %s of %q is not available", e.Size, e.Title)
}

// ErrSoldOut is returned when every size of a product has an empty SKU
type ErrSoldOut struct {
	Title string
}

func (e *ErrSoldOut) Error() string {
	return fmt.Sprintf("%q is sold out", e.Title)
}

// ErrRemote is returned when the order endpoint answers with a non-success status.
// Body is the raw response text and doubles as the user-facing message.
type ErrRemote struct {
	Status int
	Body   string
}

func (e *ErrRemote) Error() string {
	if body := strings.TrimSpace(e.Body); body != "" {
		return body
	}
	return fmt.Sprintf("order endpoint returned %d", e.Status)
}

// ErrOrderRejected is returned when the order endpoint reports ok=false
type ErrOrderRejected struct {
	Detail string
}

func (e *ErrOrderRejected) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return "order rejected"
}

// ErrPartialSuccess is returned when the order was created but no redirect target came back
type ErrPartialSuccess struct {
	OrderNumber   string
	PaymentMethod domain.PaymentMethod
}

func (e *ErrPartialSuccess) Error() string {
	return fmt.Sprintf("order %s created without a %s redirect target", e.OrderNumber, e.PaymentMethod)
}

// ErrInvalidStateTransition is returned when an invalid state transition is attempted
type ErrInvalidStateTransition struct {
	From domain.OrderStatus
	To   domain.OrderStatus
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ErrPaymentLink is returned when the order was stored but the payment
// provider could not issue a link for it
type ErrPaymentLink struct {
	OrderNumber string
	Detail      string
}

func (e *ErrPaymentLink) Error() string {
	return fmt.Sprintf("payment link for order %s: %s", e.OrderNumber, e.Detail)
}
