package domain

import "strings"

// PaymentMethod is the checkout payment choice
type PaymentMethod string

const (
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

// ParsePaymentMethod normalizes a form value; blank input defaults to card.
// Unknown values are returned lowercased so the backend can reject them.
func ParsePaymentMethod(raw string) PaymentMethod {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return PaymentMethodCard
	}
	return PaymentMethod(v)
}

// IsValid checks if the payment method is one the backend accepts
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCard || m == PaymentMethodTransfer
}

// OrderStatus represents the status of an order
type OrderStatus string

const (
	// PENDING - New order, waiting for payment or transfer proof
	OrderStatusPending OrderStatus = "pending"
	// PAYMENT_LINK_CREATED - Card order with a gateway link issued
	OrderStatusPaymentLinkCreated OrderStatus = "payment_link_created"
	// PAID - Gateway confirmed the payment
	OrderStatusPaid OrderStatus = "paid"
	// PROCESSING - Batch production started
	OrderStatusProcessing OrderStatus = "processing"
	// SHIPPED - Handed to the courier
	OrderStatusShipped OrderStatus = "shipped"
	// DELIVERED - Received by the customer
	OrderStatusDelivered OrderStatus = "delivered"
	// CANCELLED - Order cancelled
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending,
		OrderStatusPaymentLinkCreated,
		OrderStatusPaid,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid
func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return newStatus == OrderStatusPaymentLinkCreated ||
			newStatus == OrderStatusPaid ||
			newStatus == OrderStatusCancelled
	case OrderStatusPaymentLinkCreated:
		return newStatus == OrderStatusPaid ||
			newStatus == OrderStatusCancelled
	case OrderStatusPaid:
		return newStatus == OrderStatusProcessing ||
			newStatus == OrderStatusCancelled
	case OrderStatusProcessing:
		return newStatus == OrderStatusShipped
	case OrderStatusShipped:
		return newStatus == OrderStatusDelivered
	case OrderStatusDelivered, OrderStatusCancelled:
		return false // Terminal states
	default:
		return false
	}
}
