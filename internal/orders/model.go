// Package orders manages client subscriptions to catalog products. An order
// owns its own billing terms, captured from the product at creation time.
package orders

import (
	"time"

	"github.com/ita-digital/backoffice/internal/catalog"
)

// OrderStatus enumerates the order lifecycle.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusActive    OrderStatus = "active"
	StatusSuspended OrderStatus = "suspended"
	StatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether the status is a known lifecycle state.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusSuspended, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether the move to target is allowed. Cancelled is
// terminal; suspension only applies to active orders and vice versa.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	if s == target {
		return false
	}
	switch s {
	case StatusPending:
		return target == StatusActive || target == StatusCancelled
	case StatusActive:
		return target == StatusSuspended || target == StatusCancelled
	case StatusSuspended:
		return target == StatusActive || target == StatusCancelled
	}
	return false
}

// ServiceOrder is a client's subscription to a product.
type ServiceOrder struct {
	ID           string               `json:"id"`
	ProductID    string               `json:"product_id"`
	ClientID     string               `json:"client_id"`
	Status       OrderStatus          `json:"status"`
	Price        float64              `json:"price"`
	SetupFee     float64              `json:"setup_fee,omitempty"`
	BillingCycle catalog.BillingCycle `json:"billing_cycle"`
	NextDueDate  time.Time            `json:"next_due_date"`
	Notes        string               `json:"notes,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}
