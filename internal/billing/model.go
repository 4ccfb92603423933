// Package billing derives each client's payment ledger from their service
// orders and aggregates it into a financial snapshot. The ledger merges two
// sources: entries generated deterministically from the orders' billing terms
// and payments recorded manually by an administrator.
package billing

import "time"

// EntryType distinguishes one-time setup charges from recurring ones.
type EntryType string

const (
	EntrySetup     EntryType = "setup"
	EntryRecurring EntryType = "recurring"
)

// EntryStatus is the collection state of a ledger line.
type EntryStatus string

const (
	StatusPaid    EntryStatus = "paid"
	StatusPending EntryStatus = "pending"
	StatusOverdue EntryStatus = "overdue"
)

// Valid reports whether the status is a known collection state.
func (s EntryStatus) Valid() bool {
	switch s {
	case StatusPaid, StatusPending, StatusOverdue:
		return true
	}
	return false
}

// PaymentEntry is a single ledger line. Generated entries carry no ID and are
// recomputed on every read; recorded entries are persisted and carry one.
type PaymentEntry struct {
	ID            string      `json:"id,omitempty"`
	ClientID      string      `json:"client_id"`
	OrderID       string      `json:"order_id,omitempty"`
	Date          time.Time   `json:"date"`
	Amount        float64     `json:"amount"`
	Type          EntryType   `json:"type"`
	ProductName   string      `json:"product_name"`
	Status        EntryStatus `json:"status"`
	PaymentMethod string      `json:"payment_method,omitempty"`
	PaymentDate   *time.Time  `json:"payment_date,omitempty"`
	DueDate       time.Time   `json:"due_date"`
	InvoiceNumber string      `json:"invoice_number,omitempty"`
	Notes         string      `json:"notes,omitempty"`
}

// ClientFinancial is the aggregated per-client view. Balance goes negative
// while charges remain uncollected.
type ClientFinancial struct {
	ClientID        string         `json:"client_id"`
	Balance         float64        `json:"balance"`
	TotalPaid       float64        `json:"total_paid"`
	TotalPending    float64        `json:"total_pending"`
	TotalOverdue    float64        `json:"total_overdue"`
	LastPaymentDate *time.Time     `json:"last_payment_date,omitempty"`
	NextDueDate     *time.Time     `json:"next_due_date,omitempty"`
	PaymentHistory  []PaymentEntry `json:"payment_history"`
	PendingInvoices []PaymentEntry `json:"pending_invoices"`
}
