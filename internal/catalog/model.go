// Package catalog manages the sellable service offerings: groups of products
// and the products themselves, including their recurring billing terms.
package catalog

import "time"

// BillingCycle is the recurrence period of a service charge.
type BillingCycle string

const (
	CycleMonthly    BillingCycle = "monthly"
	CycleQuarterly  BillingCycle = "quarterly"
	CycleSemiannual BillingCycle = "semiannual"
	CycleAnnual     BillingCycle = "annual"
	CycleBiennial   BillingCycle = "biennial"
)

// Valid reports whether the cycle is a known recurrence period.
func (c BillingCycle) Valid() bool {
	switch c {
	case CycleMonthly, CycleQuarterly, CycleSemiannual, CycleAnnual, CycleBiennial:
		return true
	}
	return false
}

// Months returns the cycle length in calendar months.
func (c BillingCycle) Months() int {
	switch c {
	case CycleQuarterly:
		return 3
	case CycleSemiannual:
		return 6
	case CycleAnnual:
		return 12
	case CycleBiennial:
		return 24
	default:
		return 1
	}
}

// Next advances from by one billing cycle. Day-of-month is clamped to the
// last day of the target month (Jan 31 + 1 month = Feb 28/29), so the walk
// always moves strictly forward.
func (c BillingCycle) Next(from time.Time) time.Time {
	return addMonthsClamped(from, c.Months())
}

func addMonthsClamped(t time.Time, months int) time.Time {
	anchor := time.Date(t.Year(), t.Month()+time.Month(months), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	day := t.Day()
	if last := daysIn(anchor.Year(), anchor.Month()); day > last {
		day = last
	}
	return time.Date(anchor.Year(), anchor.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ServiceGroup bundles related products for the storefront.
type ServiceGroup struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ServiceProduct is a sellable offering with recurring billing terms.
// Administrative edits to a product never cascade into existing orders,
// which keep the price captured at order time.
type ServiceProduct struct {
	ID            string       `json:"id"`
	GroupID       string       `json:"group_id"`
	Name          string       `json:"name"`
	Description   string       `json:"description,omitempty"`
	Price         float64      `json:"price"`
	SetupFee      float64      `json:"setup_fee,omitempty"`
	BillingCycle  BillingCycle `json:"billing_cycle"`
	IsActive      bool         `json:"is_active"`
	Features      []string     `json:"features,omitempty"`
	StockControl  bool         `json:"stock_control"`
	StockQuantity *int         `json:"stock_quantity,omitempty"`
	AutoSetup     bool         `json:"auto_setup"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
