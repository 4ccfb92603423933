package billing

import (
	"sort"
	"time"

	"github.com/ita-digital/backoffice/internal/catalog"
	"github.com/ita-digital/backoffice/internal/orders"
)

// GeneratePaymentHistory derives the ledger for one client as of a given
// instant. Pure function: no I/O, same inputs produce the same output.
//
// For each of the client's orders whose product still exists in the catalog:
//   - a setup fee, when present, yields exactly one paid entry dated at order
//     creation (setup fees are collected up front);
//   - recurring charges are walked from order creation one billing cycle at a
//     time, each boundary on or before asOf yielding a paid entry;
//   - unless the order is cancelled, the first boundary after asOf yields one
//     pending entry, which is the order's upcoming invoice.
//
// Orders referencing a missing product are skipped without error. The result
// is sorted newest first.
func GeneratePaymentHistory(clientID string, orderSet []orders.ServiceOrder, products []catalog.ServiceProduct, asOf time.Time) []PaymentEntry {
	byID := make(map[string]catalog.ServiceProduct, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var ledger []PaymentEntry
	for _, order := range orderSet {
		if order.ClientID != clientID {
			continue
		}
		product, ok := byID[order.ProductID]
		if !ok {
			continue
		}

		if order.SetupFee > 0 {
			paidAt := order.CreatedAt
			ledger = append(ledger, PaymentEntry{
				ClientID:    clientID,
				OrderID:     order.ID,
				Date:        order.CreatedAt,
				Amount:      order.SetupFee,
				Type:        EntrySetup,
				ProductName: product.Name,
				Status:      StatusPaid,
				PaymentDate: &paidAt,
				DueDate:     order.CreatedAt,
			})
		}

		cursor := order.CreatedAt
		for !cursor.After(asOf) {
			ledger = append(ledger, recurringEntry(order, product, cursor, StatusPaid))
			cursor = order.BillingCycle.Next(cursor)
		}
		if order.Status != orders.StatusCancelled {
			ledger = append(ledger, recurringEntry(order, product, cursor, StatusPending))
		}
	}

	sort.SliceStable(ledger, func(i, j int) bool {
		return ledger[i].Date.After(ledger[j].Date)
	})
	return ledger
}

func recurringEntry(order orders.ServiceOrder, product catalog.ServiceProduct, at time.Time, status EntryStatus) PaymentEntry {
	return PaymentEntry{
		ClientID:    order.ClientID,
		OrderID:     order.ID,
		Date:        at,
		Amount:      order.Price,
		Type:        EntryRecurring,
		ProductName: product.Name,
		Status:      status,
		DueDate:     at,
	}
}
