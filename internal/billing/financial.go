package billing

import (
	"sort"
	"time"
)

// AggregateFinancial folds a ledger into the per-client snapshot. Deterministic
// for a given ledger; performs no I/O.
func AggregateFinancial(clientID string, ledger []PaymentEntry) ClientFinancial {
	fin := ClientFinancial{
		ClientID:        clientID,
		PaymentHistory:  []PaymentEntry{},
		PendingInvoices: []PaymentEntry{},
	}

	for _, entry := range ledger {
		switch entry.Status {
		case StatusPaid:
			fin.TotalPaid += entry.Amount
			fin.PaymentHistory = append(fin.PaymentHistory, entry)

			paidAt := entry.Date
			if entry.PaymentDate != nil {
				paidAt = *entry.PaymentDate
			}
			if fin.LastPaymentDate == nil || paidAt.After(*fin.LastPaymentDate) {
				fin.LastPaymentDate = ptrTime(paidAt)
			}
		case StatusPending:
			fin.TotalPending += entry.Amount
			fin.PendingInvoices = append(fin.PendingInvoices, entry)

			if fin.NextDueDate == nil || entry.DueDate.Before(*fin.NextDueDate) {
				fin.NextDueDate = ptrTime(entry.DueDate)
			}
		case StatusOverdue:
			fin.TotalOverdue += entry.Amount
			fin.PendingInvoices = append(fin.PendingInvoices, entry)
		}
	}

	fin.Balance = fin.TotalPaid - (fin.TotalPending + fin.TotalOverdue)

	sort.SliceStable(fin.PendingInvoices, func(i, j int) bool {
		return fin.PendingInvoices[i].DueDate.Before(fin.PendingInvoices[j].DueDate)
	})
	return fin
}

func ptrTime(t time.Time) *time.Time { return &t }
