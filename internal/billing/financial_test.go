package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAggregateTotalsPartitionTheLedger(t *testing.T) {
	ledger := []PaymentEntry{
		{Amount: 100, Status: StatusPaid, Date: date(2024, time.January, 1)},
		{Amount: 50, Status: StatusPaid, Date: date(2024, time.February, 1)},
		{Amount: 75, Status: StatusPending, DueDate: date(2024, time.March, 1)},
		{Amount: 25, Status: StatusOverdue, DueDate: date(2024, time.February, 15)},
	}
	fin := AggregateFinancial("client-1", ledger)

	require.Equal(t, 150.0, fin.TotalPaid)
	require.Equal(t, 75.0, fin.TotalPending)
	require.Equal(t, 25.0, fin.TotalOverdue)

	var sum float64
	for _, e := range ledger {
		sum += e.Amount
	}
	require.Equal(t, sum, fin.TotalPaid+fin.TotalPending+fin.TotalOverdue)
	require.Equal(t, fin.TotalPaid-(fin.TotalPending+fin.TotalOverdue), fin.Balance)
}

func TestAggregateEmptyLedger(t *testing.T) {
	fin := AggregateFinancial("client-1", nil)
	require.Zero(t, fin.Balance)
	require.Nil(t, fin.LastPaymentDate)
	require.Nil(t, fin.NextDueDate)
	require.Empty(t, fin.PaymentHistory)
	require.Empty(t, fin.PendingInvoices)
}

func TestPendingInvoicesSortedByDueDate(t *testing.T) {
	ledger := []PaymentEntry{
		{Amount: 10, Status: StatusPending, DueDate: date(2024, time.May, 1)},
		{Amount: 10, Status: StatusOverdue, DueDate: date(2024, time.January, 10)},
		{Amount: 10, Status: StatusPending, DueDate: date(2024, time.March, 1)},
		{Amount: 10, Status: StatusOverdue, DueDate: date(2024, time.April, 20)},
	}
	fin := AggregateFinancial("client-1", ledger)

	require.Len(t, fin.PendingInvoices, 4)
	for i := 1; i < len(fin.PendingInvoices); i++ {
		require.False(t, fin.PendingInvoices[i].DueDate.Before(fin.PendingInvoices[i-1].DueDate))
	}
}

func TestLastPaymentDatePrefersPaymentDate(t *testing.T) {
	paidAt := date(2024, time.March, 5)
	ledger := []PaymentEntry{
		{Amount: 100, Status: StatusPaid, Date: date(2024, time.January, 1), PaymentDate: &paidAt},
		{Amount: 100, Status: StatusPaid, Date: date(2024, time.February, 1)},
	}
	fin := AggregateFinancial("client-1", ledger)

	require.NotNil(t, fin.LastPaymentDate)
	require.Equal(t, paidAt, *fin.LastPaymentDate)
}

func TestNextDueDateIsEarliestPending(t *testing.T) {
	ledger := []PaymentEntry{
		{Amount: 10, Status: StatusPending, DueDate: date(2024, time.June, 1)},
		{Amount: 10, Status: StatusPending, DueDate: date(2024, time.April, 1)},
		// overdue entries do not move the next due date
		{Amount: 10, Status: StatusOverdue, DueDate: date(2024, time.January, 1)},
	}
	fin := AggregateFinancial("client-1", ledger)

	require.NotNil(t, fin.NextDueDate)
	require.Equal(t, date(2024, time.April, 1), *fin.NextDueDate)
}

func TestPaymentHistoryContainsOnlyPaidEntries(t *testing.T) {
	ledger := []PaymentEntry{
		{Amount: 100, Status: StatusPaid, Date: date(2024, time.January, 1)},
		{Amount: 75, Status: StatusPending, DueDate: date(2024, time.March, 1)},
	}
	fin := AggregateFinancial("client-1", ledger)

	require.Len(t, fin.PaymentHistory, 1)
	require.Equal(t, StatusPaid, fin.PaymentHistory[0].Status)
}
