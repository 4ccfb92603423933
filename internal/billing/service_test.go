package billing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ita-digital/backoffice/internal/catalog"
	"github.com/ita-digital/backoffice/internal/orders"
	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

type memoryPaymentRepo struct {
	payments map[string]PaymentEntry
	nextID   int
}

func newMemoryPaymentRepo() *memoryPaymentRepo {
	return &memoryPaymentRepo{payments: make(map[string]PaymentEntry)}
}

func (r *memoryPaymentRepo) Save(ctx context.Context, entry PaymentEntry) (PaymentEntry, error) {
	if entry.ID == "" {
		r.nextID++
		entry.ID = fmt.Sprintf("pay-%d", r.nextID)
	}
	r.payments[entry.ID] = entry
	return entry, nil
}

func (r *memoryPaymentRepo) Get(ctx context.Context, id string) (PaymentEntry, error) {
	p, ok := r.payments[id]
	if !ok {
		return PaymentEntry{}, httpx.ErrNotFound
	}
	return p, nil
}

func (r *memoryPaymentRepo) ListByClient(ctx context.Context, clientID string) ([]PaymentEntry, error) {
	var out []PaymentEntry
	for _, p := range r.payments {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryPaymentRepo) MarkOverdue(ctx context.Context, asOf time.Time) (int, error) {
	updated := 0
	for id, p := range r.payments {
		if p.Status == StatusPending && p.DueDate.Before(asOf) {
			p.Status = StatusOverdue
			r.payments[id] = p
			updated++
		}
	}
	return updated, nil
}

func (r *memoryPaymentRepo) SetInvoiceNumber(ctx context.Context, id, invoiceNumber string) error {
	p, ok := r.payments[id]
	if !ok {
		return httpx.ErrNotFound
	}
	p.InvoiceNumber = invoiceNumber
	r.payments[id] = p
	return nil
}

type stubOrderSource struct {
	orders []orders.ServiceOrder
}

func (s *stubOrderSource) ListByClient(ctx context.Context, clientID string) ([]orders.ServiceOrder, error) {
	var out []orders.ServiceOrder
	for _, o := range s.orders {
		if o.ClientID == clientID {
			out = append(out, o)
		}
	}
	return out, nil
}

type stubProductSource struct {
	products []catalog.ServiceProduct
}

func (s *stubProductSource) ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]catalog.ServiceProduct, error) {
	return s.products, nil
}

func newBillingService(t *testing.T, repo Repository, withCache bool) *Service {
	t.Helper()
	var cache *Cache
	if withCache {
		mr := miniredis.RunT(t)
		redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		cache = NewCache(redisClient, time.Minute)
	}
	svc := NewService(repo,
		&stubOrderSource{orders: []orders.ServiceOrder{{
			ID: "order-1", ClientID: "client-1", ProductID: "prod-host",
			Status: orders.StatusActive, Price: 100,
			BillingCycle: catalog.CycleMonthly, CreatedAt: date(2024, time.January, 15),
		}}},
		&stubProductSource{products: testProducts},
		cache,
	)
	svc.now = func() time.Time { return date(2024, time.April, 1) }
	return svc
}

func TestPaymentHistoryMergesRecordedPayments(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryPaymentRepo()
	svc := newBillingService(t, repo, false)

	_, err := repo.Save(ctx, PaymentEntry{
		ClientID: "client-1", Date: date(2024, time.February, 20), Amount: 300,
		Type: EntryRecurring, ProductName: "Consultoria", Status: StatusOverdue,
		DueDate: date(2024, time.February, 20),
	})
	require.NoError(t, err)

	ledger, err := svc.PaymentHistory(ctx, "client-1")
	require.NoError(t, err)
	require.Len(t, ledger, 5) // 4 generated + 1 recorded

	var sawRecorded bool
	for i := 1; i < len(ledger); i++ {
		require.False(t, ledger[i].Date.After(ledger[i-1].Date))
		if ledger[i].ProductName == "Consultoria" {
			sawRecorded = true
		}
	}
	require.True(t, sawRecorded)
}

func TestFinancialIncludesRecordedOverdue(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryPaymentRepo()
	svc := newBillingService(t, repo, false)

	_, err := repo.Save(ctx, PaymentEntry{
		ClientID: "client-1", Date: date(2024, time.February, 20), Amount: 300,
		Type: EntryRecurring, Status: StatusOverdue, DueDate: date(2024, time.February, 20),
	})
	require.NoError(t, err)

	fin, err := svc.Financial(ctx, "client-1")
	require.NoError(t, err)
	require.Equal(t, 300.0, fin.TotalPaid)   // Jan 15, Feb 15, Mar 15 generated
	require.Equal(t, 100.0, fin.TotalPending) // Apr 15 projection
	require.Equal(t, 300.0, fin.TotalOverdue)
	require.Equal(t, fin.TotalPaid-(fin.TotalPending+fin.TotalOverdue), fin.Balance)
}

func TestFinancialServedFromCacheUntilBump(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryPaymentRepo()
	svc := newBillingService(t, repo, true)

	first, err := svc.Financial(ctx, "client-1")
	require.NoError(t, err)

	// a write that bypasses the service is invisible while the cache holds
	_, err = repo.Save(ctx, PaymentEntry{
		ClientID: "client-1", Date: date(2024, time.March, 20), Amount: 500,
		Type: EntryRecurring, Status: StatusPaid,
	})
	require.NoError(t, err)

	cached, err := svc.Financial(ctx, "client-1")
	require.NoError(t, err)
	require.Equal(t, first.TotalPaid, cached.TotalPaid)

	require.NoError(t, svc.cache.Bump(ctx))

	fresh, err := svc.Financial(ctx, "client-1")
	require.NoError(t, err)
	require.Equal(t, first.TotalPaid+500, fresh.TotalPaid)
}

func TestRecordPaymentValidatesAndBumpsCache(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryPaymentRepo()
	svc := newBillingService(t, repo, true)

	before, err := svc.Financial(ctx, "client-1")
	require.NoError(t, err)

	_, err = svc.RecordPayment(ctx, RecordPaymentInput{
		ClientID: "client-1", Amount: -5, Type: EntryRecurring, Status: StatusPaid,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	entry, err := svc.RecordPayment(ctx, RecordPaymentInput{
		ClientID: "client-1", Amount: 250, Type: EntryRecurring,
		Status: StatusPaid, Date: date(2024, time.March, 28),
	})
	require.NoError(t, err)
	require.NotEmpty(t, entry.ID)
	require.Equal(t, date(2024, time.March, 28), entry.DueDate) // defaults to date

	after, err := svc.Financial(ctx, "client-1")
	require.NoError(t, err)
	require.Equal(t, before.TotalPaid+250, after.TotalPaid)
}

func TestMarkOverduePaymentsOnlyTouchesPastDuePending(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryPaymentRepo()
	svc := newBillingService(t, repo, false)

	pastDue, err := repo.Save(ctx, PaymentEntry{
		ClientID: "client-1", Amount: 100, Type: EntryRecurring,
		Status: StatusPending, DueDate: date(2024, time.March, 1),
	})
	require.NoError(t, err)
	future, err := repo.Save(ctx, PaymentEntry{
		ClientID: "client-1", Amount: 100, Type: EntryRecurring,
		Status: StatusPending, DueDate: date(2024, time.May, 1),
	})
	require.NoError(t, err)

	updated, err := svc.MarkOverduePayments(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, updated)
	require.Equal(t, StatusOverdue, repo.payments[pastDue.ID].Status)
	require.Equal(t, StatusPending, repo.payments[future.ID].Status)
}

func TestAttachInvoice(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryPaymentRepo()
	svc := newBillingService(t, repo, false)

	entry, err := repo.Save(ctx, PaymentEntry{ClientID: "client-1", Amount: 100, Type: EntryRecurring, Status: StatusPaid})
	require.NoError(t, err)

	require.ErrorIs(t, svc.AttachInvoice(ctx, entry.ID, ""), httpx.ErrValidation)
	require.NoError(t, svc.AttachInvoice(ctx, entry.ID, "NF-2024-0042"))
	require.Equal(t, "NF-2024-0042", repo.payments[entry.ID].InvoiceNumber)
	require.ErrorIs(t, svc.AttachInvoice(ctx, "ghost", "NF-1"), httpx.ErrNotFound)
}
