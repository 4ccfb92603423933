package jobs

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ita-digital/backoffice/internal/billing"
	"github.com/ita-digital/backoffice/internal/catalog"
	"github.com/ita-digital/backoffice/internal/invoicing"
	"github.com/ita-digital/backoffice/internal/orders"
)

type fakePaymentRepo struct {
	payments map[string]billing.PaymentEntry
}

func (r *fakePaymentRepo) Save(ctx context.Context, entry billing.PaymentEntry) (billing.PaymentEntry, error) {
	r.payments[entry.ID] = entry
	return entry, nil
}

func (r *fakePaymentRepo) Get(ctx context.Context, id string) (billing.PaymentEntry, error) {
	return r.payments[id], nil
}

func (r *fakePaymentRepo) ListByClient(ctx context.Context, clientID string) ([]billing.PaymentEntry, error) {
	return nil, nil
}

func (r *fakePaymentRepo) MarkOverdue(ctx context.Context, asOf time.Time) (int, error) {
	updated := 0
	for id, p := range r.payments {
		if p.Status == billing.StatusPending && p.DueDate.Before(asOf) {
			p.Status = billing.StatusOverdue
			r.payments[id] = p
			updated++
		}
	}
	return updated, nil
}

func (r *fakePaymentRepo) SetInvoiceNumber(ctx context.Context, id, invoiceNumber string) error {
	p := r.payments[id]
	p.InvoiceNumber = invoiceNumber
	r.payments[id] = p
	return nil
}

type noOrders struct{}

func (noOrders) ListByClient(ctx context.Context, clientID string) ([]orders.ServiceOrder, error) {
	return nil, nil
}

type noProducts struct{}

func (noProducts) ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]catalog.ServiceProduct, error) {
	return nil, nil
}

func TestOverdueScanHandler(t *testing.T) {
	repo := &fakePaymentRepo{payments: map[string]billing.PaymentEntry{
		"pay-1": {ID: "pay-1", ClientID: "client-1", Amount: 100,
			Status: billing.StatusPending, DueDate: time.Now().Add(-48 * time.Hour)},
		"pay-2": {ID: "pay-2", ClientID: "client-1", Amount: 100,
			Status: billing.StatusPending, DueDate: time.Now().Add(48 * time.Hour)},
	}}
	svc := billing.NewService(repo, noOrders{}, noProducts{}, nil)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	handler := NewOverdueScanHandler(logger, svc, nil)
	require.NoError(t, handler(context.Background(), NewOverdueScanTask()))

	require.Equal(t, billing.StatusOverdue, repo.payments["pay-1"].Status)
	require.Equal(t, billing.StatusPending, repo.payments["pay-2"].Status)
}

type fakeGateway struct {
	invoicing.Gateway
	issued int
}

func (f *fakeGateway) IssueInvoice(ctx context.Context, companyID string, inv invoicing.InvoiceRequest) (invoicing.IssuedInvoice, error) {
	f.issued++
	return invoicing.IssuedInvoice{ID: "nf-1", Number: "2024-0007", Status: "issued"}, nil
}

func TestInvoiceIssueHandlerAttachesNumber(t *testing.T) {
	repo := &fakePaymentRepo{payments: map[string]billing.PaymentEntry{
		"pay-1": {ID: "pay-1", ClientID: "client-1", Amount: 150, Status: billing.StatusPaid},
	}}
	billingSvc := billing.NewService(repo, noOrders{}, noProducts{}, nil)
	gw := &fakeGateway{}
	invoicingSvc := invoicing.NewService(gw)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	handler := NewInvoiceIssueHandler(logger, billingSvc, invoicingSvc, nil)
	task, err := NewInvoiceIssueTask(InvoiceIssuePayload{
		PaymentID:    "pay-1",
		CompanyID:    "emp-1",
		CustomerName: "Acme",
		CustomerDoc:  "12345678000195",
		Description:  "Hospedagem mensal",
		Amount:       150,
	})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), task))

	require.Equal(t, 1, gw.issued)
	require.Equal(t, "2024-0007", repo.payments["pay-1"].InvoiceNumber)
}
