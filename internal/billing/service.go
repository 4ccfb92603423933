package billing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/ita-digital/backoffice/internal/catalog"
	"github.com/ita-digital/backoffice/internal/orders"
	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

// OrderSource supplies a client's orders.
type OrderSource interface {
	ListByClient(ctx context.Context, clientID string) ([]orders.ServiceOrder, error)
}

// ProductSource supplies the product catalog for name resolution.
type ProductSource interface {
	ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]catalog.ServiceProduct, error)
}

// Service merges the generated ledger with recorded payments and serves
// cached financial snapshots.
type Service struct {
	repo     Repository
	orders   OrderSource
	products ProductSource
	cache    *Cache
	group    singleflight.Group
	now      func() time.Time
}

// NewService builds the billing service. cache may be nil.
func NewService(repo Repository, orderSource OrderSource, productSource ProductSource, cache *Cache) *Service {
	return &Service{
		repo:     repo,
		orders:   orderSource,
		products: productSource,
		cache:    cache,
		now:      time.Now,
	}
}

// PaymentHistory returns the client's full ledger, newest first: generated
// entries plus manually recorded payments.
func (s *Service) PaymentHistory(ctx context.Context, clientID string) ([]PaymentEntry, error) {
	var (
		orderSet []orders.ServiceOrder
		products []catalog.ServiceProduct
		recorded []PaymentEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orderSet, err = s.orders.ListByClient(gctx, clientID)
		if err != nil {
			return fmt.Errorf("load orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		products, err = s.products.ListProducts(gctx, catalog.ProductFilter{})
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recorded, err = s.repo.ListByClient(gctx, clientID)
		if err != nil {
			return fmt.Errorf("load recorded payments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ledger := GeneratePaymentHistory(clientID, orderSet, products, s.now())
	ledger = append(ledger, recorded...)
	sort.SliceStable(ledger, func(i, j int) bool {
		return ledger[i].Date.After(ledger[j].Date)
	})
	return ledger, nil
}

// Financial returns the aggregated snapshot for the client, served from cache
// when fresh. Concurrent misses for the same client collapse into a single
// computation.
func (s *Service) Financial(ctx context.Context, clientID string) (ClientFinancial, error) {
	key, err := s.cache.BuildKey(ctx, keyFinancial(clientID))
	if err != nil {
		return ClientFinancial{}, err
	}

	result := s.group.DoChan(key, func() (any, error) {
		var fin ClientFinancial
		err := s.cache.FetchJSON(ctx, key, &fin, func(ctx context.Context) (any, error) {
			ledger, err := s.PaymentHistory(ctx, clientID)
			if err != nil {
				return nil, err
			}
			return AggregateFinancial(clientID, ledger), nil
		})
		return fin, err
	})

	select {
	case <-ctx.Done():
		return ClientFinancial{}, ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return ClientFinancial{}, res.Err
		}
		return res.Val.(ClientFinancial), nil
	}
}

// RecordPaymentInput carries a manually recorded payment.
type RecordPaymentInput struct {
	ClientID      string
	OrderID       string
	Date          time.Time
	Amount        float64
	Type          EntryType
	ProductName   string
	Status        EntryStatus
	PaymentMethod string
	PaymentDate   *time.Time
	DueDate       time.Time
	Notes         string
}

// RecordPayment persists a manual ledger entry and invalidates cached
// snapshots.
func (s *Service) RecordPayment(ctx context.Context, input RecordPaymentInput) (PaymentEntry, error) {
	if input.ClientID == "" {
		return PaymentEntry{}, fmt.Errorf("%w: client id is required", httpx.ErrValidation)
	}
	if input.Amount <= 0 {
		return PaymentEntry{}, fmt.Errorf("%w: amount must be positive", httpx.ErrValidation)
	}
	if !input.Status.Valid() {
		return PaymentEntry{}, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, input.Status)
	}
	if input.Type != EntrySetup && input.Type != EntryRecurring {
		return PaymentEntry{}, fmt.Errorf("%w: unknown entry type %q", httpx.ErrValidation, input.Type)
	}

	entry := PaymentEntry{
		ClientID:      input.ClientID,
		OrderID:       input.OrderID,
		Date:          input.Date,
		Amount:        input.Amount,
		Type:          input.Type,
		ProductName:   input.ProductName,
		Status:        input.Status,
		PaymentMethod: input.PaymentMethod,
		PaymentDate:   input.PaymentDate,
		DueDate:       input.DueDate,
		Notes:         input.Notes,
	}
	if entry.Date.IsZero() {
		entry.Date = s.now()
	}
	if entry.DueDate.IsZero() {
		entry.DueDate = entry.Date
	}

	saved, err := s.repo.Save(ctx, entry)
	if err != nil {
		return PaymentEntry{}, err
	}
	if err := s.cache.Bump(ctx); err != nil {
		return PaymentEntry{}, fmt.Errorf("invalidate cache: %w", err)
	}
	return saved, nil
}

// MarkOverduePayments reclassifies recorded pending payments past their due
// date. Generated entries are untouched; they stay pending until the upstream
// order terms change.
func (s *Service) MarkOverduePayments(ctx context.Context) (int, error) {
	updated, err := s.repo.MarkOverdue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		if err := s.cache.Bump(ctx); err != nil {
			return updated, fmt.Errorf("invalidate cache: %w", err)
		}
	}
	return updated, nil
}

// AttachInvoice links an issued nota fiscal to a recorded payment.
func (s *Service) AttachInvoice(ctx context.Context, paymentID, invoiceNumber string) error {
	if invoiceNumber == "" {
		return fmt.Errorf("%w: invoice number is required", httpx.ErrValidation)
	}
	if err := s.repo.SetInvoiceNumber(ctx, paymentID, invoiceNumber); err != nil {
		return err
	}
	return s.cache.Bump(ctx)
}

// GetRecordedPayment fetches one recorded payment by id.
func (s *Service) GetRecordedPayment(ctx context.Context, id string) (PaymentEntry, error) {
	return s.repo.Get(ctx, id)
}
