package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/ita-digital/backoffice/internal/catalog"
	"github.com/ita-digital/backoffice/internal/clients"
	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

// ErrInvalidStatus indicates a disallowed lifecycle transition.
var ErrInvalidStatus = fmt.Errorf("%w: invalid status transition", httpx.ErrConflict)

// ProductReader resolves products when creating orders.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (catalog.ServiceProduct, error)
}

// ClientReader resolves clients when creating orders.
type ClientReader interface {
	Get(ctx context.Context, id string) (clients.Client, error)
}

// Service handles order business rules.
type Service struct {
	repo     Repository
	products ProductReader
	clients  ClientReader
	now      func() time.Time
}

// NewService builds a Service instance.
func NewService(repo Repository, products ProductReader, clientReader ClientReader) *Service {
	return &Service{repo: repo, products: products, clients: clientReader, now: time.Now}
}

// CreateOrderInput carries the admin "new order" form.
type CreateOrderInput struct {
	ProductID string
	ClientID  string
	// Price and SetupFee override the product defaults when non-nil,
	// locking custom terms into the order.
	Price    *float64
	SetupFee *float64
	Activate bool
	Notes    string
}

// Create verifies the product and client exist, captures the billing terms
// and schedules the first due date one cycle after creation.
func (s *Service) Create(ctx context.Context, input CreateOrderInput) (ServiceOrder, error) {
	product, err := s.products.GetProduct(ctx, input.ProductID)
	if err != nil {
		return ServiceOrder{}, fmt.Errorf("verify product: %w", err)
	}
	if _, err := s.clients.Get(ctx, input.ClientID); err != nil {
		return ServiceOrder{}, fmt.Errorf("verify client: %w", err)
	}

	price := product.Price
	if input.Price != nil {
		price = *input.Price
	}
	if price <= 0 {
		return ServiceOrder{}, fmt.Errorf("%w: price must be positive", httpx.ErrValidation)
	}
	setupFee := product.SetupFee
	if input.SetupFee != nil {
		setupFee = *input.SetupFee
	}
	if setupFee < 0 {
		return ServiceOrder{}, fmt.Errorf("%w: setup fee cannot be negative", httpx.ErrValidation)
	}

	status := StatusPending
	if input.Activate {
		status = StatusActive
	}

	now := s.now()
	order := ServiceOrder{
		ProductID:    input.ProductID,
		ClientID:     input.ClientID,
		Status:       status,
		Price:        price,
		SetupFee:     setupFee,
		BillingCycle: product.BillingCycle,
		NextDueDate:  product.BillingCycle.Next(now),
		Notes:        input.Notes,
	}
	return s.repo.Create(ctx, order)
}

func (s *Service) List(ctx context.Context) ([]ServiceOrder, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByClient(ctx context.Context, clientID string) ([]ServiceOrder, error) {
	return s.repo.ListByClient(ctx, clientID)
}

func (s *Service) Get(ctx context.Context, id string) (ServiceOrder, error) {
	return s.repo.Get(ctx, id)
}

// UpdateOrderInput carries editable billing terms.
type UpdateOrderInput struct {
	Price        *float64
	SetupFee     *float64
	BillingCycle *catalog.BillingCycle
	NextDueDate  *time.Time
	Notes        *string
}

func (s *Service) Update(ctx context.Context, id string, input UpdateOrderInput) (ServiceOrder, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return ServiceOrder{}, err
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			return ServiceOrder{}, fmt.Errorf("%w: price must be positive", httpx.ErrValidation)
		}
		existing.Price = *input.Price
	}
	if input.SetupFee != nil {
		if *input.SetupFee < 0 {
			return ServiceOrder{}, fmt.Errorf("%w: setup fee cannot be negative", httpx.ErrValidation)
		}
		existing.SetupFee = *input.SetupFee
	}
	if input.BillingCycle != nil {
		if !input.BillingCycle.Valid() {
			return ServiceOrder{}, fmt.Errorf("%w: unknown billing cycle %q", httpx.ErrValidation, *input.BillingCycle)
		}
		existing.BillingCycle = *input.BillingCycle
	}
	if input.NextDueDate != nil {
		existing.NextDueDate = *input.NextDueDate
	}
	if input.Notes != nil {
		existing.Notes = *input.Notes
	}
	if err := s.repo.Update(ctx, id, existing); err != nil {
		return ServiceOrder{}, err
	}
	return s.repo.Get(ctx, id)
}

// UpdateStatus applies a single-order lifecycle transition.
func (s *Service) UpdateStatus(ctx context.Context, id string, target OrderStatus) error {
	if !target.Valid() {
		return fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, target)
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !existing.Status.CanTransition(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, existing.Status, target)
	}
	return s.repo.UpdateStatus(ctx, id, target)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// SuspendClientServices suspends every active order of the client.
func (s *Service) SuspendClientServices(ctx context.Context, clientID string) (int, error) {
	return s.repo.UpdateStatusBulk(ctx, clientID, []OrderStatus{StatusActive}, StatusSuspended)
}

// ReactivateClientServices reactivates every suspended order of the client.
func (s *Service) ReactivateClientServices(ctx context.Context, clientID string) (int, error) {
	return s.repo.UpdateStatusBulk(ctx, clientID, []OrderStatus{StatusSuspended}, StatusActive)
}

// CancelClientServices cancels every non-cancelled order of the client.
// Cancellation is terminal.
func (s *Service) CancelClientServices(ctx context.Context, clientID string) (int, error) {
	return s.repo.UpdateStatusBulk(ctx, clientID,
		[]OrderStatus{StatusPending, StatusActive, StatusSuspended}, StatusCancelled)
}
