package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

var (
	// ErrGroupHasProducts blocks deleting a group that still owns products.
	ErrGroupHasProducts = fmt.Errorf("%w: group still has products", httpx.ErrConflict)
	// ErrProductHasOrders blocks deleting a product referenced by orders.
	ErrProductHasOrders = fmt.Errorf("%w: product is referenced by orders", httpx.ErrConflict)
)

// Service handles catalog business rules.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListGroups(ctx context.Context) ([]ServiceGroup, error) {
	return s.repo.ListGroups(ctx)
}

func (s *Service) GetGroup(ctx context.Context, id string) (ServiceGroup, error) {
	if id == "" {
		return ServiceGroup{}, httpx.ErrNotFound
	}
	return s.repo.GetGroup(ctx, id)
}

func (s *Service) CreateGroup(ctx context.Context, group ServiceGroup) (ServiceGroup, error) {
	if strings.TrimSpace(group.Name) == "" {
		return ServiceGroup{}, fmt.Errorf("%w: group name is required", httpx.ErrValidation)
	}
	return s.repo.CreateGroup(ctx, group)
}

func (s *Service) UpdateGroup(ctx context.Context, id string, group ServiceGroup) error {
	if strings.TrimSpace(group.Name) == "" {
		return fmt.Errorf("%w: group name is required", httpx.ErrValidation)
	}
	return s.repo.UpdateGroup(ctx, id, group)
}

// DeleteGroup removes a group unless products still reference it.
func (s *Service) DeleteGroup(ctx context.Context, id string) error {
	count, err := s.repo.CountProductsInGroup(ctx, id)
	if err != nil {
		return fmt.Errorf("count group products: %w", err)
	}
	if count > 0 {
		return ErrGroupHasProducts
	}
	return s.repo.DeleteGroup(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, filter ProductFilter) ([]ServiceProduct, error) {
	return s.repo.ListProducts(ctx, filter)
}

func (s *Service) GetProduct(ctx context.Context, id string) (ServiceProduct, error) {
	if id == "" {
		return ServiceProduct{}, httpx.ErrNotFound
	}
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, product ServiceProduct) (ServiceProduct, error) {
	if err := s.validateProduct(ctx, product); err != nil {
		return ServiceProduct{}, err
	}
	return s.repo.CreateProduct(ctx, product)
}

func (s *Service) UpdateProduct(ctx context.Context, id string, product ServiceProduct) error {
	if err := s.validateProduct(ctx, product); err != nil {
		return err
	}
	return s.repo.UpdateProduct(ctx, id, product)
}

// DeleteProduct removes a product unless orders still reference it. Orders
// keep their own copy of the billing terms, so deleting a referenced product
// would orphan their ledger history.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	count, err := s.repo.CountOrdersForProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("count product orders: %w", err)
	}
	if count > 0 {
		return ErrProductHasOrders
	}
	return s.repo.DeleteProduct(ctx, id)
}

func (s *Service) validateProduct(ctx context.Context, p ServiceProduct) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", httpx.ErrValidation)
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", httpx.ErrValidation)
	}
	if p.SetupFee < 0 {
		return fmt.Errorf("%w: setup fee cannot be negative", httpx.ErrValidation)
	}
	if !p.BillingCycle.Valid() {
		return fmt.Errorf("%w: unknown billing cycle %q", httpx.ErrValidation, p.BillingCycle)
	}
	if p.GroupID != "" {
		if _, err := s.repo.GetGroup(ctx, p.GroupID); err != nil {
			if errors.Is(err, httpx.ErrNotFound) {
				return fmt.Errorf("%w: group %s does not exist", httpx.ErrValidation, p.GroupID)
			}
			return err
		}
	}
	return nil
}
