package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

type memoryCatalogRepo struct {
	groups        map[string]ServiceGroup
	products      map[string]ServiceProduct
	ordersPerProd map[string]int
	nextID        int
}

func newMemoryCatalogRepo() *memoryCatalogRepo {
	return &memoryCatalogRepo{
		groups:        make(map[string]ServiceGroup),
		products:      make(map[string]ServiceProduct),
		ordersPerProd: make(map[string]int),
	}
}

func (r *memoryCatalogRepo) id() string {
	r.nextID++
	return "id-" + string(rune('a'+r.nextID))
}

func (r *memoryCatalogRepo) ListGroups(ctx context.Context) ([]ServiceGroup, error) {
	var out []ServiceGroup
	for _, g := range r.groups {
		out = append(out, g)
	}
	return out, nil
}

func (r *memoryCatalogRepo) GetGroup(ctx context.Context, id string) (ServiceGroup, error) {
	g, ok := r.groups[id]
	if !ok {
		return ServiceGroup{}, httpx.ErrNotFound
	}
	return g, nil
}

func (r *memoryCatalogRepo) CreateGroup(ctx context.Context, group ServiceGroup) (ServiceGroup, error) {
	group.ID = r.id()
	r.groups[group.ID] = group
	return group, nil
}

func (r *memoryCatalogRepo) UpdateGroup(ctx context.Context, id string, group ServiceGroup) error {
	if _, ok := r.groups[id]; !ok {
		return httpx.ErrNotFound
	}
	group.ID = id
	r.groups[id] = group
	return nil
}

func (r *memoryCatalogRepo) DeleteGroup(ctx context.Context, id string) error {
	if _, ok := r.groups[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.groups, id)
	return nil
}

func (r *memoryCatalogRepo) CountProductsInGroup(ctx context.Context, groupID string) (int, error) {
	count := 0
	for _, p := range r.products {
		if p.GroupID == groupID {
			count++
		}
	}
	return count, nil
}

func (r *memoryCatalogRepo) ListProducts(ctx context.Context, filter ProductFilter) ([]ServiceProduct, error) {
	var out []ServiceProduct
	for _, p := range r.products {
		if filter.GroupID != "" && p.GroupID != filter.GroupID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryCatalogRepo) GetProduct(ctx context.Context, id string) (ServiceProduct, error) {
	p, ok := r.products[id]
	if !ok {
		return ServiceProduct{}, httpx.ErrNotFound
	}
	return p, nil
}

func (r *memoryCatalogRepo) CreateProduct(ctx context.Context, product ServiceProduct) (ServiceProduct, error) {
	product.ID = r.id()
	r.products[product.ID] = product
	return product, nil
}

func (r *memoryCatalogRepo) UpdateProduct(ctx context.Context, id string, product ServiceProduct) error {
	if _, ok := r.products[id]; !ok {
		return httpx.ErrNotFound
	}
	product.ID = id
	r.products[id] = product
	return nil
}

func (r *memoryCatalogRepo) DeleteProduct(ctx context.Context, id string) error {
	if _, ok := r.products[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *memoryCatalogRepo) CountOrdersForProduct(ctx context.Context, productID string) (int, error) {
	return r.ordersPerProd[productID], nil
}

func TestBillingCycleNext(t *testing.T) {
	jan15 := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	require.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), CycleMonthly.Next(jan15))
	require.Equal(t, time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC), CycleQuarterly.Next(jan15))
	require.Equal(t, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), CycleSemiannual.Next(jan15))
	require.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), CycleAnnual.Next(jan15))
	require.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), CycleBiennial.Next(jan15))
}

func TestBillingCycleNextClampsEndOfMonth(t *testing.T) {
	jan31 := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), CycleMonthly.Next(jan31))

	jan31np := time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), CycleMonthly.Next(jan31np))

	aug31 := time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC), CycleQuarterly.Next(aug31))
}

func TestBillingCycleAlwaysAdvances(t *testing.T) {
	for _, cycle := range []BillingCycle{CycleMonthly, CycleQuarterly, CycleSemiannual, CycleAnnual, CycleBiennial, BillingCycle("bogus")} {
		from := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
		next := cycle.Next(from)
		require.True(t, next.After(from), "cycle %s must advance", cycle)
	}
}

func TestDeleteGroupBlockedWhileProductsExist(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCatalogRepo()
	svc := NewService(repo)

	group, err := svc.CreateGroup(ctx, ServiceGroup{Name: "Hosting", IsActive: true})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, ServiceProduct{
		GroupID:      group.ID,
		Name:         "Shared Hosting",
		Price:        49.9,
		BillingCycle: CycleMonthly,
	})
	require.NoError(t, err)

	err = svc.DeleteGroup(ctx, group.ID)
	require.ErrorIs(t, err, ErrGroupHasProducts)
}

func TestDeleteProductBlockedWhileOrdersExist(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCatalogRepo()
	svc := NewService(repo)

	product, err := svc.CreateProduct(ctx, ServiceProduct{
		Name:         "SEO Package",
		Price:        300,
		BillingCycle: CycleQuarterly,
	})
	require.NoError(t, err)

	repo.ordersPerProd[product.ID] = 2

	err = svc.DeleteProduct(ctx, product.ID)
	require.ErrorIs(t, err, ErrProductHasOrders)

	delete(repo.ordersPerProd, product.ID)
	require.NoError(t, svc.DeleteProduct(ctx, product.ID))
}

func TestCreateProductRejectsUnknownCycle(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryCatalogRepo())

	_, err := svc.CreateProduct(ctx, ServiceProduct{Name: "X", Price: 10, BillingCycle: "weekly"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}
