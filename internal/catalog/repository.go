package catalog

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

// Repository defines data access for groups and products.
type Repository interface {
	ListGroups(ctx context.Context) ([]ServiceGroup, error)
	GetGroup(ctx context.Context, id string) (ServiceGroup, error)
	CreateGroup(ctx context.Context, group ServiceGroup) (ServiceGroup, error)
	UpdateGroup(ctx context.Context, id string, group ServiceGroup) error
	DeleteGroup(ctx context.Context, id string) error
	CountProductsInGroup(ctx context.Context, groupID string) (int, error)

	ListProducts(ctx context.Context, filter ProductFilter) ([]ServiceProduct, error)
	GetProduct(ctx context.Context, id string) (ServiceProduct, error)
	CreateProduct(ctx context.Context, product ServiceProduct) (ServiceProduct, error)
	UpdateProduct(ctx context.Context, id string, product ServiceProduct) error
	DeleteProduct(ctx context.Context, id string) error
	CountOrdersForProduct(ctx context.Context, productID string) (int, error)
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	GroupID  string
	IsActive *bool
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the Postgres-backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const groupColumns = `id, name, description, is_active, created_at, updated_at`

func (r *repository) ListGroups(ctx context.Context) ([]ServiceGroup, error) {
	rows, err := r.db.Query(ctx, `SELECT `+groupColumns+` FROM service_groups ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []ServiceGroup
	for rows.Next() {
		var g ServiceGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.IsActive, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *repository) GetGroup(ctx context.Context, id string) (ServiceGroup, error) {
	var g ServiceGroup
	err := r.db.QueryRow(ctx, `SELECT `+groupColumns+` FROM service_groups WHERE id = $1`, id).
		Scan(&g.ID, &g.Name, &g.Description, &g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ServiceGroup{}, httpx.ErrNotFound
	}
	return g, err
}

func (r *repository) CreateGroup(ctx context.Context, group ServiceGroup) (ServiceGroup, error) {
	now := time.Now()
	group.ID = uuid.NewString()
	group.CreatedAt = now
	group.UpdatedAt = now
	_, err := r.db.Exec(ctx,
		`INSERT INTO service_groups (id, name, description, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		group.ID, group.Name, group.Description, group.IsActive, group.CreatedAt, group.UpdatedAt)
	if err != nil {
		return ServiceGroup{}, err
	}
	return group, nil
}

func (r *repository) UpdateGroup(ctx context.Context, id string, group ServiceGroup) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE service_groups SET name = $1, description = $2, is_active = $3, updated_at = $4 WHERE id = $5`,
		group.Name, group.Description, group.IsActive, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteGroup(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM service_groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) CountProductsInGroup(ctx context.Context, groupID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM service_products WHERE group_id = $1`, groupID).Scan(&count)
	return count, err
}

const productColumns = `id, group_id, name, description, price, setup_fee, billing_cycle, is_active, features, stock_control, stock_quantity, auto_setup, created_at, updated_at`

func (r *repository) ListProducts(ctx context.Context, filter ProductFilter) ([]ServiceProduct, error) {
	query := `SELECT ` + productColumns + ` FROM service_products WHERE 1=1`
	args := []any{}
	if filter.GroupID != "" {
		args = append(args, filter.GroupID)
		query += ` AND group_id = $1`
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += ` AND is_active = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []ServiceProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) GetProduct(ctx context.Context, id string) (ServiceProduct, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM service_products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ServiceProduct{}, httpx.ErrNotFound
	}
	return p, err
}

func (r *repository) CreateProduct(ctx context.Context, product ServiceProduct) (ServiceProduct, error) {
	now := time.Now()
	product.ID = uuid.NewString()
	product.CreatedAt = now
	product.UpdatedAt = now
	_, err := r.db.Exec(ctx,
		`INSERT INTO service_products (`+productColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		product.ID, product.GroupID, product.Name, product.Description, product.Price, product.SetupFee,
		product.BillingCycle, product.IsActive, product.Features, product.StockControl, product.StockQuantity,
		product.AutoSetup, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return ServiceProduct{}, err
	}
	return product, nil
}

func (r *repository) UpdateProduct(ctx context.Context, id string, product ServiceProduct) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE service_products SET group_id = $1, name = $2, description = $3, price = $4, setup_fee = $5,
			billing_cycle = $6, is_active = $7, features = $8, stock_control = $9, stock_quantity = $10,
			auto_setup = $11, updated_at = $12 WHERE id = $13`,
		product.GroupID, product.Name, product.Description, product.Price, product.SetupFee,
		product.BillingCycle, product.IsActive, product.Features, product.StockControl, product.StockQuantity,
		product.AutoSetup, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteProduct(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM service_products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) CountOrdersForProduct(ctx context.Context, productID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM service_orders WHERE product_id = $1`, productID).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (ServiceProduct, error) {
	var p ServiceProduct
	err := row.Scan(&p.ID, &p.GroupID, &p.Name, &p.Description, &p.Price, &p.SetupFee, &p.BillingCycle,
		&p.IsActive, &p.Features, &p.StockControl, &p.StockQuantity, &p.AutoSetup, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
