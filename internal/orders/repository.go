package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

// Repository defines data access for service orders.
type Repository interface {
	List(ctx context.Context) ([]ServiceOrder, error)
	ListByClient(ctx context.Context, clientID string) ([]ServiceOrder, error)
	Get(ctx context.Context, id string) (ServiceOrder, error)
	Create(ctx context.Context, order ServiceOrder) (ServiceOrder, error)
	Update(ctx context.Context, id string, order ServiceOrder) error
	UpdateStatus(ctx context.Context, id string, status OrderStatus) error
	// UpdateStatusBulk moves every order of the client currently in one of the
	// from statuses to the target status in a single atomic statement.
	UpdateStatusBulk(ctx context.Context, clientID string, from []OrderStatus, to OrderStatus) (int, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the Postgres-backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const orderColumns = `id, product_id, client_id, status, price, setup_fee, billing_cycle, next_due_date, notes, created_at, updated_at`

func (r *repository) List(ctx context.Context) ([]ServiceOrder, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM service_orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *repository) ListByClient(ctx context.Context, clientID string) ([]ServiceOrder, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM service_orders WHERE client_id = $1 ORDER BY created_at DESC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *repository) Get(ctx context.Context, id string) (ServiceOrder, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM service_orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ServiceOrder{}, httpx.ErrNotFound
	}
	return o, err
}

func (r *repository) Create(ctx context.Context, order ServiceOrder) (ServiceOrder, error) {
	now := time.Now()
	order.ID = uuid.NewString()
	order.CreatedAt = now
	order.UpdatedAt = now
	_, err := r.db.Exec(ctx,
		`INSERT INTO service_orders (`+orderColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		order.ID, order.ProductID, order.ClientID, order.Status, order.Price, order.SetupFee,
		order.BillingCycle, order.NextDueDate, order.Notes, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return ServiceOrder{}, err
	}
	return order, nil
}

func (r *repository) Update(ctx context.Context, id string, order ServiceOrder) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE service_orders SET price = $1, setup_fee = $2, billing_cycle = $3, next_due_date = $4, notes = $5, updated_at = $6 WHERE id = $7`,
		order.Price, order.SetupFee, order.BillingCycle, order.NextDueDate, order.Notes, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status OrderStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE service_orders SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatusBulk(ctx context.Context, clientID string, from []OrderStatus, to OrderStatus) (int, error) {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE service_orders SET status = $1, updated_at = $2 WHERE client_id = $3 AND status = ANY($4)`,
		to, time.Now(), clientID, statuses)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM service_orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func collectOrders(rows pgx.Rows) ([]ServiceOrder, error) {
	var out []ServiceOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (ServiceOrder, error) {
	var o ServiceOrder
	err := row.Scan(&o.ID, &o.ProductID, &o.ClientID, &o.Status, &o.Price, &o.SetupFee,
		&o.BillingCycle, &o.NextDueDate, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}
