package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

// Repository persists manually recorded payments. Generated ledger entries are
// never stored; only payments an administrator records (or that an automated
// reconciliation produces) live here.
type Repository interface {
	Save(ctx context.Context, entry PaymentEntry) (PaymentEntry, error)
	Get(ctx context.Context, id string) (PaymentEntry, error)
	ListByClient(ctx context.Context, clientID string) ([]PaymentEntry, error)
	// MarkOverdue flips recorded pending payments whose due date passed before
	// asOf to overdue, returning how many rows changed.
	MarkOverdue(ctx context.Context, asOf time.Time) (int, error)
	SetInvoiceNumber(ctx context.Context, id, invoiceNumber string) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the Postgres-backed payment record store.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const paymentColumns = `id, client_id, order_id, date, amount, type, product_name, status, payment_method, payment_date, due_date, invoice_number, notes`

func (r *repository) Save(ctx context.Context, entry PaymentEntry) (PaymentEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO payment_records (`+paymentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (id) DO UPDATE SET
		   status = EXCLUDED.status, payment_method = EXCLUDED.payment_method,
		   payment_date = EXCLUDED.payment_date, invoice_number = EXCLUDED.invoice_number,
		   notes = EXCLUDED.notes`,
		entry.ID, entry.ClientID, entry.OrderID, entry.Date, entry.Amount, entry.Type,
		entry.ProductName, entry.Status, entry.PaymentMethod, entry.PaymentDate,
		entry.DueDate, entry.InvoiceNumber, entry.Notes)
	if err != nil {
		return PaymentEntry{}, err
	}
	return entry, nil
}

func (r *repository) Get(ctx context.Context, id string) (PaymentEntry, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payment_records WHERE id = $1`, id)
	entry, err := scanPayment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return PaymentEntry{}, httpx.ErrNotFound
	}
	return entry, err
}

func (r *repository) ListByClient(ctx context.Context, clientID string) ([]PaymentEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+paymentColumns+` FROM payment_records WHERE client_id = $1 ORDER BY date DESC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PaymentEntry
	for rows.Next() {
		entry, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (r *repository) MarkOverdue(ctx context.Context, asOf time.Time) (int, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE payment_records SET status = $1 WHERE status = $2 AND due_date < $3`,
		StatusOverdue, StatusPending, asOf)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *repository) SetInvoiceNumber(ctx context.Context, id, invoiceNumber string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE payment_records SET invoice_number = $1 WHERE id = $2`, invoiceNumber, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanPayment(row pgx.Row) (PaymentEntry, error) {
	var e PaymentEntry
	err := row.Scan(&e.ID, &e.ClientID, &e.OrderID, &e.Date, &e.Amount, &e.Type,
		&e.ProductName, &e.Status, &e.PaymentMethod, &e.PaymentDate, &e.DueDate,
		&e.InvoiceNumber, &e.Notes)
	return e, err
}
