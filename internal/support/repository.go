package support

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

// Repository defines data access for tickets and messages.
type Repository interface {
	ListTickets(ctx context.Context, clientID string) ([]Ticket, error)
	GetTicket(ctx context.Context, id string) (Ticket, error)
	CreateTicket(ctx context.Context, ticket Ticket) (Ticket, error)
	UpdateTicketStatus(ctx context.Context, id string, status TicketStatus) error

	ListMessages(ctx context.Context, ticketID string) ([]Message, error)
	CreateMessage(ctx context.Context, message Message) (Message, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the Postgres-backed ticket store.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const ticketColumns = `id, client_id, title, description, status, priority, created_at, updated_at`

func (r *repository) ListTickets(ctx context.Context, clientID string) ([]Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets ORDER BY created_at DESC`
	args := []any{}
	if clientID != "" {
		query = `SELECT ` + ticketColumns + ` FROM support_tickets WHERE client_id = $1 ORDER BY created_at DESC`
		args = append(args, clientID)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.ClientID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) GetTicket(ctx context.Context, id string) (Ticket, error) {
	var t Ticket
	err := r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM support_tickets WHERE id = $1`, id).
		Scan(&t.ID, &t.ClientID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Ticket{}, httpx.ErrNotFound
	}
	return t, err
}

func (r *repository) CreateTicket(ctx context.Context, ticket Ticket) (Ticket, error) {
	now := time.Now()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	_, err := r.db.Exec(ctx,
		`INSERT INTO support_tickets (`+ticketColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ticket.ID, ticket.ClientID, ticket.Title, ticket.Description, ticket.Status,
		ticket.Priority, ticket.CreatedAt, ticket.UpdatedAt)
	if err != nil {
		return Ticket{}, err
	}
	return ticket, nil
}

func (r *repository) UpdateTicketStatus(ctx context.Context, id string, status TicketStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE support_tickets SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) ListMessages(ctx context.Context, ticketID string) ([]Message, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, ticket_id, author_id, from_staff, body, created_at
		 FROM support_messages WHERE ticket_id = $1 ORDER BY created_at`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.TicketID, &m.AuthorID, &m.FromStaff, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repository) CreateMessage(ctx context.Context, message Message) (Message, error) {
	message.ID = uuid.NewString()
	message.CreatedAt = time.Now()
	_, err := r.db.Exec(ctx,
		`INSERT INTO support_messages (id, ticket_id, author_id, from_staff, body, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		message.ID, message.TicketID, message.AuthorID, message.FromStaff, message.Body, message.CreatedAt)
	if err != nil {
		return Message{}, err
	}
	return message, nil
}
