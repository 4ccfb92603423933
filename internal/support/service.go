package support

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ita-digital/backoffice/internal/clients"
	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

// Notifier delivers ticket notifications, usually by queueing an email.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string) error
}

// ClientReader resolves the ticket owner for notifications.
type ClientReader interface {
	Get(ctx context.Context, id string) (clients.Client, error)
}

// Service handles ticket business rules.
type Service struct {
	repo     Repository
	clients  ClientReader
	notifier Notifier
	logger   *slog.Logger
}

// NewService builds the support service. clientReader and notifier may be nil;
// replies then skip the notification.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// WithNotifications enables reply notifications to the ticket owner.
func (s *Service) WithNotifications(clientReader ClientReader, notifier Notifier, logger *slog.Logger) *Service {
	s.clients = clientReader
	s.notifier = notifier
	s.logger = logger
	return s
}

// OpenTicket creates a ticket in the open state. Priority defaults to medium,
// mirroring the support form.
func (s *Service) OpenTicket(ctx context.Context, ticket Ticket) (Ticket, error) {
	if ticket.ClientID == "" {
		return Ticket{}, fmt.Errorf("%w: client id is required", httpx.ErrValidation)
	}
	if ticket.Title == "" {
		return Ticket{}, fmt.Errorf("%w: title is required", httpx.ErrValidation)
	}
	if ticket.Priority == "" {
		ticket.Priority = PriorityMedium
	}
	if !ticket.Priority.Valid() {
		return Ticket{}, fmt.Errorf("%w: unknown priority %q", httpx.ErrValidation, ticket.Priority)
	}
	ticket.Status = TicketOpen
	return s.repo.CreateTicket(ctx, ticket)
}

func (s *Service) ListTickets(ctx context.Context, clientID string) ([]Ticket, error) {
	return s.repo.ListTickets(ctx, clientID)
}

func (s *Service) GetTicket(ctx context.Context, id string) (Ticket, error) {
	return s.repo.GetTicket(ctx, id)
}

// UpdateStatus moves a ticket through its handling states.
func (s *Service) UpdateStatus(ctx context.Context, id string, target TicketStatus) error {
	if !target.Valid() {
		return fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, target)
	}
	ticket, err := s.repo.GetTicket(ctx, id)
	if err != nil {
		return err
	}
	if !ticket.Status.CanTransition(target) {
		return fmt.Errorf("%w: ticket already %s", httpx.ErrConflict, ticket.Status)
	}
	return s.repo.UpdateTicketStatus(ctx, id, target)
}

// Reply appends a message to the thread. A client reply reopens a closed
// ticket; a staff reply moves an open ticket to in_progress.
func (s *Service) Reply(ctx context.Context, message Message) (Message, error) {
	if message.Body == "" {
		return Message{}, fmt.Errorf("%w: message body is required", httpx.ErrValidation)
	}
	ticket, err := s.repo.GetTicket(ctx, message.TicketID)
	if err != nil {
		return Message{}, err
	}

	saved, err := s.repo.CreateMessage(ctx, message)
	if err != nil {
		return Message{}, err
	}

	switch {
	case !message.FromStaff && ticket.Status == TicketClosed:
		err = s.repo.UpdateTicketStatus(ctx, ticket.ID, TicketOpen)
	case message.FromStaff && ticket.Status == TicketOpen:
		err = s.repo.UpdateTicketStatus(ctx, ticket.ID, TicketInProgress)
	}
	if err != nil {
		return Message{}, err
	}

	if message.FromStaff {
		s.notifyClient(ctx, ticket)
	}
	return saved, nil
}

// notifyClient queues a reply notification; delivery failures are logged, not
// surfaced, so a broken mail relay never blocks the support thread.
func (s *Service) notifyClient(ctx context.Context, ticket Ticket) {
	if s.notifier == nil || s.clients == nil {
		return
	}
	owner, err := s.clients.Get(ctx, ticket.ClientID)
	if err != nil || owner.Email == "" {
		return
	}
	subject := fmt.Sprintf("Sua solicitação %q recebeu uma resposta", ticket.Title)
	body := "Acesse a área do cliente para ver a resposta da nossa equipe."
	if err := s.notifier.Notify(ctx, owner.Email, subject, body); err != nil && s.logger != nil {
		s.logger.Warn("queue reply notification",
			slog.String("ticket_id", ticket.ID), slog.Any("error", err))
	}
}

// Thread returns the ticket's conversation in chronological order.
func (s *Service) Thread(ctx context.Context, ticketID string) ([]Message, error) {
	if _, err := s.repo.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, ticketID)
}
