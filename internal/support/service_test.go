package support

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ita-digital/backoffice/internal/clients"
	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

type memoryTicketRepo struct {
	tickets  map[string]Ticket
	messages map[string]Message
	nextID   int
}

func newMemoryTicketRepo() *memoryTicketRepo {
	return &memoryTicketRepo{tickets: make(map[string]Ticket), messages: make(map[string]Message)}
}

func (r *memoryTicketRepo) ListTickets(ctx context.Context, clientID string) ([]Ticket, error) {
	var out []Ticket
	for _, t := range r.tickets {
		if clientID != "" && t.ClientID != clientID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *memoryTicketRepo) GetTicket(ctx context.Context, id string) (Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return Ticket{}, httpx.ErrNotFound
	}
	return t, nil
}

func (r *memoryTicketRepo) CreateTicket(ctx context.Context, ticket Ticket) (Ticket, error) {
	r.nextID++
	ticket.ID = fmt.Sprintf("ticket-%d", r.nextID)
	ticket.CreatedAt = time.Now()
	r.tickets[ticket.ID] = ticket
	return ticket, nil
}

func (r *memoryTicketRepo) UpdateTicketStatus(ctx context.Context, id string, status TicketStatus) error {
	t, ok := r.tickets[id]
	if !ok {
		return httpx.ErrNotFound
	}
	t.Status = status
	r.tickets[id] = t
	return nil
}

func (r *memoryTicketRepo) ListMessages(ctx context.Context, ticketID string) ([]Message, error) {
	var out []Message
	for _, m := range r.messages {
		if m.TicketID == ticketID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryTicketRepo) CreateMessage(ctx context.Context, message Message) (Message, error) {
	r.nextID++
	message.ID = fmt.Sprintf("msg-%d", r.nextID)
	r.messages[message.ID] = message
	return message, nil
}

func TestOpenTicketDefaultsPriority(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryTicketRepo())

	ticket, err := svc.OpenTicket(ctx, Ticket{ClientID: "client-1", Title: "Site fora do ar"})
	require.NoError(t, err)
	require.Equal(t, TicketOpen, ticket.Status)
	require.Equal(t, PriorityMedium, ticket.Priority)

	_, err = svc.OpenTicket(ctx, Ticket{ClientID: "client-1"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateStatusRejectsNoop(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryTicketRepo()
	svc := NewService(repo)

	ticket, err := svc.OpenTicket(ctx, Ticket{ClientID: "client-1", Title: "Dúvida"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.UpdateStatus(ctx, ticket.ID, TicketOpen), httpx.ErrConflict)
	require.NoError(t, svc.UpdateStatus(ctx, ticket.ID, TicketClosed))
	require.Equal(t, TicketClosed, repo.tickets[ticket.ID].Status)
}

func TestClientReplyReopensClosedTicket(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryTicketRepo()
	svc := NewService(repo)

	ticket, err := svc.OpenTicket(ctx, Ticket{ClientID: "client-1", Title: "Erro no painel"})
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(ctx, ticket.ID, TicketClosed))

	_, err = svc.Reply(ctx, Message{TicketID: ticket.ID, AuthorID: "user-1", Body: "Ainda acontece"})
	require.NoError(t, err)
	require.Equal(t, TicketOpen, repo.tickets[ticket.ID].Status)
}

func TestStaffReplyMovesOpenTicketToInProgress(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryTicketRepo()
	svc := NewService(repo)

	ticket, err := svc.OpenTicket(ctx, Ticket{ClientID: "client-1", Title: "Renovação"})
	require.NoError(t, err)

	_, err = svc.Reply(ctx, Message{TicketID: ticket.ID, AuthorID: "admin-1", FromStaff: true, Body: "Verificando"})
	require.NoError(t, err)
	require.Equal(t, TicketInProgress, repo.tickets[ticket.ID].Status)

	thread, err := svc.Thread(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
}

type recordingNotifier struct {
	to      []string
	subject []string
}

func (n *recordingNotifier) Notify(ctx context.Context, to, subject, body string) error {
	n.to = append(n.to, to)
	n.subject = append(n.subject, subject)
	return nil
}

type stubClientReader struct {
	email string
}

func (s stubClientReader) Get(ctx context.Context, id string) (clients.Client, error) {
	return clients.Client{ID: id, Email: s.email}, nil
}

func TestStaffReplyNotifiesTicketOwner(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryTicketRepo()
	notifier := &recordingNotifier{}
	svc := NewService(repo).WithNotifications(stubClientReader{email: "cliente@acme.com.br"}, notifier, nil)

	ticket, err := svc.OpenTicket(ctx, Ticket{ClientID: "client-1", Title: "Migração de hospedagem"})
	require.NoError(t, err)

	_, err = svc.Reply(ctx, Message{TicketID: ticket.ID, AuthorID: "user-1", Body: "Quando começa?"})
	require.NoError(t, err)
	require.Empty(t, notifier.to, "client replies must not notify")

	_, err = svc.Reply(ctx, Message{TicketID: ticket.ID, AuthorID: "admin-1", FromStaff: true, Body: "Hoje à noite"})
	require.NoError(t, err)
	require.Equal(t, []string{"cliente@acme.com.br"}, notifier.to)
	require.Contains(t, notifier.subject[0], "Migração de hospedagem")
}

func TestReplyToMissingTicket(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryTicketRepo())

	_, err := svc.Reply(ctx, Message{TicketID: "ghost", AuthorID: "user-1", Body: "Oi"})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
