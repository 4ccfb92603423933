package support

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ita-digital/backoffice/internal/platform/httpx"
	"github.com/ita-digital/backoffice/internal/shared"
)

// Handler exposes support endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds the support HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes attaches support routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/tickets", h.listTickets)
	r.Post("/tickets", h.openTicket)
	r.Get("/tickets/{id}", h.getTicket)
	r.Post("/tickets/{id}/status", h.updateStatus)
	r.Get("/tickets/{id}/messages", h.thread)
	r.Post("/tickets/{id}/messages", h.reply)
}

type openTicketRequest struct {
	ClientID    string `json:"client_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

type ticketStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_progress closed"`
}

type replyRequest struct {
	Body string `json:"body" validate:"required"`
}

func (h *Handler) listTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.service.ListTickets(r.Context(), r.URL.Query().Get("client_id"))
	if err != nil {
		h.logger.Error("list tickets", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tickets)
}

func (h *Handler) getTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.service.GetTicket(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ticket)
}

func (h *Handler) openTicket(w http.ResponseWriter, r *http.Request) {
	var req openTicketRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	ticket, err := h.service.OpenTicket(r.Context(), Ticket{
		ClientID:    req.ClientID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    TicketPriority(req.Priority),
	})
	if err != nil {
		h.logger.Error("open ticket", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ticket)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req ticketStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), TicketStatus(req.Status)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) thread(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.Thread(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if messages == nil {
		messages = []Message{}
	}
	httpx.JSON(w, http.StatusOK, messages)
}

func (h *Handler) reply(w http.ResponseWriter, r *http.Request) {
	session := shared.SessionFromContext(r.Context())
	if session.User() == "" {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var req replyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	message, err := h.service.Reply(r.Context(), Message{
		TicketID:  chi.URLParam(r, "id"),
		AuthorID:  session.User(),
		FromStaff: session.Role() == "admin",
		Body:      req.Body,
	})
	if err != nil {
		h.logger.Error("ticket reply", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, message)
}
