package billing

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

// InvoiceDispatch carries what the background worker needs to emit an NFS-e
// for a recorded payment.
type InvoiceDispatch struct {
	PaymentID     string
	CompanyID     string
	CustomerName  string
	CustomerEmail string
	CustomerDoc   string
	Description   string
	Amount        float64
}

// Dispatcher enqueues background work triggered from the billing surface.
type Dispatcher interface {
	DispatchInvoiceIssue(ctx context.Context, dispatch InvoiceDispatch) error
	DispatchOverdueScan(ctx context.Context) error
}

// Handler exposes the billing endpoints.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	dispatcher Dispatcher
	validate   *validator.Validate
}

// NewHandler builds the billing HTTP handler. dispatcher may be nil; the
// asynchronous endpoints then respond 503.
func NewHandler(logger *slog.Logger, service *Service, dispatcher Dispatcher) *Handler {
	return &Handler{logger: logger, service: service, dispatcher: dispatcher, validate: validator.New()}
}

// MountRoutes attaches billing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/clients/{clientID}/history", h.history)
	r.Get("/clients/{clientID}/financial", h.financial)
	r.Post("/payments", h.recordPayment)
	r.Post("/payments/{id}/issue-invoice", h.issueInvoice)
	r.Post("/overdue-scan", h.triggerOverdueScan)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	ledger, err := h.service.PaymentHistory(r.Context(), clientID)
	if err != nil {
		h.logger.Error("payment history", slog.String("client_id", clientID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if ledger == nil {
		ledger = []PaymentEntry{}
	}
	httpx.JSON(w, http.StatusOK, ledger)
}

func (h *Handler) financial(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	fin, err := h.service.Financial(r.Context(), clientID)
	if err != nil {
		h.logger.Error("financial snapshot", slog.String("client_id", clientID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, fin)
}

type recordPaymentRequest struct {
	ClientID      string  `json:"client_id" validate:"required"`
	OrderID       string  `json:"order_id"`
	Date          string  `json:"date"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Type          string  `json:"type" validate:"required,oneof=setup recurring"`
	ProductName   string  `json:"product_name"`
	Status        string  `json:"status" validate:"required,oneof=paid pending overdue"`
	PaymentMethod string  `json:"payment_method"`
	PaymentDate   string  `json:"payment_date"`
	DueDate       string  `json:"due_date"`
	Notes         string  `json:"notes"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	input := RecordPaymentInput{
		ClientID:      req.ClientID,
		OrderID:       req.OrderID,
		Amount:        req.Amount,
		Type:          EntryType(req.Type),
		ProductName:   req.ProductName,
		Status:        EntryStatus(req.Status),
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}
	var badDate string
	parse := func(field, value string) time.Time {
		if value == "" || badDate != "" {
			return time.Time{}
		}
		t, err := time.Parse("2006-01-02", value)
		if err != nil {
			badDate = field
		}
		return t
	}
	input.Date = parse("date", req.Date)
	input.DueDate = parse("due_date", req.DueDate)
	if paidAt := parse("payment_date", req.PaymentDate); !paidAt.IsZero() {
		input.PaymentDate = &paidAt
	}
	if badDate != "" {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", badDate+" must be YYYY-MM-DD")
		return
	}

	entry, err := h.service.RecordPayment(r.Context(), input)
	if err != nil {
		h.logger.Error("record payment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

type issueInvoiceRequest struct {
	CompanyID     string `json:"company_id" validate:"required"`
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email"`
	CustomerDoc   string `json:"customer_document" validate:"required"`
}

// issueInvoice queues NFS-e emission for a recorded payment. The worker calls
// the gateway and writes the issued number back onto the payment.
func (h *Handler) issueInvoice(w http.ResponseWriter, r *http.Request) {
	if h.dispatcher == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "background dispatch is not configured")
		return
	}
	var req issueInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	payment, err := h.service.GetRecordedPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	description := payment.ProductName
	if description == "" {
		description = "Serviços prestados"
	}
	err = h.dispatcher.DispatchInvoiceIssue(r.Context(), InvoiceDispatch{
		PaymentID:     payment.ID,
		CompanyID:     req.CompanyID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerDoc:   req.CustomerDoc,
		Description:   description,
		Amount:        payment.Amount,
	})
	if err != nil {
		h.logger.Error("dispatch invoice issue", slog.String("payment_id", payment.ID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"payment_id": payment.ID, "status": "queued"})
}

func (h *Handler) triggerOverdueScan(w http.ResponseWriter, r *http.Request) {
	if h.dispatcher == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "background dispatch is not configured")
		return
	}
	if err := h.dispatcher.DispatchOverdueScan(r.Context()); err != nil {
		h.logger.Error("dispatch overdue scan", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
