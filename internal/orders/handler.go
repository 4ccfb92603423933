package orders

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ita-digital/backoffice/internal/catalog"
	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

// Handler exposes order endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds the orders HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes attaches order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/status", h.updateStatus)

	r.Post("/clients/{clientID}/suspend", h.suspendClient)
	r.Post("/clients/{clientID}/reactivate", h.reactivateClient)
	r.Post("/clients/{clientID}/cancel", h.cancelClient)
}

type createOrderRequest struct {
	ProductID string   `json:"product_id" validate:"required"`
	ClientID  string   `json:"client_id" validate:"required"`
	Price     *float64 `json:"price"`
	SetupFee  *float64 `json:"setup_fee"`
	Activate  bool     `json:"activate"`
	Notes     string   `json:"notes"`
}

type updateOrderRequest struct {
	Price        *float64 `json:"price"`
	SetupFee     *float64 `json:"setup_fee"`
	BillingCycle *string  `json:"billing_cycle"`
	NextDueDate  *string  `json:"next_due_date"`
	Notes        *string  `json:"notes"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending active suspended cancelled"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var (
		out []ServiceOrder
		err error
	)
	if clientID := r.URL.Query().Get("client_id"); clientID != "" {
		out, err = h.service.ListByClient(r.Context(), clientID)
	} else {
		out, err = h.service.List(r.Context())
	}
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	order, err := h.service.Create(r.Context(), CreateOrderInput{
		ProductID: req.ProductID,
		ClientID:  req.ClientID,
		Price:     req.Price,
		SetupFee:  req.SetupFee,
		Activate:  req.Activate,
		Notes:     req.Notes,
	})
	if err != nil {
		h.logger.Error("create order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	input := UpdateOrderInput{
		Price:    req.Price,
		SetupFee: req.SetupFee,
		Notes:    req.Notes,
	}
	if req.BillingCycle != nil {
		cycle := catalog.BillingCycle(*req.BillingCycle)
		input.BillingCycle = &cycle
	}
	if req.NextDueDate != nil {
		due, err := time.Parse("2006-01-02", *req.NextDueDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "next_due_date must be YYYY-MM-DD")
			return
		}
		input.NextDueDate = &due
	}
	order, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), OrderStatus(req.Status)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) suspendClient(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, h.service.SuspendClientServices)
}

func (h *Handler) reactivateClient(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, h.service.ReactivateClientServices)
}

func (h *Handler) cancelClient(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, h.service.CancelClientServices)
}

func (h *Handler) bulk(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (int, error)) {
	clientID := chi.URLParam(r, "clientID")
	updated, err := fn(r.Context(), clientID)
	if err != nil {
		h.logger.Error("bulk status update", slog.String("client_id", clientID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"updated": updated})
}
