package invoicing

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ita-digital/backoffice/internal/observability"
	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

// Handler exposes invoicing endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	metrics *observability.Metrics
}

// NewHandler builds the invoicing HTTP handler. metrics may be nil.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, metrics: metrics}
}

// MountRoutes attaches invoicing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/companies", h.listCompanies)
	r.Post("/companies", h.registerCompany)
	r.Get("/companies/{id}", h.getCompany)
	r.Put("/companies/{id}", h.updateCompany)
	r.Delete("/companies/{id}", h.deleteCompany)

	r.Post("/companies/{id}/certificate", h.uploadCertificate)

	r.Post("/companies/{id}/invoices", h.issueInvoice)
	r.Get("/companies/{id}/invoices/{invoiceID}", h.getInvoice)
	r.Post("/companies/{id}/invoices/{invoiceID}/cancel", h.cancelInvoice)

	r.Get("/municipal-services", h.municipalServices)
}

func (h *Handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.service.ListCompanies(r.Context())
	if err != nil {
		h.logger.Error("list companies", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, companies)
}

func (h *Handler) getCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.service.GetCompany(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

func (h *Handler) registerCompany(w http.ResponseWriter, r *http.Request) {
	var company Company
	if err := httpx.DecodeJSON(r, &company); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	created, err := h.service.RegisterCompany(r.Context(), company)
	if err != nil {
		h.logger.Error("register company", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateCompany(w http.ResponseWriter, r *http.Request) {
	var company Company
	if err := httpx.DecodeJSON(r, &company); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	updated, err := h.service.UpdateCompany(r.Context(), chi.URLParam(r, "id"), company)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCompany(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) uploadCertificate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "expected multipart form data")
		return
	}
	file, _, err := r.FormFile("certificate")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "certificate file is required")
		return
	}
	defer func() {
		_ = file.Close()
	}()
	data, err := io.ReadAll(file)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "could not read certificate file")
		return
	}
	if err := h.service.AttachCertificate(r.Context(), chi.URLParam(r, "id"), data, r.FormValue("password")); err != nil {
		h.logger.Error("upload certificate", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	issued, err := h.service.GetInvoice(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "invoiceID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, issued)
}

func (h *Handler) issueInvoice(w http.ResponseWriter, r *http.Request) {
	var req InvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	issued, err := h.service.IssueServiceInvoice(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.logger.Error("issue invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.metrics.InvoiceIssued()
	httpx.JSON(w, http.StatusCreated, issued)
}

func (h *Handler) cancelInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.service.CancelInvoice(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "invoiceID"), req.Reason); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) municipalServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.MunicipalServices(r.Context(), r.URL.Query().Get("state"), r.URL.Query().Get("city"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, services)
}
