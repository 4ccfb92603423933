package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/ita-digital/backoffice/internal/auth"
	"github.com/ita-digital/backoffice/internal/billing"
	"github.com/ita-digital/backoffice/internal/blog"
	"github.com/ita-digital/backoffice/internal/catalog"
	"github.com/ita-digital/backoffice/internal/clients"
	"github.com/ita-digital/backoffice/internal/geo"
	"github.com/ita-digital/backoffice/internal/invoicing"
	"github.com/ita-digital/backoffice/internal/observability"
	"github.com/ita-digital/backoffice/internal/orders"
	"github.com/ita-digital/backoffice/internal/shared"
	"github.com/ita-digital/backoffice/internal/support"
	"github.com/ita-digital/backoffice/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager

	AuthHandler      *auth.Handler
	CatalogHandler   *catalog.Handler
	ClientsHandler   *clients.Handler
	OrdersHandler    *orders.Handler
	BillingHandler   *billing.Handler
	InvoicingHandler *invoicing.Handler
	GeoHandler       *geo.Handler
	BlogHandler      *blog.Handler
	SupportHandler   *support.Handler
	JobHandler       *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router for the back office API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		// Tighter limit on credential endpoints than the global one.
		r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		params.AuthHandler.MountRoutes(r)
	})

	// Public surface: published posts and IBGE reference data.
	if params.BlogHandler != nil {
		r.Route("/blog", params.BlogHandler.MountPublicRoutes)
	}
	if params.GeoHandler != nil {
		r.Route("/geo", params.GeoHandler.MountRoutes)
	}

	// Authenticated clients open and follow their own tickets.
	if params.SupportHandler != nil {
		r.Route("/support", func(r chi.Router) {
			r.Use(RequireUser)
			params.SupportHandler.MountRoutes(r)
		})
	}

	// Administrative surface.
	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin)
		if params.CatalogHandler != nil {
			r.Route("/catalog", params.CatalogHandler.MountRoutes)
		}
		if params.ClientsHandler != nil {
			r.Route("/clients", params.ClientsHandler.MountRoutes)
		}
		if params.OrdersHandler != nil {
			r.Route("/orders", params.OrdersHandler.MountRoutes)
		}
		if params.BillingHandler != nil {
			r.Route("/billing", params.BillingHandler.MountRoutes)
		}
		if params.InvoicingHandler != nil {
			r.Route("/invoicing", params.InvoicingHandler.MountRoutes)
		}
		if params.BlogHandler != nil {
			r.Route("/admin/blog", params.BlogHandler.MountAdminRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
