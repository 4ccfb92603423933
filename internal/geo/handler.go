package geo

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

// Handler exposes locality lookup endpoints for the invoicing forms.
type Handler struct {
	logger *slog.Logger
	client *Client
}

// NewHandler builds the geo HTTP handler.
func NewHandler(logger *slog.Logger, client *Client) *Handler {
	return &Handler{logger: logger, client: client}
}

// MountRoutes attaches geo routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/states", h.states)
	r.Get("/states/{stateID}/municipalities", h.municipalities)
}

func (h *Handler) states(w http.ResponseWriter, r *http.Request) {
	states, err := h.client.States(r.Context())
	if err != nil {
		h.logger.Error("list states", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, states)
}

func (h *Handler) municipalities(w http.ResponseWriter, r *http.Request) {
	stateID, err := strconv.Atoi(chi.URLParam(r, "stateID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Parameter", "stateID must be numeric")
		return
	}
	municipalities, err := h.client.Municipalities(r.Context(), stateID)
	if err != nil {
		h.logger.Error("list municipalities", slog.Int("state_id", stateID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, municipalities)
}
