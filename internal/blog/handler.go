package blog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ita-digital/backoffice/internal/platform/httpx"
	"github.com/ita-digital/backoffice/internal/shared"
)

// Handler exposes blog endpoints. Public reads live under /posts; admin
// mutations are mounted behind the admin router.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds the blog HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountPublicRoutes attaches the reader-facing routes.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/posts", h.listPublished)
	r.Get("/posts/{slug}", h.readPost)
	r.Get("/posts/{slug}/comments", h.listComments)
	r.Post("/posts/{slug}/comments", h.addComment)
}

// MountAdminRoutes attaches the authoring routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/posts", h.listAll)
	r.Post("/posts", h.createPost)
	r.Put("/posts/{id}", h.updatePost)
	r.Delete("/posts/{id}", h.deletePost)
	r.Delete("/comments/{id}", h.deleteComment)
}

type postRequest struct {
	Title      string   `json:"title" validate:"required"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt"`
	CoverImage string   `json:"cover_image"`
	Tags       []string `json:"tags"`
	Status     string   `json:"status" validate:"omitempty,oneof=draft published"`
}

type commentRequest struct {
	Content string `json:"content" validate:"required"`
}

func (h *Handler) listPublished(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPosts(r.Context(), true)
	if err != nil {
		h.logger.Error("list posts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, posts)
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPosts(r.Context(), false)
	if err != nil {
		h.logger.Error("list posts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, posts)
}

func (h *Handler) readPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.ReadPost(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	session := shared.SessionFromContext(r.Context())
	if session.User() == "" {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var req postRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	post, err := h.service.CreatePost(r.Context(), Post{
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		CoverImage: req.CoverImage,
		Tags:       req.Tags,
		Status:     PostStatus(req.Status),
		AuthorID:   session.User(),
	})
	if err != nil {
		h.logger.Error("create post", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, post)
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	post, err := h.service.UpdatePost(r.Context(), chi.URLParam(r, "id"), Post{
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		CoverImage: req.CoverImage,
		Tags:       req.Tags,
		Status:     PostStatus(req.Status),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePost(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPublishedBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	comments, err := h.service.ListComments(r.Context(), post.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if comments == nil {
		comments = []Comment{}
	}
	httpx.JSON(w, http.StatusOK, comments)
}

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	session := shared.SessionFromContext(r.Context())
	if session.User() == "" {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	post, err := h.service.GetPublishedBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req commentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	comment, err := h.service.AddComment(r.Context(), Comment{
		PostID:  post.ID,
		UserID:  session.User(),
		Content: req.Content,
	})
	if err != nil {
		h.logger.Error("add comment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, comment)
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteComment(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}
