package blog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

// Service handles post and comment business rules.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the blog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) ListPosts(ctx context.Context, publishedOnly bool) ([]Post, error) {
	return s.repo.ListPosts(ctx, publishedOnly)
}

func (s *Service) GetPost(ctx context.Context, id string) (Post, error) {
	return s.repo.GetPost(ctx, id)
}

// ReadPost resolves a post by slug for the public site and counts the view.
// Draft posts are invisible to readers.
func (s *Service) ReadPost(ctx context.Context, slug string) (Post, error) {
	post, err := s.repo.GetPostBySlug(ctx, slug)
	if err != nil {
		return Post{}, err
	}
	if post.Status != PostPublished {
		return Post{}, httpx.ErrNotFound
	}
	if err := s.repo.IncrementViews(ctx, post.ID); err != nil {
		return Post{}, err
	}
	post.Views++
	return post, nil
}

// GetPublishedBySlug resolves a published post without counting a view.
func (s *Service) GetPublishedBySlug(ctx context.Context, slug string) (Post, error) {
	post, err := s.repo.GetPostBySlug(ctx, slug)
	if err != nil {
		return Post{}, err
	}
	if post.Status != PostPublished {
		return Post{}, httpx.ErrNotFound
	}
	return post, nil
}

// CreatePost validates and stores a post, deriving its slug from the title.
// On a slug collision a numeric suffix is appended.
func (s *Service) CreatePost(ctx context.Context, post Post) (Post, error) {
	if post.Title == "" {
		return Post{}, fmt.Errorf("%w: title is required", httpx.ErrValidation)
	}
	if post.AuthorID == "" {
		return Post{}, fmt.Errorf("%w: author is required", httpx.ErrValidation)
	}
	if post.Status == "" {
		post.Status = PostDraft
	}
	if post.Status != PostDraft && post.Status != PostPublished {
		return Post{}, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, post.Status)
	}
	if post.Status == PostPublished && post.PublishedAt == nil {
		now := s.now()
		post.PublishedAt = &now
	}

	base := Slugify(post.Title)
	if base == "" {
		return Post{}, fmt.Errorf("%w: title produces an empty slug", httpx.ErrValidation)
	}
	post.Slug = base
	for attempt := 2; ; attempt++ {
		created, err := s.repo.CreatePost(ctx, post)
		if errors.Is(err, httpx.ErrDuplicate) {
			post.Slug = base + "-" + strconv.Itoa(attempt)
			continue
		}
		return created, err
	}
}

// UpdatePost edits a post's content without touching its slug.
func (s *Service) UpdatePost(ctx context.Context, id string, post Post) (Post, error) {
	existing, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return Post{}, err
	}
	if post.Title == "" {
		return Post{}, fmt.Errorf("%w: title is required", httpx.ErrValidation)
	}
	if post.Status == "" {
		post.Status = existing.Status
	}
	if post.Status != PostDraft && post.Status != PostPublished {
		return Post{}, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, post.Status)
	}
	if post.Status == PostPublished && existing.PublishedAt == nil {
		now := s.now()
		post.PublishedAt = &now
	} else {
		post.PublishedAt = existing.PublishedAt
	}
	if err := s.repo.UpdatePost(ctx, id, post); err != nil {
		return Post{}, err
	}
	return s.repo.GetPost(ctx, id)
}

func (s *Service) DeletePost(ctx context.Context, id string) error {
	return s.repo.DeletePost(ctx, id)
}

func (s *Service) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	if _, err := s.repo.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, postID)
}

// AddComment attaches a comment to a published post.
func (s *Service) AddComment(ctx context.Context, comment Comment) (Comment, error) {
	if comment.Content == "" {
		return Comment{}, fmt.Errorf("%w: content is required", httpx.ErrValidation)
	}
	if comment.UserID == "" {
		return Comment{}, fmt.Errorf("%w: user is required", httpx.ErrValidation)
	}
	post, err := s.repo.GetPost(ctx, comment.PostID)
	if err != nil {
		return Comment{}, err
	}
	if post.Status != PostPublished {
		return Comment{}, fmt.Errorf("%w: cannot comment on a draft post", httpx.ErrConflict)
	}
	return s.repo.CreateComment(ctx, comment)
}

func (s *Service) DeleteComment(ctx context.Context, id string) error {
	return s.repo.DeleteComment(ctx, id)
}
