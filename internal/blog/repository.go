package blog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ita-digital/backoffice/internal/platform/db"
	"github.com/ita-digital/backoffice/internal/platform/httpx"
)

// Repository defines data access for posts and comments.
type Repository interface {
	ListPosts(ctx context.Context, publishedOnly bool) ([]Post, error)
	GetPost(ctx context.Context, id string) (Post, error)
	GetPostBySlug(ctx context.Context, slug string) (Post, error)
	CreatePost(ctx context.Context, post Post) (Post, error)
	UpdatePost(ctx context.Context, id string, post Post) error
	DeletePost(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error

	ListComments(ctx context.Context, postID string) ([]Comment, error)
	CreateComment(ctx context.Context, comment Comment) (Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository builds the Postgres-backed blog store.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const postColumns = `id, title, slug, content, excerpt, cover_image, author_id, tags, status, views, published_at, created_at, updated_at`

func (r *repository) ListPosts(ctx context.Context, publishedOnly bool) ([]Post, error) {
	query := `SELECT ` + postColumns + ` FROM blog_posts ORDER BY created_at DESC`
	if publishedOnly {
		query = `SELECT ` + postColumns + ` FROM blog_posts WHERE status = 'published' ORDER BY published_at DESC`
	}
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) GetPost(ctx context.Context, id string) (Post, error) {
	row := r.db.QueryRow(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, httpx.ErrNotFound
	}
	return p, err
}

func (r *repository) GetPostBySlug(ctx context.Context, slug string) (Post, error) {
	row := r.db.QueryRow(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE slug = $1`, slug)
	p, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, httpx.ErrNotFound
	}
	return p, err
}

func (r *repository) CreatePost(ctx context.Context, post Post) (Post, error) {
	now := time.Now()
	post.ID = uuid.NewString()
	post.CreatedAt = now
	post.UpdatedAt = now
	_, err := r.db.Exec(ctx,
		`INSERT INTO blog_posts (`+postColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		post.ID, post.Title, post.Slug, post.Content, post.Excerpt, post.CoverImage,
		post.AuthorID, post.Tags, post.Status, post.Views, post.PublishedAt,
		post.CreatedAt, post.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Post{}, httpx.ErrDuplicate
		}
		return Post{}, err
	}
	return post, nil
}

func (r *repository) UpdatePost(ctx context.Context, id string, post Post) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE blog_posts SET title = $1, content = $2, excerpt = $3, cover_image = $4,
		 tags = $5, status = $6, published_at = $7, updated_at = $8 WHERE id = $9`,
		post.Title, post.Content, post.Excerpt, post.CoverImage,
		post.Tags, post.Status, post.PublishedAt, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) DeletePost(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM blog_comments WHERE post_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}
		return nil
	})
}

func (r *repository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE blog_posts SET views = views + 1 WHERE id = $1`, id)
	return err
}

func (r *repository) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, post_id, user_id, content, created_at, updated_at
		 FROM blog_comments WHERE post_id = $1 ORDER BY created_at`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) CreateComment(ctx context.Context, comment Comment) (Comment, error) {
	now := time.Now()
	comment.ID = uuid.NewString()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	_, err := r.db.Exec(ctx,
		`INSERT INTO blog_comments (id, post_id, user_id, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		comment.ID, comment.PostID, comment.UserID, comment.Content, comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		return Comment{}, err
	}
	return comment, nil
}

func (r *repository) DeleteComment(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM blog_comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.CoverImage,
		&p.AuthorID, &p.Tags, &p.Status, &p.Views, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
