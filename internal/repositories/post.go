package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/gw-blog/internal/errs"
	"github.com/sbilibin2017/gw-blog/internal/logger"
	"github.com/sbilibin2017/gw-blog/internal/models"
)

// selectPosts join-fetches each post with its author's public view.
const selectPosts = `
	SELECT p.id, p.title, p.content, p.user_id, p.date_posted,
		u.id AS "author.id", u.username AS "author.username"
	FROM posts p
	JOIN users u ON u.id = p.user_id
`

// PostReadRepository handles post read operations
type PostReadRepository struct {
	db *sqlx.DB
}

func NewPostReadRepository(db *sqlx.DB) *PostReadRepository {
	return &PostReadRepository{db: db}
}

// GetByID returns the post with the given id, or errs.ErrPostNotFound.
func (r *PostReadRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := selectPosts + `WHERE p.id = ?`

	ex := executor(ctx, r.db)
	q := ex.Rebind(query)

	var post models.Post
	err := sqlx.GetContext(ctx, ex, &post, q, id)

	logger.Log.Infow("sql",
		"query", oneLine(q),
		"args", []any{id},
		"result", post.ID,
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// List returns every post in insertion order.
func (r *PostReadRepository) List(ctx context.Context) ([]models.Post, error) {
	return r.selectMany(ctx, selectPosts+`ORDER BY p.id`)
}

// ListByUserID returns the posts of one user, most recent first.
func (r *PostReadRepository) ListByUserID(ctx context.Context, userID int64) ([]models.Post, error) {
	return r.selectMany(ctx, selectPosts+`WHERE p.user_id = ? ORDER BY p.date_posted DESC, p.id DESC`, userID)
}

func (r *PostReadRepository) selectMany(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	ex := executor(ctx, r.db)
	q := ex.Rebind(query)

	posts := []models.Post{}
	err := sqlx.SelectContext(ctx, ex, &posts, q, args...)

	logger.Log.Infow("sql",
		"query", oneLine(q),
		"args", args,
		"result", len(posts),
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return posts, nil
}

// PostWriteRepository handles post write operations
type PostWriteRepository struct {
	db *sqlx.DB
}

func NewPostWriteRepository(db *sqlx.DB) *PostWriteRepository {
	return &PostWriteRepository{db: db}
}

// Create inserts post and returns it with the assigned id.
// A missing author comes back as errs.ErrUserNotFound.
func (r *PostWriteRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	const query = `
		INSERT INTO posts (title, content, user_id, date_posted)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`
	ex := executor(ctx, r.db)
	q := ex.Rebind(query)
	args := []any{post.Title, post.Content, post.UserID, post.DatePosted}

	var id int64
	err := sqlx.GetContext(ctx, ex, &id, q, args...)

	logger.Log.Infow("sql",
		"query", oneLine(q),
		"args", args,
		"result", id,
		"error", err,
	)

	if err != nil {
		return nil, translateError(err)
	}

	created := *post
	created.ID = id
	return &created, nil
}
