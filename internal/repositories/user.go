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

type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByID returns the user with the given id, or errs.ErrUserNotFound.
func (r *UserReadRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const query = `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE id = ?
	`
	return r.getOne(ctx, query, id)
}

// GetByEmail matches email case-insensitively.
func (r *UserReadRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE lower(email) = lower(?)
	`
	return r.getOne(ctx, query, email)
}

// ExistsByUsername reports whether a user other than excludeID holds username,
// compared case-insensitively. Pass 0 to check against all users.
func (r *UserReadRepository) ExistsByUsername(ctx context.Context, username string, excludeID int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE lower(username) = lower(?) AND id <> ?
		)
	`
	return r.exists(ctx, query, username, excludeID)
}

// ExistsByEmail reports whether a user other than excludeID holds email,
// compared case-insensitively. Pass 0 to check against all users.
func (r *UserReadRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE lower(email) = lower(?) AND id <> ?
		)
	`
	return r.exists(ctx, query, email, excludeID)
}

func (r *UserReadRepository) getOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	ex := executor(ctx, r.db)
	query = ex.Rebind(query)

	var user models.User
	err := sqlx.GetContext(ctx, ex, &user, query, args...)

	// Log with query in single line
	logger.Log.Infow("sql",
		"query", oneLine(query),
		"args", args,
		"result", user.ID,
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

func (r *UserReadRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	ex := executor(ctx, r.db)
	query = ex.Rebind(query)

	var found bool
	err := sqlx.GetContext(ctx, ex, &found, query, args...)

	logger.Log.Infow("sql",
		"query", oneLine(query),
		"args", args,
		"result", found,
		"error", err,
	)

	return found, err
}

type UserWriteRepository struct {
	db *sqlx.DB
}

func NewUserWriteRepository(db *sqlx.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// Create inserts user and returns it with the assigned id.
// Unique violations come back as errs.ErrUsernameTaken or errs.ErrEmailTaken.
func (r *UserWriteRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	const query = `
		INSERT INTO users (username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`
	ex := executor(ctx, r.db)
	q := ex.Rebind(query)

	var id int64
	err := sqlx.GetContext(ctx, ex, &id, q, user.Username, user.Email, user.PasswordHash, user.CreatedAt)

	logger.Log.Infow("sql",
		"query", oneLine(q),
		"args", []any{user.Username, user.Email, "[redacted]", user.CreatedAt},
		"result", id,
		"error", err,
	)

	if err != nil {
		return nil, translateError(err)
	}

	created := *user
	created.ID = id
	return &created, nil
}

// Update stores the username and email of user.
func (r *UserWriteRepository) Update(ctx context.Context, user *models.User) error {
	const query = `
		UPDATE users
		SET username = ?, email = ?
		WHERE id = ?
	`
	ex := executor(ctx, r.db)
	q := ex.Rebind(query)
	args := []any{user.Username, user.Email, user.ID}

	res, err := ex.ExecContext(ctx, q, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow("sql",
		"query", oneLine(q),
		"args", args,
		"result", rowsAffected,
		"error", err,
	)

	if err != nil {
		return translateError(err)
	}
	if rowsAffected == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}

// Delete removes the user and every post they authored.
// Returns errs.ErrUserNotFound when there is no such user.
func (r *UserWriteRepository) Delete(ctx context.Context, id int64) error {
	const deletePosts = `DELETE FROM posts WHERE user_id = ?`
	const deleteUser = `DELETE FROM users WHERE id = ?`

	ex := executor(ctx, r.db)

	var rowsAffected int64
	for _, query := range []string{deletePosts, deleteUser} {
		q := ex.Rebind(query)
		res, err := ex.ExecContext(ctx, q, id)
		rowsAffected = 0
		if res != nil {
			rowsAffected, _ = res.RowsAffected()
		}

		logger.Log.Infow("sql",
			"query", q,
			"args", []any{id},
			"result", rowsAffected,
			"error", err,
		)

		if err != nil {
			return err
		}
	}

	if rowsAffected == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}
