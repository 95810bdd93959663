package repositories

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sbilibin2017/gw-blog/internal/errs"
)

// PostgreSQL SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translateError maps constraint violations from either driver onto the
// error kinds of the blog core. Other errors are returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return uniqueViolation(pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return errs.ErrUserNotFound
		}
		return err
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		msg := sqliteErr.Error()
		switch {
		case sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE,
			strings.Contains(msg, "UNIQUE constraint failed"):
			return uniqueViolation(msg)
		case sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY,
			strings.Contains(msg, "FOREIGN KEY constraint failed"):
			return errs.ErrUserNotFound
		}
	}

	return err
}

// uniqueViolation picks the conflict from the constraint name or message.
func uniqueViolation(detail string) error {
	switch {
	case strings.Contains(detail, "email"):
		return errs.ErrEmailTaken
	case strings.Contains(detail, "username"):
		return errs.ErrUsernameTaken
	default:
		return errs.New(errs.ErrConflict, "resource already exists")
	}
}
