package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/gw-blog/internal/logger"
)

// contextKey is an unexported type for keys in context
type contextKey struct{}

var txKey = contextKey{}

// setTxToContext stores a transaction in the context
func setTxToContext(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// txFromContext retrieves the transaction from the context. Returns nil if not present.
func txFromContext(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey).(*sqlx.Tx)
	return tx
}

// executor returns the transaction carried by ctx, or db when there is none.
func executor(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db
}

// TxManager runs a unit of work inside one database transaction.
type TxManager struct {
	db *sqlx.DB
}

// NewTxManager creates a TxManager over db.
func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// Do calls fn with a context carrying a new transaction, committing when fn
// returns nil and rolling back otherwise. Repositories called with that context
// join the transaction. A nested Do reuses the outer transaction.
// Constraint violations reported at commit are translated like statement errors.
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		logger.Log.Errorw("failed to begin transaction", "error", err)
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			_ = tx.Rollback()
			panic(rec)
		}
	}()

	if err := fn(setTxToContext(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Log.Errorw("failed to roll back transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.Log.Errorw("failed to commit transaction", "error", err)
		if translated := translateError(err); translated != err {
			return translated
		}
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
