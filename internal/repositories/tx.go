package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-transaction-store/internal/logger"
)

// contextKey is an unexported type for keys in context
type contextKey struct{}

var txKey = contextKey{}

// setTxToContext stores a transaction in the context
func setTxToContext(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// GetTxFromContext retrieves the transaction from the context. Returns nil if not present.
func GetTxFromContext(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey).(*sqlx.Tx)
	return tx
}

// NewTxRunner returns a function that executes fn inside a single database
// transaction. The transaction is stored in the context passed to fn, so
// write repositories route their statements through it. An error from fn
// rolls the transaction back; otherwise it is committed before the runner
// returns, so any work the caller sequences after the runner observes a
// durable mutation.
func NewTxRunner(db *sqlx.DB) func(ctx context.Context, fn func(ctx context.Context) error) error {
	return func(ctx context.Context, fn func(ctx context.Context) error) error {
		tx, err := db.Beginx()
		if err != nil {
			logger.Log.Errorw("failed to begin transaction", "error", err)
			return err
		}

		defer func() {
			if rec := recover(); rec != nil {
				tx.Rollback()
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
			return err
		}

		return nil
	}
}
