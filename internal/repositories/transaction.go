package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-transaction-store/internal/logger"
	"github.com/sbilibin2017/gw-transaction-store/internal/models"
)

// TransactionReadRepository handles transaction read operations.
type TransactionReadRepository struct {
	db *sqlx.DB
}

func NewTransactionReadRepository(db *sqlx.DB) *TransactionReadRepository {
	return &TransactionReadRepository{db: db}
}

// Exists reports whether a transaction with the given id is present.
func (r *TransactionReadRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	const query = `
		SELECT EXISTS (SELECT 1 FROM transactions WHERE transaction_id = $1)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, id)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{id},
		"result", exists,
		"error", err,
	)

	return exists, err
}

// Get returns the transaction with the given id, or nil if absent.
func (r *TransactionReadRepository) Get(ctx context.Context, id uuid.UUID) (*models.TransactionDB, error) {
	const query = `
		SELECT transaction_id, type, amount, account_id, related_account_id, description, created_at, updated_at
		FROM transactions
		WHERE transaction_id = $1
	`

	var txn models.TransactionDB
	err := r.db.GetContext(ctx, &txn, query, id)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{id},
		"result", txn,
		"error", err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &txn, nil
}

// List returns one page of transactions in creation order plus the total
// number of stored transactions.
func (r *TransactionReadRepository) List(ctx context.Context, offset, limit int) ([]models.TransactionDB, int64, error) {
	const query = `
		SELECT transaction_id, type, amount, account_id, related_account_id, description, created_at, updated_at
		FROM transactions
		ORDER BY created_at, transaction_id
		OFFSET $1 LIMIT $2
	`
	const countQuery = `
		SELECT COUNT(*) FROM transactions
	`

	var txns []models.TransactionDB
	err := r.db.SelectContext(ctx, &txns, query, offset, limit)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{offset, limit},
		"result", len(txns),
		"error", err,
	)

	if err != nil {
		return nil, 0, err
	}

	var total int64
	err = r.db.GetContext(ctx, &total, countQuery)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(countQuery), " "),
		"result", total,
		"error", err,
	)

	if err != nil {
		return nil, 0, err
	}

	return txns, total, nil
}

// TransactionWriteRepository handles transaction write operations.
type TransactionWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewTransactionWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db, txGetter: txGetter}
}

func (r *TransactionWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Insert stores a new transaction. The store stamps created_at and
// updated_at; client-supplied timestamps are ignored.
func (r *TransactionWriteRepository) Insert(ctx context.Context, txn models.TransactionDB) (*models.TransactionDB, error) {
	const query = `
		INSERT INTO transactions (transaction_id, type, amount, account_id, related_account_id, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING transaction_id, type, amount, account_id, related_account_id, description, created_at, updated_at
	`
	args := []any{txn.TransactionID, txn.Type, txn.Amount, txn.AccountID, txn.RelatedAccountID, txn.Description}

	var stored models.TransactionDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &stored, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", stored,
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	return &stored, nil
}

// Save overwrites the mutable fields of an existing transaction and
// refreshes updated_at. created_at is never touched.
func (r *TransactionWriteRepository) Save(ctx context.Context, txn models.TransactionDB) (*models.TransactionDB, error) {
	const query = `
		UPDATE transactions
		SET type = $2,
		    amount = $3,
		    account_id = $4,
		    related_account_id = $5,
		    description = $6,
		    updated_at = NOW()
		WHERE transaction_id = $1
		RETURNING transaction_id, type, amount, account_id, related_account_id, description, created_at, updated_at
	`
	args := []any{txn.TransactionID, txn.Type, txn.Amount, txn.AccountID, txn.RelatedAccountID, txn.Description}

	var stored models.TransactionDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &stored, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", stored,
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	return &stored, nil
}

// Delete removes the transaction with the given id.
func (r *TransactionWriteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `
		DELETE FROM transactions WHERE transaction_id = $1
	`

	res, err := r.executor(ctx).ExecContext(ctx, query, id)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{id},
		"result", rowsAffected,
		"error", err,
	)

	return err
}
