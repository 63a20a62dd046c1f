package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-transaction-store/internal/logger"
	"github.com/sbilibin2017/gw-transaction-store/internal/models"
)

// Cache key layout. Single-record entries and listing pages are independent
// regions: records are evicted per id, listing pages are only ever
// invalidated wholesale.
const (
	transactionKeyPrefix = "transaction:"
	listKeyPrefix        = "transaction_list:"
	listKeyPattern       = listKeyPrefix + "*"
)

// TransactionCacheRepository provides cached transactions using Redis.
type TransactionCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration for cached entries, 0 means no expiry
}

// NewTransactionCacheRepository creates a new repository instance with optional TTL.
func NewTransactionCacheRepository(client *redis.Client, expiration time.Duration) *TransactionCacheRepository {
	return &TransactionCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func transactionKey(id uuid.UUID) string {
	return transactionKeyPrefix + id.String()
}

func listKey(page, size int) string {
	return fmt.Sprintf("%spage:%d:size:%d", listKeyPrefix, page, size)
}

// GetTransaction fetches a cached transaction. A cache miss returns (nil, nil).
func (r *TransactionCacheRepository) GetTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionDB, error) {
	key := transactionKey(id)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		logger.Log.Infow(
			"key", key,
			"result", val,
			"error", err,
		)
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var txn models.TransactionDB
	if err := json.Unmarshal([]byte(val), &txn); err != nil {
		logger.Log.Errorw("failed to unmarshal cached transaction", "key", key, "error", err)
		return nil, err
	}

	logger.Log.Infow(
		"key", key,
		"result", txn,
		"error", nil,
	)

	return &txn, nil
}

// SetTransaction caches a transaction under its id.
func (r *TransactionCacheRepository) SetTransaction(ctx context.Context, txn models.TransactionDB) error {
	key := transactionKey(txn.TransactionID)

	data, err := json.Marshal(txn)
	if err != nil {
		logger.Log.Errorw("failed to marshal transaction for cache", "key", key, "error", err)
		return err
	}

	err = r.client.Set(ctx, key, data, r.exp).Err()

	logger.Log.Infow(
		"key", key,
		"result", "ok",
		"error", err,
	)

	return err
}

// DeleteTransaction evicts the cached entry for one transaction id.
func (r *TransactionCacheRepository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	key := transactionKey(id)
	err := r.client.Del(ctx, key).Err()

	logger.Log.Infow(
		"key", key,
		"result", "deleted",
		"error", err,
	)

	return err
}

// GetTransactionList fetches a cached listing page. A cache miss returns (nil, nil).
func (r *TransactionCacheRepository) GetTransactionList(ctx context.Context, page, size int) ([]models.TransactionDB, error) {
	key := listKey(page, size)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		logger.Log.Infow(
			"key", key,
			"result", val,
			"error", err,
		)
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var txns []models.TransactionDB
	if err := json.Unmarshal([]byte(val), &txns); err != nil {
		logger.Log.Errorw("failed to unmarshal cached transaction list", "key", key, "error", err)
		return nil, err
	}

	logger.Log.Infow(
		"key", key,
		"result", len(txns),
		"error", nil,
	)

	return txns, nil
}

// SetTransactionList caches one listing page under its exact (page, size) key.
func (r *TransactionCacheRepository) SetTransactionList(ctx context.Context, page, size int, txns []models.TransactionDB) error {
	key := listKey(page, size)

	data, err := json.Marshal(txns)
	if err != nil {
		logger.Log.Errorw("failed to marshal transaction list for cache", "key", key, "error", err)
		return err
	}

	err = r.client.Set(ctx, key, data, r.exp).Err()

	logger.Log.Infow(
		"key", key,
		"result", "ok",
		"error", err,
	)

	return err
}

// InvalidateTransactionList removes every cached listing page. Mutations can
// shift membership and ordering of any page, so the listing region is never
// invalidated surgically.
func (r *TransactionCacheRepository) InvalidateTransactionList(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, listKeyPattern, 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Log.Errorw("failed to scan transaction list keys", "pattern", listKeyPattern, "error", err)
		return err
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			logger.Log.Errorw("failed to delete transaction list keys", "keys", keys, "error", err)
			return err
		}
	}

	logger.Log.Infow(
		"pattern", listKeyPattern,
		"result", len(keys),
		"error", nil,
	)

	return nil
}
