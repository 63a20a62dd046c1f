package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-transaction-store/internal/locks"
	"github.com/sbilibin2017/gw-transaction-store/internal/logger"
	"github.com/sbilibin2017/gw-transaction-store/internal/models"
	"github.com/segmentio/kafka-go"
)

// Error variables
var (
	ErrTransactionNotFound   = errors.New("transaction does not exist")
	ErrDuplicateTransaction  = errors.New("transaction id already exists")
	ErrInvalidPagination     = errors.New("page must be >= 0 and size must be > 0")
	ErrTransactionIDMismatch = errors.New("transaction id in body does not match id in path")
)

// TransactionReader defines read operations against the record store.
type TransactionReader interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)                                // Reports whether a transaction id is present
	Get(ctx context.Context, id uuid.UUID) (*models.TransactionDB, error)                  // Returns a transaction or nil if absent
	List(ctx context.Context, offset, limit int) ([]models.TransactionDB, int64, error)    // Returns one page plus the total count
}

// TransactionWriter defines write operations against the record store.
type TransactionWriter interface {
	Insert(ctx context.Context, txn models.TransactionDB) (*models.TransactionDB, error) // Stores a new transaction, stamping timestamps
	Save(ctx context.Context, txn models.TransactionDB) (*models.TransactionDB, error)   // Overwrites mutable fields, refreshing updated_at
	Delete(ctx context.Context, id uuid.UUID) error                                      // Removes a transaction
}

// TransactionCache defines the two cache regions in front of the store.
type TransactionCache interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (*models.TransactionDB, error)              // Single-record region lookup, (nil, nil) on miss
	SetTransaction(ctx context.Context, txn models.TransactionDB) error                           // Populates the single-record region
	DeleteTransaction(ctx context.Context, id uuid.UUID) error                                    // Evicts one single-record entry
	GetTransactionList(ctx context.Context, page, size int) ([]models.TransactionDB, error)       // Listing region lookup, (nil, nil) on miss
	SetTransactionList(ctx context.Context, page, size int, txns []models.TransactionDB) error    // Populates one (page, size) listing entry
	InvalidateTransactionList(ctx context.Context) error                                          // Clears the entire listing region
}

// TxRunner executes fn inside one database transaction. The transaction is
// committed before the runner returns, so work sequenced after a successful
// run observes a durable mutation.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// TransactionService orchestrates shard locking, duplicate/existence checks,
// store access, cache maintenance, and Kafka publishing behind the five
// transaction operations.
type TransactionService struct {
	readRepo    TransactionReader
	writeRepo   TransactionWriter
	cache       TransactionCache
	locks       *locks.ShardedLock
	txRunner    TxRunner
	kafkaWriter KafkaWriter
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(
	readRepo TransactionReader,
	writeRepo TransactionWriter,
	cache TransactionCache,
	lockTable *locks.ShardedLock,
	txRunner TxRunner,
	kafkaWriter KafkaWriter,
) *TransactionService {
	return &TransactionService{
		readRepo:    readRepo,
		writeRepo:   writeRepo,
		cache:       cache,
		locks:       lockTable,
		txRunner:    txRunner,
		kafkaWriter: kafkaWriter,
	}
}

// inTx runs fn through the configured transaction runner. Without a runner
// every statement auto-commits on its own.
func (s *TransactionService) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txRunner == nil {
		return fn(ctx)
	}
	return s.txRunner(ctx, fn)
}

// publishEvent publishes a transaction mutation event to Kafka.
func (s *TransactionService) publishEvent(ctx context.Context, event models.TransactionEvent) {
	if s.kafkaWriter == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "transaction_id", event.TransactionID)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal transaction event for Kafka", "transaction_id", event.TransactionID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.TransactionID),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish transaction event to Kafka", "transaction_id", event.TransactionID, "error", err)
	} else {
		logger.Log.Infow("Transaction event published to Kafka", "transaction_id", event.TransactionID, "operation", event.Operation)
	}
}

// Create stores a new transaction under its client-supplied id.
// Mutations on the same id are serialized by the shard lock, so the
// duplicate check and the insert form one atomic step relative to each
// other. The insert is committed before the caches are touched and before
// the lock is released. On success the whole listing region is invalidated;
// the single-record region is left untouched since no entry can exist for a
// brand-new id.
func (s *TransactionService) Create(ctx context.Context, txn models.TransactionDB) (*models.TransactionDB, error) {
	release := s.locks.Acquire(txn.TransactionID)
	defer release()

	exists, err := s.readRepo.Exists(ctx, txn.TransactionID)
	if err != nil {
		logger.Log.Errorw("failed to check transaction exists", "transaction_id", txn.TransactionID, "error", err)
		return nil, err
	}
	if exists {
		logger.Log.Warnw("duplicate transaction", "transaction_id", txn.TransactionID)
		return nil, ErrDuplicateTransaction
	}

	var stored *models.TransactionDB
	if err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		stored, err = s.writeRepo.Insert(ctx, txn)
		return err
	}); err != nil {
		logger.Log.Errorw("failed to insert transaction", "transaction_id", txn.TransactionID, "error", err)
		return nil, err
	}

	if err := s.cache.InvalidateTransactionList(ctx); err != nil {
		logger.Log.Errorw("failed to invalidate transaction list cache", "transaction_id", stored.TransactionID, "error", err)
	}

	s.publishEvent(ctx, models.TransactionEvent{
		TransactionID: stored.TransactionID.String(),
		Timestamp:     time.Now().Unix(),
		Amount:        stored.Amount.String(),
		AccountID:     stored.AccountID.String(),
		Operation:     models.OpTransactionCreated,
	})

	return stored, nil
}

// Get returns a transaction by id, reading through the single-record cache
// region. Reads never take the shard lock. A not-found result is never
// cached.
func (s *TransactionService) Get(ctx context.Context, id uuid.UUID) (*models.TransactionDB, error) {
	cached, err := s.cache.GetTransaction(ctx, id)
	if err != nil {
		logger.Log.Errorw("transaction cache read failed, falling back to store", "transaction_id", id, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	txn, err := s.readRepo.Get(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get transaction", "transaction_id", id, "error", err)
		return nil, err
	}
	if txn == nil {
		return nil, ErrTransactionNotFound
	}

	if err := s.cache.SetTransaction(ctx, *txn); err != nil {
		logger.Log.Errorw("failed to cache transaction", "transaction_id", id, "error", err)
	}

	return txn, nil
}

// List returns one page of transactions in store order, reading through the
// listing cache region. Distinct (page, size) pairs are independent cache
// entries.
func (s *TransactionService) List(ctx context.Context, page, size int) ([]models.TransactionDB, error) {
	if page < 0 || size <= 0 {
		return nil, ErrInvalidPagination
	}

	cached, err := s.cache.GetTransactionList(ctx, page, size)
	if err != nil {
		logger.Log.Errorw("transaction list cache read failed, falling back to store", "page", page, "size", size, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	txns, total, err := s.readRepo.List(ctx, page*size, size)
	if err != nil {
		logger.Log.Errorw("failed to list transactions", "page", page, "size", size, "error", err)
		return nil, err
	}
	logger.Log.Infow("listed transactions", "page", page, "size", size, "count", len(txns), "total", total)

	if txns == nil {
		txns = []models.TransactionDB{}
	}
	if err := s.cache.SetTransactionList(ctx, page, size, txns); err != nil {
		logger.Log.Errorw("failed to cache transaction list", "page", page, "size", size, "error", err)
	}

	return txns, nil
}

// Update overwrites the mutable fields of an existing transaction. A
// non-zero id embedded in the replacement body must match the target id. The
// save is committed before the caches are touched and before the lock is
// released, so a racing Get can only re-read the post-update row. On
// success the single-record entry for the id is evicted and the whole
// listing region is invalidated.
func (s *TransactionService) Update(ctx context.Context, id uuid.UUID, txn models.TransactionDB) (*models.TransactionDB, error) {
	if txn.TransactionID != uuid.Nil && txn.TransactionID != id {
		logger.Log.Warnw("transaction id mismatch", "path_id", id, "body_id", txn.TransactionID)
		return nil, ErrTransactionIDMismatch
	}
	txn.TransactionID = id

	release := s.locks.Acquire(id)
	defer release()

	exists, err := s.readRepo.Exists(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to check transaction exists", "transaction_id", id, "error", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTransactionNotFound
	}

	var stored *models.TransactionDB
	if err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		stored, err = s.writeRepo.Save(ctx, txn)
		return err
	}); err != nil {
		logger.Log.Errorw("failed to save transaction", "transaction_id", id, "error", err)
		return nil, err
	}

	if err := s.cache.DeleteTransaction(ctx, id); err != nil {
		logger.Log.Errorw("failed to evict cached transaction", "transaction_id", id, "error", err)
	}
	if err := s.cache.InvalidateTransactionList(ctx); err != nil {
		logger.Log.Errorw("failed to invalidate transaction list cache", "transaction_id", id, "error", err)
	}

	s.publishEvent(ctx, models.TransactionEvent{
		TransactionID: stored.TransactionID.String(),
		Timestamp:     time.Now().Unix(),
		Amount:        stored.Amount.String(),
		AccountID:     stored.AccountID.String(),
		Operation:     models.OpTransactionUpdated,
	})

	return stored, nil
}

// Delete removes a transaction by id. The delete is committed before the
// caches are touched and before the lock is released. On success the
// single-record entry is evicted and the whole listing region is
// invalidated.
func (s *TransactionService) Delete(ctx context.Context, id uuid.UUID) error {
	release := s.locks.Acquire(id)
	defer release()

	exists, err := s.readRepo.Exists(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to check transaction exists", "transaction_id", id, "error", err)
		return err
	}
	if !exists {
		return ErrTransactionNotFound
	}

	if err := s.inTx(ctx, func(ctx context.Context) error {
		return s.writeRepo.Delete(ctx, id)
	}); err != nil {
		logger.Log.Errorw("failed to delete transaction", "transaction_id", id, "error", err)
		return err
	}

	if err := s.cache.DeleteTransaction(ctx, id); err != nil {
		logger.Log.Errorw("failed to evict cached transaction", "transaction_id", id, "error", err)
	}
	if err := s.cache.InvalidateTransactionList(ctx); err != nil {
		logger.Log.Errorw("failed to invalidate transaction list cache", "transaction_id", id, "error", err)
	}

	s.publishEvent(ctx, models.TransactionEvent{
		TransactionID: id.String(),
		Timestamp:     time.Now().Unix(),
		Operation:     models.OpTransactionDeleted,
	})

	return nil
}
