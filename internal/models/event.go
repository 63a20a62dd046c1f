package models

// Event operations published to Kafka after successful mutations.
const (
	OpTransactionCreated = "transaction_created"
	OpTransactionUpdated = "transaction_updated"
	OpTransactionDeleted = "transaction_deleted"
)

// TransactionEvent is the payload published to Kafka for every successful mutation.
type TransactionEvent struct {
	TransactionID string `json:"transaction_id"` // TransactionID identifies the affected transaction.
	Timestamp     int64  `json:"timestamp"`      // Timestamp is the Unix timestamp (in seconds) when the mutation completed.
	Amount        string `json:"amount"`         // Amount is the transaction amount as a decimal string; empty for deletes.
	AccountID     string `json:"account_id"`     // AccountID is the account the transaction applies to; empty for deletes.
	Operation     string `json:"operation"`      // Operation is one of transaction_created, transaction_updated, transaction_deleted.
}
