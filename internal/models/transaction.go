package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction types.
const (
	TypeDeposit     = "DEPOSIT"
	TypeWithdrawal  = "WITHDRAWAL"
	TypeTransferOut = "TRANSFER_OUT"
	TypeTransferIn  = "TRANSFER_IN"
)

// ValidTransactionType reports whether t is one of the supported transaction types.
func ValidTransactionType(t string) bool {
	switch t {
	case TypeDeposit, TypeWithdrawal, TypeTransferOut, TypeTransferIn:
		return true
	}
	return false
}

// TransactionDB represents a transaction row in the transactions table.
type TransactionDB struct {
	TransactionID    uuid.UUID       `db:"transaction_id" json:"id"`                                       // Client-supplied unique identifier, immutable.
	Type             string          `db:"type" json:"type"`                                               // One of DEPOSIT, WITHDRAWAL, TRANSFER_OUT, TRANSFER_IN.
	Amount           decimal.Decimal `db:"amount" json:"amount"`                                           // Strictly positive fixed-precision amount.
	AccountID        uuid.UUID       `db:"account_id" json:"account_id"`                                   // Account the transaction applies to.
	RelatedAccountID *uuid.UUID      `db:"related_account_id" json:"related_account_id,omitempty"`         // Counterpart account for transfer legs.
	Description      *string         `db:"description" json:"description,omitempty"`                       // Optional annotation, at most 255 characters.
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`                                   // Stamped by the store on insert.
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`                                   // Refreshed by the store on every save.
}
