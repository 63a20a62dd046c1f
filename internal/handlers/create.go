package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/gw-transaction-store/internal/logger"
	"github.com/sbilibin2017/gw-transaction-store/internal/models"
	"github.com/sbilibin2017/gw-transaction-store/internal/services"
)

// TransactionCreator defines the interface that the service must implement.
type TransactionCreator interface {
	Create(ctx context.Context, txn models.TransactionDB) (*models.TransactionDB, error)
}

// TransactionRequest represents the JSON body for creating or replacing a transaction
// swagger:model TransactionRequest
type TransactionRequest struct {
	// Transaction ID (client-supplied UUID)
	// required: true
	// example: 9be36a55-8371-4f42-9b1c-6f4d4c2f8a11
	ID uuid.UUID `json:"id"`

	// Transaction type
	// required: true
	// example: DEPOSIT
	Type string `json:"type"`

	// Amount, must be greater than 0
	// required: true
	// example: 100.00
	Amount decimal.Decimal `json:"amount"`

	// Account ID
	// required: true
	// example: 3d1c2a6e-02c4-4b6a-8f5e-9a1b2c3d4e5f
	AccountID uuid.UUID `json:"account_id"`

	// Related account ID (counterpart of a transfer leg)
	RelatedAccountID *uuid.UUID `json:"related_account_id,omitempty"`

	// Description, at most 255 characters
	Description *string `json:"description,omitempty"`
}

// Validate collects every field violation rather than failing on the first.
func (req TransactionRequest) Validate(requireID bool) []string {
	var violations []string
	if requireID && req.ID == uuid.Nil {
		violations = append(violations, "transaction id is required")
	}
	if req.Type == "" {
		violations = append(violations, "transaction type is required")
	} else if !models.ValidTransactionType(req.Type) {
		violations = append(violations, fmt.Sprintf("transaction type %q is not supported", req.Type))
	}
	if !req.Amount.IsPositive() {
		violations = append(violations, "amount must be greater than 0")
	}
	if req.AccountID == uuid.Nil {
		violations = append(violations, "account id is required")
	}
	if req.Description != nil && utf8.RuneCountInString(*req.Description) > 255 {
		violations = append(violations, "description must not exceed 255 characters")
	}
	return violations
}

// ToModel converts the request body into the storage model.
func (req TransactionRequest) ToModel() models.TransactionDB {
	return models.TransactionDB{
		TransactionID:    req.ID,
		Type:             req.Type,
		Amount:           req.Amount,
		AccountID:        req.AccountID,
		RelatedAccountID: req.RelatedAccountID,
		Description:      req.Description,
	}
}

// TransactionErrorResponse represents an error response for transaction endpoints
// swagger:model TransactionErrorResponse
type TransactionErrorResponse struct {
	// Error message
	// example: transaction id already exists
	Error string `json:"error"`
}

// NewCreateTransactionHandler returns an HTTP handler for creating a transaction.
// @Summary Create a new transaction
// @Description Stores a transaction under its client-supplied id. Fails with 409 if the id already exists.
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body handlers.TransactionRequest true "Transaction to create"
// @Success 200 {object} models.TransactionDB "Stored transaction"
// @Failure 400 {object} handlers.TransactionErrorResponse "Validation failure"
// @Failure 409 {object} handlers.TransactionErrorResponse "Duplicate transaction id"
// @Failure 500 {object} handlers.TransactionErrorResponse "Internal server error"
// @Router /transactions [post]
func NewCreateTransactionHandler(svc TransactionCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode create transaction request", "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Invalid request body"})
			return
		}

		if violations := req.Validate(true); len(violations) > 0 {
			logger.Log.Warnw("invalid create transaction request", "violations", violations)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TransactionErrorResponse{Error: strings.Join(violations, "; ")})
			return
		}

		stored, err := svc.Create(r.Context(), req.ToModel())
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			switch {
			case errors.Is(err, services.ErrDuplicateTransaction):
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: err.Error()})
			default:
				logger.Log.Errorw("failed to create transaction", "transaction_id", req.ID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(stored)
	}
}
