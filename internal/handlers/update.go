package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sbilibin2017/gw-transaction-store/internal/logger"
	"github.com/sbilibin2017/gw-transaction-store/internal/models"
	"github.com/sbilibin2017/gw-transaction-store/internal/services"
)

// TransactionUpdater defines the interface that the service must implement.
type TransactionUpdater interface {
	Update(ctx context.Context, id uuid.UUID, txn models.TransactionDB) (*models.TransactionDB, error)
}

// NewUpdateTransactionHandler returns an HTTP handler for replacing a transaction.
// @Summary Update a transaction
// @Description Overwrites the mutable fields of an existing transaction. The id in the body, when present, must match the id in the path.
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body handlers.TransactionRequest true "Replacement transaction"
// @Success 200 {object} models.TransactionDB "Updated transaction"
// @Failure 400 {object} handlers.TransactionErrorResponse "Validation failure or id mismatch"
// @Failure 404 {object} handlers.TransactionErrorResponse "Transaction not found"
// @Failure 500 {object} handlers.TransactionErrorResponse "Internal server error"
// @Router /transactions/{id} [put]
func NewUpdateTransactionHandler(svc TransactionUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			logger.Log.Warnw("malformed transaction id", "id", chi.URLParam(r, "id"), "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Malformed transaction id"})
			return
		}

		var req TransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode update transaction request", "transaction_id", id, "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Invalid request body"})
			return
		}

		// The replacement body may omit the id; when present it must match
		// the path, which the service enforces.
		if violations := req.Validate(false); len(violations) > 0 {
			logger.Log.Warnw("invalid update transaction request", "transaction_id", id, "violations", violations)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TransactionErrorResponse{Error: strings.Join(violations, "; ")})
			return
		}

		updated, err := svc.Update(r.Context(), id, req.ToModel())
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			switch {
			case errors.Is(err, services.ErrTransactionNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: err.Error()})
			case errors.Is(err, services.ErrTransactionIDMismatch):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: err.Error()})
			default:
				logger.Log.Errorw("failed to update transaction", "transaction_id", id, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(updated)
	}
}
