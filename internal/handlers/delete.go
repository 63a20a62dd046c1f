package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sbilibin2017/gw-transaction-store/internal/logger"
	"github.com/sbilibin2017/gw-transaction-store/internal/services"
)

// TransactionDeleter defines the interface that the service must implement.
type TransactionDeleter interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

// NewDeleteTransactionHandler returns an HTTP handler for removing a transaction.
// @Summary Delete a transaction
// @Description Removes the transaction with the given id.
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 "Transaction deleted"
// @Failure 400 {object} handlers.TransactionErrorResponse "Malformed transaction id"
// @Failure 404 {object} handlers.TransactionErrorResponse "Transaction not found"
// @Failure 500 {object} handlers.TransactionErrorResponse "Internal server error"
// @Router /transactions/{id} [delete]
func NewDeleteTransactionHandler(svc TransactionDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			logger.Log.Warnw("malformed transaction id", "id", chi.URLParam(r, "id"), "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Malformed transaction id"})
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			w.Header().Set("Content-Type", "application/json")
			switch {
			case errors.Is(err, services.ErrTransactionNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: err.Error()})
			default:
				logger.Log.Errorw("failed to delete transaction", "transaction_id", id, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
