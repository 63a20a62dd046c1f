package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sbilibin2017/gw-transaction-store/internal/logger"
	"github.com/sbilibin2017/gw-transaction-store/internal/models"
	"github.com/sbilibin2017/gw-transaction-store/internal/services"
)

// TransactionGetter defines the interface that the service must implement.
type TransactionGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*models.TransactionDB, error)
}

// NewGetTransactionHandler returns an HTTP handler for fetching one transaction by id.
// @Summary Get a transaction
// @Description Returns the transaction with the given id, served from cache when possible.
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} models.TransactionDB "Transaction"
// @Failure 400 {object} handlers.TransactionErrorResponse "Malformed transaction id"
// @Failure 404 {object} handlers.TransactionErrorResponse "Transaction not found"
// @Failure 500 {object} handlers.TransactionErrorResponse "Internal server error"
// @Router /transactions/{id} [get]
func NewGetTransactionHandler(svc TransactionGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			logger.Log.Warnw("malformed transaction id", "id", chi.URLParam(r, "id"), "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Malformed transaction id"})
			return
		}

		txn, err := svc.Get(r.Context(), id)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			switch {
			case errors.Is(err, services.ErrTransactionNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: err.Error()})
			default:
				logger.Log.Errorw("failed to get transaction", "transaction_id", id, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(txn)
	}
}
