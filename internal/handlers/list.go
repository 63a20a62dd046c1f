package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sbilibin2017/gw-transaction-store/internal/logger"
	"github.com/sbilibin2017/gw-transaction-store/internal/models"
	"github.com/sbilibin2017/gw-transaction-store/internal/services"
)

// Listing defaults when query parameters are omitted.
const (
	defaultPage = 0
	defaultSize = 10
)

// TransactionLister defines the interface that the service must implement.
type TransactionLister interface {
	List(ctx context.Context, page, size int) ([]models.TransactionDB, error)
}

// NewListTransactionsHandler returns an HTTP handler for paginated transaction listings.
// @Summary List transactions
// @Description Returns one page of transactions in store order. Page and size default to 0 and 10.
// @Tags transactions
// @Produce json
// @Param page query int false "Page number, 0-based" default(0)
// @Param size query int false "Page size" default(10)
// @Success 200 {array} models.TransactionDB "One page of transactions"
// @Failure 400 {object} handlers.TransactionErrorResponse "Malformed pagination parameters"
// @Failure 500 {object} handlers.TransactionErrorResponse "Internal server error"
// @Router /transactions [get]
func NewListTransactionsHandler(svc TransactionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, size := defaultPage, defaultSize

		var err error
		if v := r.URL.Query().Get("page"); v != "" {
			if page, err = strconv.Atoi(v); err != nil {
				logger.Log.Warnw("malformed page parameter", "page", v, "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Malformed page parameter"})
				return
			}
		}
		if v := r.URL.Query().Get("size"); v != "" {
			if size, err = strconv.Atoi(v); err != nil {
				logger.Log.Warnw("malformed size parameter", "size", v, "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Malformed size parameter"})
				return
			}
		}

		txns, err := svc.List(r.Context(), page, size)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			switch {
			case errors.Is(err, services.ErrInvalidPagination):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: err.Error()})
			default:
				logger.Log.Errorw("failed to list transactions", "page", page, "size", size, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(txns)
	}
}
