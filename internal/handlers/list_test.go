package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sbilibin2017/gw-transaction-store/internal/models"
	"github.com/sbilibin2017/gw-transaction-store/internal/services"
)

func TestListTransactionsHandler(t *testing.T) {
	txns := []models.TransactionDB{
		{
			TransactionID: uuid.New(),
			Type:          models.TypeDeposit,
			Amount:        decimal.RequireFromString("10.00"),
			AccountID:     uuid.New(),
		},
		{
			TransactionID: uuid.New(),
			Type:          models.TypeTransferOut,
			Amount:        decimal.RequireFromString("25.00"),
			AccountID:     uuid.New(),
		},
	}

	tests := []struct {
		name               string
		query              string
		setupMocks         func(mock *MockTransactionLister)
		expectedStatusCode int
		expectedCount      int
	}{
		{
			name:  "defaults applied when parameters omitted",
			query: "",
			setupMocks: func(mock *MockTransactionLister) {
				mock.EXPECT().List(gomock.Any(), 0, 10).Return(txns, nil)
			},
			expectedStatusCode: http.StatusOK,
			expectedCount:      2,
		},
		{
			name:  "explicit page and size",
			query: "?page=2&size=5",
			setupMocks: func(mock *MockTransactionLister) {
				mock.EXPECT().List(gomock.Any(), 2, 5).Return(txns[:1], nil)
			},
			expectedStatusCode: http.StatusOK,
			expectedCount:      1,
		},
		{
			name:               "malformed page",
			query:              "?page=abc",
			setupMocks:         func(mock *MockTransactionLister) {},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "malformed size",
			query:              "?size=x",
			setupMocks:         func(mock *MockTransactionLister) {},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:  "invalid pagination values",
			query: "?page=-1&size=10",
			setupMocks: func(mock *MockTransactionLister) {
				mock.EXPECT().List(gomock.Any(), -1, 10).Return(nil, services.ErrInvalidPagination)
			},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:  "internal error",
			query: "",
			setupMocks: func(mock *MockTransactionLister) {
				mock.EXPECT().List(gomock.Any(), 0, 10).Return(nil, errors.New("db down"))
			},
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockSvc := NewMockTransactionLister(ctrl)
			tt.setupMocks(mockSvc)

			handler := NewListTransactionsHandler(mockSvc)

			req := httptest.NewRequest(http.MethodGet, "/transactions"+tt.query, nil)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatusCode, rr.Code)

			if tt.expectedStatusCode == http.StatusOK {
				var resp []models.TransactionDB
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Len(t, resp, tt.expectedCount)
			}
		})
	}
}
