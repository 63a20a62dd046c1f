package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sbilibin2017/gw-transaction-store/internal/models"
	"github.com/sbilibin2017/gw-transaction-store/internal/services"
)

func TestCreateTransactionHandler(t *testing.T) {
	id := uuid.New()
	accountID := uuid.New()

	validBody := TransactionRequest{
		ID:        id,
		Type:      models.TypeDeposit,
		Amount:    decimal.RequireFromString("100.00"),
		AccountID: accountID,
	}

	tests := []struct {
		name               string
		requestBody        any
		setupMocks         func(mock *MockTransactionCreator)
		expectedStatusCode int
		expectedError      string
	}{
		{
			name:        "successful create",
			requestBody: validBody,
			setupMocks: func(mock *MockTransactionCreator) {
				stored := validBody.ToModel()
				mock.EXPECT().Create(gomock.Any(), validBody.ToModel()).Return(&stored, nil)
			},
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "invalid request body",
			requestBody:        "not-json",
			setupMocks:         func(mock *MockTransactionCreator) {},
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "Invalid request body",
		},
		{
			name: "validation aggregates all violations",
			requestBody: TransactionRequest{
				Type:   "BARTER",
				Amount: decimal.RequireFromString("-5"),
			},
			setupMocks:         func(mock *MockTransactionCreator) {},
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      `transaction id is required; transaction type "BARTER" is not supported; amount must be greater than 0; account id is required`,
		},
		{
			name:        "duplicate transaction id",
			requestBody: validBody,
			setupMocks: func(mock *MockTransactionCreator) {
				mock.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, services.ErrDuplicateTransaction)
			},
			expectedStatusCode: http.StatusConflict,
			expectedError:      services.ErrDuplicateTransaction.Error(),
		},
		{
			name:        "internal error",
			requestBody: validBody,
			setupMocks: func(mock *MockTransactionCreator) {
				mock.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
			},
			expectedStatusCode: http.StatusInternalServerError,
			expectedError:      "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockSvc := NewMockTransactionCreator(ctrl)
			tt.setupMocks(mockSvc)

			handler := NewCreateTransactionHandler(mockSvc)

			var body bytes.Buffer
			assert.NoError(t, json.NewEncoder(&body).Encode(tt.requestBody))

			req := httptest.NewRequest(http.MethodPost, "/transactions", &body)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatusCode, rr.Code)

			if tt.expectedError != "" {
				var resp TransactionErrorResponse
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Error)
			} else {
				var resp models.TransactionDB
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, id, resp.TransactionID)
				assert.Equal(t, models.TypeDeposit, resp.Type)
				assert.True(t, resp.Amount.Equal(decimal.RequireFromString("100.00")))
			}
		})
	}
}

// The description bound counts characters, not bytes: 255 multi-byte runes
// must pass, 256 must not.
func TestTransactionRequest_DescriptionBoundCountsRunes(t *testing.T) {
	base := TransactionRequest{
		ID:        uuid.New(),
		Type:      models.TypeDeposit,
		Amount:    decimal.RequireFromString("1.00"),
		AccountID: uuid.New(),
	}

	ok := strings.Repeat("é", 255)
	req := base
	req.Description = &ok
	assert.Empty(t, req.Validate(true))

	tooLong := strings.Repeat("é", 256)
	req = base
	req.Description = &tooLong
	assert.Equal(t, []string{"description must not exceed 255 characters"}, req.Validate(true))
}
