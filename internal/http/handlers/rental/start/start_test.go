package start

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/askchiwa/chajipoa-core/internal/apperrors"
	"github.com/askchiwa/chajipoa-core/internal/http/middlewarectx"
	"github.com/askchiwa/chajipoa-core/internal/models"
)

// MockService реализует интерфейс start.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Start(ctx context.Context, userUID string, req models.StartRentalRequest) (*models.Rental, error) {
	args := m.Called(ctx, userUID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rental), args.Error(1)
}

func TestStartHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	startTime := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	rental := &models.Rental{
		ID:              42,
		RentalCode:      "CHJ-AAAA1111",
		DeviceID:        7,
		StationFromID:   3,
		Status:          models.RentalStatusActive,
		StartTime:       startTime,
		ExpectedEndTime: startTime.Add(4 * time.Hour),
		DepositAmount:   decimal.NewFromInt(5000),
	}

	tests := []struct {
		name           string
		requestBody    any
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedInBody string
	}{
		{
			name:        "успешное начало аренды",
			requestBody: models.StartRentalRequest{DeviceCode: "PB-0007", StationID: 3},
			userUID:     "user-uid-1",
			setupMock: func(m *MockService) {
				m.On("Start", mock.Anything, "user-uid-1", mock.AnythingOfType("models.StartRentalRequest")).
					Return(rental, nil)
			},
			expectedStatus: http.StatusOK,
			expectedInBody: `"rental_code":"CHJ-AAAA1111"`,
		},
		{
			name:        "устройство занято",
			requestBody: models.StartRentalRequest{DeviceCode: "PB-0007", StationID: 3},
			userUID:     "user-uid-1",
			setupMock: func(m *MockService) {
				m.On("Start", mock.Anything, "user-uid-1", mock.AnythingOfType("models.StartRentalRequest")).
					Return(nil, fmt.Errorf("device is rented: %w", apperrors.ErrConflict))
			},
			expectedStatus: http.StatusConflict,
			expectedInBody: `"status":"Error"`,
		},
		{
			name:           "невалидные данные",
			requestBody:    models.StartRentalRequest{DeviceCode: "", StationID: 0},
			userUID:        "user-uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedInBody: `field DeviceCode is a required field`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			userUID:        "user-uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedInBody: `"status":"Error"`,
		},
		{
			name:           "отсутствует авторизация",
			requestBody:    models.StartRentalRequest{DeviceCode: "PB-0007", StationID: 3},
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedInBody: `user identification missing`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			body, err := json.Marshal(tt.requestBody)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/rentals", bytes.NewReader(body))
			if tt.userUID != "" {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedInBody)
			mockService.AssertExpectations(t)
		})
	}
}
