package extend

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

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/askchiwa/chajipoa-core/internal/apperrors"
	"github.com/askchiwa/chajipoa-core/internal/http/middlewarectx"
	"github.com/askchiwa/chajipoa-core/internal/models"
)

// MockService реализует интерфейс extend.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Extend(ctx context.Context, userUID, rentalCode string, extraHours int) (*models.Rental, error) {
	args := m.Called(ctx, userUID, rentalCode, extraHours)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rental), args.Error(1)
}

func TestExtendHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	startTime := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	rental := &models.Rental{
		ID:              42,
		RentalCode:      "CHJ-AAAA1111",
		Status:          models.RentalStatusActive,
		StartTime:       startTime,
		ExpectedEndTime: startTime.Add(6 * time.Hour),
		ExtendedHours:   2,
		BaseAmount:      decimal.NewFromInt(1400),
		TaxAmount:       decimal.NewFromInt(252),
		TotalAmount:     decimal.NewFromInt(1652),
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
			name:        "успешное продление",
			requestBody: models.ExtendRentalRequest{ExtraHours: 2},
			userUID:     "user-uid-1",
			setupMock: func(m *MockService) {
				m.On("Extend", mock.Anything, "user-uid-1", "CHJ-AAAA1111", 2).
					Return(rental, nil)
			},
			expectedStatus: http.StatusOK,
			expectedInBody: `"extended_hours":2`,
		},
		{
			name:        "аренда просрочена",
			requestBody: models.ExtendRentalRequest{ExtraHours: 2},
			userUID:     "user-uid-1",
			setupMock: func(m *MockService) {
				m.On("Extend", mock.Anything, "user-uid-1", "CHJ-AAAA1111", 2).
					Return(nil, fmt.Errorf("rental is overdue: %w", apperrors.ErrConflict))
			},
			expectedStatus: http.StatusConflict,
			expectedInBody: `"status":"Error"`,
		},
		{
			name:           "часы вне диапазона",
			requestBody:    models.ExtendRentalRequest{ExtraHours: 25},
			userUID:        "user-uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedInBody: `field ExtraHours is above the allowed maximum`,
		},
		{
			name:           "отсутствует авторизация",
			requestBody:    models.ExtendRentalRequest{ExtraHours: 2},
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

			req := httptest.NewRequest(http.MethodPost, "/api/v1/rentals/CHJ-AAAA1111/extend", bytes.NewReader(body))

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("code", "CHJ-AAAA1111")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.userUID != "" {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.userUID)
			}
			req = req.WithContext(ctx)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedInBody)
			mockService.AssertExpectations(t)
		})
	}
}
