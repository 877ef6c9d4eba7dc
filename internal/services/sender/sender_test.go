package sender

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askchiwa/chajipoa-core/internal/models"
)

type fakeTransport struct {
	phones []string
	texts  []string
	err    error
}

func (f *fakeTransport) Send(_ context.Context, phone, text string) error {
	f.phones = append(f.phones, phone)
	f.texts = append(f.texts, text)
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func marshalEvent(t *testing.T, event models.RentalEvent) []byte {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return body
}

func TestHandleRentalEvent_Overdue(t *testing.T) {
	transport := &fakeTransport{}
	svc := New(transport, testLogger())

	body := marshalEvent(t, models.RentalEvent{
		Type:            models.EventRentalOverdue,
		RentalCode:      "CHJ-AAAA1111",
		PhoneNumber:     "+255712345678",
		DeviceCode:      "PB-0007",
		ExpectedEndTime: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
	})

	require.NoError(t, svc.HandleRentalEvent(body))
	require.Len(t, transport.phones, 1)
	assert.Equal(t, "+255712345678", transport.phones[0])
	assert.Contains(t, transport.texts[0], "CHJ-AAAA1111")
	assert.Contains(t, transport.texts[0], "overdue")
}

func TestHandleRentalEvent_Completed(t *testing.T) {
	transport := &fakeTransport{}
	svc := New(transport, testLogger())

	body := marshalEvent(t, models.RentalEvent{
		Type:          models.EventRentalCompleted,
		RentalCode:    "CHJ-AAAA1111",
		PhoneNumber:   "+255712345678",
		TotalAmount:   "2596.00",
		LateFee:       "500.00",
		DepositReturn: "1904.00",
	})

	require.NoError(t, svc.HandleRentalEvent(body))
	require.Len(t, transport.texts, 1)
	assert.Contains(t, transport.texts[0], "2596.00")
	assert.Contains(t, transport.texts[0], "1904.00")
}

func TestHandleRentalEvent_NoPhoneAcked(t *testing.T) {
	transport := &fakeTransport{}
	svc := New(transport, testLogger())

	body := marshalEvent(t, models.RentalEvent{
		Type:       models.EventRentalStarted,
		RentalCode: "CHJ-AAAA1111",
	})

	// Без номера сообщение подтверждается, переотправка не нужна.
	require.NoError(t, svc.HandleRentalEvent(body))
	assert.Empty(t, transport.phones)
}

func TestHandleRentalEvent_UnknownTypeAcked(t *testing.T) {
	transport := &fakeTransport{}
	svc := New(transport, testLogger())

	body := marshalEvent(t, models.RentalEvent{
		Type:        "rental.unknown",
		PhoneNumber: "+255712345678",
	})

	require.NoError(t, svc.HandleRentalEvent(body))
	assert.Empty(t, transport.phones)
}

func TestHandleRentalEvent_TransportError(t *testing.T) {
	transport := &fakeTransport{err: errors.New("gateway timeout")}
	svc := New(transport, testLogger())

	body := marshalEvent(t, models.RentalEvent{
		Type:        models.EventRentalOverdue,
		RentalCode:  "CHJ-AAAA1111",
		PhoneNumber: "+255712345678",
	})

	require.Error(t, svc.HandleRentalEvent(body))
}

func TestHandleRentalEvent_BadJSON(t *testing.T) {
	svc := New(&fakeTransport{}, testLogger())
	require.Error(t, svc.HandleRentalEvent([]byte("{not json")))
}
