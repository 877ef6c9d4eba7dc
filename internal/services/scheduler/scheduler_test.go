package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askchiwa/chajipoa-core/internal/models"
)

type fakeRepo struct {
	overdue []*models.OverdueRental
	err     error
	gotNow  time.Time
}

func (f *fakeRepo) FindOverdueRentals(_ context.Context, now time.Time) ([]*models.OverdueRental, error) {
	f.gotNow = now
	return f.overdue, f.err
}

type fakePublisher struct {
	events []models.RentalEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, event models.RentalEvent) error {
	f.events = append(f.events, event)
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweep_PublishesOverdueEvents(t *testing.T) {
	expectedEnd := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	repo := &fakeRepo{overdue: []*models.OverdueRental{
		{RentalCode: "CHJ-AAAA1111", Username: "asha", PhoneNumber: "+255712345678",
			DeviceCode: "PB-0007", ExpectedEndTime: expectedEnd},
		{RentalCode: "CHJ-BBBB2222", Username: "juma", PhoneNumber: "+255713334455",
			DeviceCode: "PB-0019", ExpectedEndTime: expectedEnd.Add(time.Hour)},
	}}
	publisher := &fakePublisher{}

	svc := New(repo, publisher, time.Hour, testLogger())
	svc.now = func() time.Time { return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC) }

	svc.sweep(context.Background())

	require.Len(t, publisher.events, 2)
	assert.Equal(t, models.EventRentalOverdue, publisher.events[0].Type)
	assert.Equal(t, "CHJ-AAAA1111", publisher.events[0].RentalCode)
	assert.Equal(t, "+255712345678", publisher.events[0].PhoneNumber)
	assert.Equal(t, expectedEnd, publisher.events[0].ExpectedEndTime)
	assert.Equal(t, "CHJ-BBBB2222", publisher.events[1].RentalCode)
}

func TestSweep_NothingOverdue(t *testing.T) {
	repo := &fakeRepo{}
	publisher := &fakePublisher{}

	svc := New(repo, publisher, time.Hour, testLogger())
	svc.sweep(context.Background())

	assert.Empty(t, publisher.events)
}

func TestSweep_RepositoryError(t *testing.T) {
	repo := &fakeRepo{err: errors.New("connection refused")}
	publisher := &fakePublisher{}

	svc := New(repo, publisher, time.Hour, testLogger())
	svc.sweep(context.Background())

	assert.Empty(t, publisher.events)
}
