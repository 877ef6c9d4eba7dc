// Package scheduler периодически находит активные аренды с истёкшим
// окном и публикует напоминания. Статус аренды в базе не меняется:
// просрочка остаётся проекцией на чтении.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/askchiwa/chajipoa-core/internal/lib/sl"
	"github.com/askchiwa/chajipoa-core/internal/models"
)

// OverdueRepository выборка просроченных аренд.
type OverdueRepository interface {
	FindOverdueRentals(ctx context.Context, now time.Time) ([]*models.OverdueRental, error)
}

// Publisher отправка событий в очередь уведомлений.
type Publisher interface {
	Publish(ctx context.Context, event models.RentalEvent) error
}

// Service планировщик напоминаний о просроченных арендах.
type Service struct {
	repo      OverdueRepository
	publisher Publisher
	interval  time.Duration
	log       *slog.Logger

	now func() time.Time
}

// New создает новый Service.
func New(repo OverdueRepository, publisher Publisher, interval time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		interval:  interval,
		log:       log,
		now:       time.Now,
	}
}

// Run запускает периодический обход просроченных аренд до отмены ctx.
func (s *Service) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Service) sweep(ctx context.Context) {
	now := s.now().UTC()
	s.log.Info("starting overdue rentals sweep")

	overdue, err := s.repo.FindOverdueRentals(ctx, now)
	if err != nil {
		s.log.Error("failed to find overdue rentals", sl.Err(err))
		return
	}
	if len(overdue) == 0 {
		s.log.Info("no overdue rentals found")
		return
	}
	s.log.Info("found overdue rentals", "count", len(overdue))

	for _, item := range overdue {
		event := models.RentalEvent{
			Type:            models.EventRentalOverdue,
			RentalCode:      item.RentalCode,
			Username:        item.Username,
			PhoneNumber:     item.PhoneNumber,
			DeviceCode:      item.DeviceCode,
			ExpectedEndTime: item.ExpectedEndTime,
			OccurredAt:      now,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.Error("failed to publish overdue event",
				slog.String("rental_code", item.RentalCode), sl.Err(err))
		}
	}
}
