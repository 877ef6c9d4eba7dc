// Package sender доставляет SMS-уведомления по событиям аренды из
// очереди. Сообщение без номера телефона подтверждается без отправки,
// чтобы не зациклить переотправку.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/askchiwa/chajipoa-core/internal/lib/sl"
	"github.com/askchiwa/chajipoa-core/internal/models"
)

// Transport доставка одного сообщения на номер.
type Transport interface {
	Send(ctx context.Context, phone, text string) error
}

// Service обработчик событий аренды из очереди уведомлений.
type Service struct {
	transport Transport
	log       *slog.Logger
}

// New создает новый Service.
func New(transport Transport, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// HandleRentalEvent разбирает тело сообщения и отправляет SMS.
func (s *Service) HandleRentalEvent(body []byte) error {
	var event models.RentalEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal rental event", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	text, ok := composeText(event)
	if !ok {
		s.log.Warn("unknown rental event type", slog.String("type", event.Type))
		return nil
	}
	if event.PhoneNumber == "" {
		s.log.Warn("rental event without phone number",
			slog.String("rental_code", event.RentalCode))
		return nil
	}

	if err := s.transport.Send(context.Background(), event.PhoneNumber, text); err != nil {
		s.log.Error("failed to send sms",
			slog.String("rental_code", event.RentalCode), sl.Err(err))
		return err
	}
	return nil
}

func composeText(event models.RentalEvent) (string, bool) {
	switch event.Type {
	case models.EventRentalStarted:
		return fmt.Sprintf("Chajipoa: rental %s started with powerbank %s. Return it by %s to avoid late fees.",
			event.RentalCode, event.DeviceCode, event.ExpectedEndTime.Format("15:04 Jan 2")), true
	case models.EventRentalExtended:
		return fmt.Sprintf("Chajipoa: rental %s extended. New return time %s, current total %s TZS.",
			event.RentalCode, event.ExpectedEndTime.Format("15:04 Jan 2"), event.TotalAmount), true
	case models.EventRentalCompleted:
		return fmt.Sprintf("Chajipoa: rental %s completed. Total %s TZS, late fee %s TZS, deposit returned %s TZS. Asante!",
			event.RentalCode, event.TotalAmount, event.LateFee, event.DepositReturn), true
	case models.EventRentalLost:
		return fmt.Sprintf("Chajipoa: powerbank %s from rental %s was reported lost. Your deposit has been withheld.",
			event.DeviceCode, event.RentalCode), true
	case models.EventRentalOverdue:
		return fmt.Sprintf("Chajipoa: rental %s is overdue since %s. Please return powerbank %s, late fees apply.",
			event.RentalCode, event.ExpectedEndTime.Format("15:04 Jan 2"), event.DeviceCode), true
	}
	return "", false
}
