package models

import "time"

// RentalEvent сообщение о событии жизненного цикла аренды,
// публикуемое в очередь уведомлений после успешного коммита.
type RentalEvent struct {
	Type            string    `json:"type"`
	RentalCode      string    `json:"rental_code"`
	Username        string    `json:"username"`
	PhoneNumber     string    `json:"phone_number"`
	DeviceCode      string    `json:"device_code"`
	TotalAmount     string    `json:"total_amount,omitempty"`
	LateFee         string    `json:"late_fee,omitempty"`
	DepositReturn   string    `json:"deposit_return,omitempty"`
	ExpectedEndTime time.Time `json:"expected_end_time"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Типы событий аренды.
const (
	EventRentalStarted   = "rental.started"
	EventRentalExtended  = "rental.extended"
	EventRentalCompleted = "rental.completed"
	EventRentalLost      = "rental.lost"
	EventRentalOverdue   = "rental.overdue"
)
