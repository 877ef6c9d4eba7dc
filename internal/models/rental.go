package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RentalStatus статус аренды.
type RentalStatus string

// Статусы аренды. RentalStatusOverdue никогда не сохраняется в базу:
// это проекция active при now > ExpectedEndTime, вычисляемая на чтении.
const (
	RentalStatusActive    RentalStatus = "active"
	RentalStatusOverdue   RentalStatus = "overdue"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusLost      RentalStatus = "lost"
	RentalStatusCancelled RentalStatus = "cancelled"
)

// Rental представляет аренду устройства пользователем.
// ExtendedHours — суммарно оплаченные продлением часы; при завершении
// они вычитаются из фактического времени, чтобы не тарифицировать их повторно.
type Rental struct {
	ID                  int64
	RentalCode          string
	UserID              int64
	DeviceID            int64
	StationFromID       int64
	StationToID         *int64
	Status              RentalStatus
	StartTime           time.Time
	ExpectedEndTime     time.Time
	EndTime             *time.Time
	ExtendedHours       int
	BaseAmount          decimal.Decimal
	TaxAmount           decimal.Decimal
	LateFee             decimal.Decimal
	TotalAmount         decimal.Decimal
	DepositAmount       decimal.Decimal
	DepositReturned     bool
	DepositReturnAmount decimal.Decimal
	Notes               string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsTerminal сообщает, завершена ли аренда.
func (r *Rental) IsTerminal() bool {
	switch r.Status {
	case RentalStatusCompleted, RentalStatusLost, RentalStatusCancelled:
		return true
	}
	return false
}

// EffectiveStatus возвращает статус с учётом просрочки на момент now.
func (r *Rental) EffectiveStatus(now time.Time) RentalStatus {
	if r.Status == RentalStatusActive && now.After(r.ExpectedEndTime) {
		return RentalStatusOverdue
	}
	return r.Status
}

// RentalCharges агрегирует денежные поля аренды для расчёта возврата депозита.
type RentalCharges struct {
	BaseAmount          decimal.Decimal
	TaxAmount           decimal.Decimal
	LateFee             decimal.Decimal
	TotalAmount         decimal.Decimal
	DepositReturnAmount decimal.Decimal
}

// OverdueRental строка выборки просроченных аренд для напоминаний.
type OverdueRental struct {
	RentalCode      string
	Username        string
	PhoneNumber     string
	DeviceCode      string
	ExpectedEndTime time.Time
}
