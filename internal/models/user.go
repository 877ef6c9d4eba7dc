// Package models содержит доменные структуры ядра аренды пауэрбанков:
// пользователи, устройства, станции, аренды и QR-сессии,
// а также DTO для приёма данных из JSON-запросов.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus статус аккаунта пользователя.
type AccountStatus string

// Возможные статусы аккаунта.
const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
	AccountStatusBlocked   AccountStatus = "blocked"
)

// User представляет пользователя сервиса.
// DepositBalance — текущий баланс депозитов (ledger), изменяется
// только внутри транзакции старта/завершения аренды.
type User struct {
	ID             int64
	UID            string
	Username       string
	PhoneNumber    string
	AccountStatus  AccountStatus
	DepositBalance decimal.Decimal
	TotalRentals   int
	TotalSpent     decimal.Decimal
	CreatedAt      time.Time
}

// CanRent сообщает, может ли пользователь начать новую аренду.
func (u *User) CanRent() bool {
	return u.AccountStatus == AccountStatusActive
}
