// Package storage определяет контракты хранилища для ядра аренды.
// Мутации жизненного цикла выполняются только внутри атомарной единицы
// работы (WithTx): либо применяются все изменения, либо ни одно.
package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/askchiwa/chajipoa-core/internal/models"
)

// TxRepository операции, доступные внутри открытой транзакции.
// Реализация обязана держать блокировки строк устройства, станции и
// пользователя до конца транзакции, чтобы конкурирующие переходы
// сериализовались: из двух одновременных стартов на одно устройство
// ровно один получает успех.
type TxRepository interface {
	// GetUserByUIDForUpdate читает и блокирует строку пользователя.
	GetUserByUIDForUpdate(ctx context.Context, uid string) (*models.User, error)
	// GetActiveRentalForUpdate читает и блокирует активную аренду пользователя.
	GetActiveRentalForUpdate(ctx context.Context, userID int64) (*models.Rental, error)
	// AcquireDevice переводит доступное устройство станции в rented
	// и уменьшает количество свободных слотов.
	AcquireDevice(ctx context.Context, deviceCode string, stationID int64) (*models.Device, error)
	// ReleaseDevice возвращает арендованное устройство на станцию
	// и начисляет ему заработок.
	ReleaseDevice(ctx context.Context, deviceID, returnStationID int64, earnings decimal.Decimal) (*models.Device, error)
	// MarkDeviceLost выводит устройство из оборота без возврата слота.
	MarkDeviceLost(ctx context.Context, deviceID int64) (*models.Device, error)
	// CreateRental вставляет новую аренду и возвращает её ID.
	CreateRental(ctx context.Context, rental *models.Rental) (int64, error)
	// UpdateRentalOnExtend фиксирует продление: окно и накопленные суммы.
	UpdateRentalOnExtend(ctx context.Context, rental *models.Rental) error
	// CompleteRental переводит аренду в completed с финальными суммами.
	CompleteRental(ctx context.Context, rental *models.Rental) error
	// MarkRentalLost переводит аренду в lost.
	MarkRentalLost(ctx context.Context, rental *models.Rental) error
	// CreditUserOnStart увеличивает депозитный баланс и счётчик аренд.
	CreditUserOnStart(ctx context.Context, userID int64, deposit decimal.Decimal) error
	// SettleUserOnEnd списывает депозит, возвращает его часть и
	// добавляет потраченную сумму.
	SettleUserOnEnd(ctx context.Context, userID int64, deposit, depositReturn, spent decimal.Decimal) error
}

// Store хранилище ядра: атомарная единица работы плюс чтения без мутаций.
type Store interface {
	// WithTx выполняет fn в одной транзакции; ошибка fn откатывает всё.
	WithTx(ctx context.Context, fn func(tx TxRepository) error) error
	// GetActiveRentalByUserUID возвращает незавершённую аренду пользователя.
	GetActiveRentalByUserUID(ctx context.Context, uid string) (*models.Rental, error)
	// FindOverdueRentals возвращает активные аренды с истёкшим окном.
	FindOverdueRentals(ctx context.Context, now time.Time) ([]*models.OverdueRental, error)
}
