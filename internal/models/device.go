package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeviceStatus статус устройства в инвентаре.
type DeviceStatus string

// Возможные статусы устройства.
const (
	DeviceStatusAvailable   DeviceStatus = "available"
	DeviceStatusRented      DeviceStatus = "rented"
	DeviceStatusMaintenance DeviceStatus = "maintenance"
	DeviceStatusLost        DeviceStatus = "lost"
)

// Device представляет пауэрбанк. StationID заполнен только когда
// устройство стоит в слоте станции; во время аренды он nil.
type Device struct {
	ID            int64
	Code          string
	CurrentStatus DeviceStatus
	StationID     *int64
	BatteryLevel  int
	HealthScore   int
	RentalCount   int
	TotalEarnings decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Station представляет станцию с докинг-слотами.
// Инвариант: 0 <= AvailableSlots <= TotalSlots.
type Station struct {
	ID             int64
	Code           string
	Name           string
	Address        string
	TotalSlots     int
	AvailableSlots int
	IsOperational  bool
	CreatedAt      time.Time
}
