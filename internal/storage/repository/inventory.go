package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/askchiwa/chajipoa-core/internal/apperrors"
	"github.com/askchiwa/chajipoa-core/internal/models"
)

const deviceColumns = `id, code, current_status, station_id, battery_level,
	health_score, rental_count, total_earnings, created_at, updated_at`

// AcquireDevice блокирует строки устройства и станции, проверяет, что
// устройство доступно именно на этой станции, и атомарно переводит его
// в rented: станция теряет один свободный слот, счётчик аренд растёт.
// Повторный конкурирующий вызов по тому же коду упирается в блокировку
// и после её снятия видит статус rented, то есть получает Conflict.
func (t *Tx) AcquireDevice(ctx context.Context, deviceCode string, stationID int64) (*models.Device, error) {
	const op = "storage.AcquireDevice"

	device, err := t.lockDevice(ctx, `code = $1`, deviceCode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if device.CurrentStatus != models.DeviceStatusAvailable {
		return nil, fmt.Errorf("%s: device %s is %s: %w", op, deviceCode, device.CurrentStatus, apperrors.ErrConflict)
	}
	if device.StationID == nil || *device.StationID != stationID {
		return nil, fmt.Errorf("%s: device %s is not at station %d: %w", op, deviceCode, stationID, apperrors.ErrConflict)
	}

	station, err := t.lockStation(ctx, stationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !station.IsOperational {
		return nil, fmt.Errorf("%s: station %d is not operational: %w", op, stationID, apperrors.ErrConflict)
	}

	res, err := t.tx.ExecContext(ctx,
		`UPDATE stations SET available_slots = available_slots - 1
		 WHERE id = $1 AND available_slots > 0`, stationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, fmt.Errorf("%s: station %d has no available slots to take from: %w", op, stationID, apperrors.ErrConflict)
	}

	row := t.tx.QueryRowContext(ctx,
		`UPDATE devices
		 SET current_status = $1, station_id = NULL,
		     rental_count = rental_count + 1, updated_at = now()
		 WHERE id = $2
		 RETURNING `+deviceColumns,
		models.DeviceStatusRented, device.ID)
	updated, err := scanDevice(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// ReleaseDevice возвращает арендованное устройство в слот станции
// returnStationID (не обязательно исходной) и начисляет earnings.
func (t *Tx) ReleaseDevice(ctx context.Context, deviceID, returnStationID int64, earnings decimal.Decimal) (*models.Device, error) {
	const op = "storage.ReleaseDevice"

	device, err := t.lockDevice(ctx, `id = $1`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if device.CurrentStatus != models.DeviceStatusRented {
		return nil, fmt.Errorf("%s: device %d is %s, not rented: %w", op, deviceID, device.CurrentStatus, apperrors.ErrConflict)
	}

	station, err := t.lockStation(ctx, returnStationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !station.IsOperational {
		return nil, fmt.Errorf("%s: station %d is not operational: %w", op, returnStationID, apperrors.ErrConflict)
	}

	res, err := t.tx.ExecContext(ctx,
		`UPDATE stations SET available_slots = available_slots + 1
		 WHERE id = $1 AND available_slots < total_slots`, returnStationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, fmt.Errorf("%s: station %d has no free slots: %w", op, returnStationID, apperrors.ErrConflict)
	}

	row := t.tx.QueryRowContext(ctx,
		`UPDATE devices
		 SET current_status = $1, station_id = $2,
		     total_earnings = total_earnings + $3, updated_at = now()
		 WHERE id = $4
		 RETURNING `+deviceColumns,
		models.DeviceStatusAvailable, returnStationID, earnings, deviceID)
	updated, err := scanDevice(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// MarkDeviceLost выводит арендованное устройство из оборота навсегда.
// Слот станции не возвращается: устройство на станцию не приедет.
func (t *Tx) MarkDeviceLost(ctx context.Context, deviceID int64) (*models.Device, error) {
	const op = "storage.MarkDeviceLost"

	device, err := t.lockDevice(ctx, `id = $1`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if device.CurrentStatus != models.DeviceStatusRented {
		return nil, fmt.Errorf("%s: device %d is %s, not rented: %w", op, deviceID, device.CurrentStatus, apperrors.ErrConflict)
	}

	row := t.tx.QueryRowContext(ctx,
		`UPDATE devices
		 SET current_status = $1, station_id = NULL, updated_at = now()
		 WHERE id = $2
		 RETURNING `+deviceColumns,
		models.DeviceStatusLost, deviceID)
	updated, err := scanDevice(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

func (t *Tx) lockDevice(ctx context.Context, where string, arg any) (*models.Device, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE `+where+` FOR UPDATE`, arg)
	device, err := scanDevice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("device: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return device, nil
}

func (t *Tx) lockStation(ctx context.Context, stationID int64) (*models.Station, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT id, code, name, address, total_slots, available_slots, is_operational, created_at
		 FROM stations WHERE id = $1 FOR UPDATE`, stationID)

	var station models.Station
	err := row.Scan(&station.ID, &station.Code, &station.Name, &station.Address,
		&station.TotalSlots, &station.AvailableSlots, &station.IsOperational, &station.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("station %d: %w", stationID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &station, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (*models.Device, error) {
	var device models.Device
	var stationID sql.NullInt64
	err := row.Scan(&device.ID, &device.Code, &device.CurrentStatus, &stationID,
		&device.BatteryLevel, &device.HealthScore, &device.RentalCount,
		&device.TotalEarnings, &device.CreatedAt, &device.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if stationID.Valid {
		device.StationID = &stationID.Int64
	}
	return &device, nil
}
