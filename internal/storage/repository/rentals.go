package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/askchiwa/chajipoa-core/internal/apperrors"
	"github.com/askchiwa/chajipoa-core/internal/models"
)

const rentalColumns = `id, rental_code, user_id, device_id, station_from_id,
	station_to_id, rental_status, start_time, expected_end_time, end_time,
	extended_hours, base_amount, tax_amount, late_fee, total_amount,
	deposit_amount, deposit_returned, deposit_return_amount, notes,
	created_at, updated_at`

// CreateRental вставляет новую аренду и возвращает её ID.
func (t *Tx) CreateRental(ctx context.Context, rental *models.Rental) (int64, error) {
	const op = "storage.CreateRental"

	query := `INSERT INTO rentals (rental_code, user_id, device_id, station_from_id,
		      rental_status, start_time, expected_end_time, extended_hours,
		      base_amount, tax_amount, late_fee, total_amount,
		      deposit_amount, deposit_returned, deposit_return_amount, notes)
		  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		  RETURNING id`
	var newID int64
	err := t.tx.QueryRowContext(ctx, query,
		rental.RentalCode, rental.UserID, rental.DeviceID, rental.StationFromID,
		rental.Status, rental.StartTime, rental.ExpectedEndTime, rental.ExtendedHours,
		rental.BaseAmount, rental.TaxAmount, rental.LateFee, rental.TotalAmount,
		rental.DepositAmount, rental.DepositReturned, rental.DepositReturnAmount,
		rental.Notes).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetActiveRentalForUpdate читает и блокирует активную аренду пользователя.
func (t *Tx) GetActiveRentalForUpdate(ctx context.Context, userID int64) (*models.Rental, error) {
	const op = "storage.GetActiveRentalForUpdate"

	row := t.tx.QueryRowContext(ctx,
		`SELECT `+rentalColumns+`
		 FROM rentals
		 WHERE user_id = $1 AND rental_status = $2
		 FOR UPDATE`, userID, models.RentalStatusActive)

	rental, err := scanRental(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: active rental for user %d: %w", op, userID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rental, nil
}

// UpdateRentalOnExtend фиксирует продление: новое окно и накопленные суммы.
func (t *Tx) UpdateRentalOnExtend(ctx context.Context, rental *models.Rental) error {
	const op = "storage.UpdateRentalOnExtend"

	res, err := t.tx.ExecContext(ctx,
		`UPDATE rentals
		 SET expected_end_time = $1, extended_hours = $2,
		     base_amount = $3, tax_amount = $4, total_amount = $5,
		     updated_at = now()
		 WHERE id = $6 AND rental_status = $7`,
		rental.ExpectedEndTime, rental.ExtendedHours,
		rental.BaseAmount, rental.TaxAmount, rental.TotalAmount,
		rental.ID, models.RentalStatusActive)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("%s: rental %d is not active: %w", op, rental.ID, apperrors.ErrConflict)
	}
	return nil
}

// CompleteRental переводит аренду в completed с финальными суммами.
// Условие на статус делает операцию неидемпотентной намеренно:
// второе завершение той же аренды получает Conflict.
func (t *Tx) CompleteRental(ctx context.Context, rental *models.Rental) error {
	const op = "storage.CompleteRental"

	res, err := t.tx.ExecContext(ctx,
		`UPDATE rentals
		 SET rental_status = $1, station_to_id = $2, end_time = $3,
		     base_amount = $4, tax_amount = $5, late_fee = $6, total_amount = $7,
		     deposit_returned = TRUE, deposit_return_amount = $8,
		     updated_at = now()
		 WHERE id = $9 AND rental_status = $10`,
		models.RentalStatusCompleted, rental.StationToID, rental.EndTime,
		rental.BaseAmount, rental.TaxAmount, rental.LateFee, rental.TotalAmount,
		rental.DepositReturnAmount, rental.ID, models.RentalStatusActive)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("%s: rental %d is not active: %w", op, rental.ID, apperrors.ErrConflict)
	}
	return nil
}

// MarkRentalLost переводит аренду в lost, депозит не возвращается.
func (t *Tx) MarkRentalLost(ctx context.Context, rental *models.Rental) error {
	const op = "storage.MarkRentalLost"

	res, err := t.tx.ExecContext(ctx,
		`UPDATE rentals
		 SET rental_status = $1, end_time = $2, notes = $3,
		     deposit_returned = TRUE, deposit_return_amount = 0,
		     updated_at = now()
		 WHERE id = $4 AND rental_status = $5`,
		models.RentalStatusLost, rental.EndTime, rental.Notes,
		rental.ID, models.RentalStatusActive)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("%s: rental %d is not active: %w", op, rental.ID, apperrors.ErrConflict)
	}
	return nil
}

// GetActiveRentalByUserUID возвращает незавершённую аренду пользователя
// без блокировок и мутаций.
func (s *Storage) GetActiveRentalByUserUID(ctx context.Context, uid string) (*models.Rental, error) {
	const op = "storage.GetActiveRentalByUserUID"

	row := s.DB.QueryRowContext(ctx,
		`SELECT `+rentalColumns+`
		 FROM rentals
		 WHERE rental_status = $1
		   AND user_id = (SELECT id FROM users WHERE uid = $2)`,
		models.RentalStatusActive, uid)

	rental, err := scanRental(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rental, nil
}

// FindOverdueRentals возвращает активные аренды с истёкшим окном для
// напоминаний. Статус в базе не меняется: просрочка остаётся проекцией.
func (s *Storage) FindOverdueRentals(ctx context.Context, now time.Time) ([]*models.OverdueRental, error) {
	const op = "storage.FindOverdueRentals"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT r.rental_code, u.username, u.phone_number, d.code, r.expected_end_time
		 FROM rentals r
		 JOIN users u ON u.id = r.user_id
		 JOIN devices d ON d.id = r.device_id
		 WHERE r.rental_status = $1 AND r.expected_end_time < $2
		 ORDER BY r.expected_end_time`,
		models.RentalStatusActive, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.OverdueRental
	for rows.Next() {
		var item models.OverdueRental
		if err := rows.Scan(&item.RentalCode, &item.Username, &item.PhoneNumber,
			&item.DeviceCode, &item.ExpectedEndTime); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanRental(row rowScanner) (*models.Rental, error) {
	var rental models.Rental
	var stationTo sql.NullInt64
	var endTime sql.NullTime
	err := row.Scan(&rental.ID, &rental.RentalCode, &rental.UserID, &rental.DeviceID,
		&rental.StationFromID, &stationTo, &rental.Status, &rental.StartTime,
		&rental.ExpectedEndTime, &endTime, &rental.ExtendedHours,
		&rental.BaseAmount, &rental.TaxAmount, &rental.LateFee, &rental.TotalAmount,
		&rental.DepositAmount, &rental.DepositReturned, &rental.DepositReturnAmount,
		&rental.Notes, &rental.CreatedAt, &rental.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if stationTo.Valid {
		rental.StationToID = &stationTo.Int64
	}
	if endTime.Valid {
		rental.EndTime = &endTime.Time
	}
	return &rental, nil
}
