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

// GetUserByUIDForUpdate читает и блокирует строку пользователя.
// Пользователь блокируется первым, поэтому конкурирующие старты
// одного пользователя сериализуются на его строке.
func (t *Tx) GetUserByUIDForUpdate(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.GetUserByUIDForUpdate"

	row := t.tx.QueryRowContext(ctx,
		`SELECT id, uid, username, phone_number, account_status,
		        deposit_balance, total_rentals, total_spent, created_at
		 FROM users WHERE uid = $1 FOR UPDATE`, uid)

	var user models.User
	err := row.Scan(&user.ID, &user.UID, &user.Username, &user.PhoneNumber,
		&user.AccountStatus, &user.DepositBalance, &user.TotalRentals,
		&user.TotalSpent, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: user %s: %w", op, uid, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// CreditUserOnStart фиксирует взятый депозит и новую аренду пользователя.
func (t *Tx) CreditUserOnStart(ctx context.Context, userID int64, deposit decimal.Decimal) error {
	const op = "storage.CreditUserOnStart"

	res, err := t.tx.ExecContext(ctx,
		`UPDATE users
		 SET deposit_balance = deposit_balance + $1,
		     total_rentals = total_rentals + 1
		 WHERE id = $2`, deposit, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("%s: user %d: %w", op, userID, apperrors.ErrNotFound)
	}
	return nil
}

// SettleUserOnEnd списывает депозит, возвращает depositReturn и
// добавляет spent к потраченной сумме.
func (t *Tx) SettleUserOnEnd(ctx context.Context, userID int64, deposit, depositReturn, spent decimal.Decimal) error {
	const op = "storage.SettleUserOnEnd"

	res, err := t.tx.ExecContext(ctx,
		`UPDATE users
		 SET deposit_balance = deposit_balance - $1 + $2,
		     total_spent = total_spent + $3
		 WHERE id = $4`, deposit, depositReturn, spent, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("%s: user %d: %w", op, userID, apperrors.ErrNotFound)
	}
	return nil
}
