// Package repository реализует хранилище ядра аренды на PostgreSQL:
// инвентарную книгу устройств и станций, аренды и депозитные операции
// пользователей. Все мутации выполняются через WithTx под блокировками
// строк SELECT ... FOR UPDATE.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/askchiwa/chajipoa-core/internal/storage"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Tx транзакционный репозиторий; существует только внутри WithTx.
type Tx struct {
	tx *sql.Tx
}

// WithTx открывает транзакцию, выполняет fn и коммитит её; любая
// ошибка fn откатывает все изменения. Частичное применение перехода
// снаружи не наблюдается.
func (s *Storage) WithTx(ctx context.Context, fn func(tx storage.TxRepository) error) error {
	const op = "storage.WithTx"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := fn(&Tx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%s: rollback after %w: %v", op, err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'rentals'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table rentals missing or query error: %w", err)
	}
	return nil
}
