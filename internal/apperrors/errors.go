// Package apperrors содержит доменные ошибки ядра аренды.
// Обработчики HTTP сопоставляют их с кодами ответов, сервисный слой
// оборачивает их через fmt.Errorf("%s: %w", op, err).
package apperrors

import "errors"

var (
	// ErrNotFound неизвестное устройство, станция, аренда или пользователь.
	ErrNotFound = errors.New("not found")
	// ErrConflict устройство занято, станция не совпадает, у пользователя
	// уже есть незавершённая аренда или аккаунт не активен.
	ErrConflict = errors.New("conflict")
	// ErrValidation параметры запроса вне допустимых границ.
	ErrValidation = errors.New("validation error")
	// ErrExpiredSession QR-сессия истекла или не найдена.
	ErrExpiredSession = errors.New("session expired")
)
