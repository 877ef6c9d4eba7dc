// Package qrsession управляет короткоживущими QR-сессиями старта и
// возврата аренды. Сессии живут в быстром хранилище с TTL, истекают
// пассивно и потребляются строго один раз.
package qrsession

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/askchiwa/chajipoa-core/internal/apperrors"
	"github.com/askchiwa/chajipoa-core/internal/models"
)

const keyPrefix = "qrsession:"

// Store описывает операции быстрого хранилища сессий.
type Store interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	GetDel(ctx context.Context, key string, result any) (bool, error)
	Invalidate(ctx context.Context, key string) error
}

// Manager выпускает и проверяет QR-сессии.
type Manager struct {
	store Store
	ttl   time.Duration
	log   *slog.Logger
}

// New создает новый Manager с заданным TTL сессий.
func New(store Store, ttl time.Duration, log *slog.Logger) *Manager {
	return &Manager{
		store: store,
		ttl:   ttl,
		log:   log,
	}
}

// Issue выпускает новую сессию с непредсказуемым идентификатором и TTL.
func (m *Manager) Issue(ctx context.Context, deviceID, stationID int64, userUID string, purpose models.QRPurpose) (*models.QRSession, error) {
	const op = "qrsession.Issue"

	now := time.Now().UTC()
	session := &models.QRSession{
		SessionID: uuid.NewString(),
		DeviceID:  deviceID,
		StationID: stationID,
		UserUID:   userUID,
		Purpose:   purpose,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.Set(ctx, keyPrefix+session.SessionID, session, m.ttl); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m.log.Info("issued qr session",
		slog.String("session_id", session.SessionID),
		slog.String("purpose", string(purpose)))
	return session, nil
}

// Validate проверяет сессию без потребления. Отсутствующая или
// истёкшая сессия всегда даёт ErrExpiredSession и никогда не
// продлевается молча; расхождение наблюдаемых идентификаторов — ErrConflict.
func (m *Manager) Validate(ctx context.Context, sessionID string, observedDeviceID, observedStationID int64) (*models.QRSession, error) {
	const op = "qrsession.Validate"

	var session models.QRSession
	found, err := m.store.Get(ctx, keyPrefix+sessionID, &session)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrExpiredSession)
	}
	return m.check(op, &session, observedDeviceID, observedStationID)
}

// Consume проверяет сессию и атомарно удаляет её: повторное
// использование того же идентификатора невозможно.
func (m *Manager) Consume(ctx context.Context, sessionID string, observedDeviceID, observedStationID int64) (*models.QRSession, error) {
	const op = "qrsession.Consume"

	var session models.QRSession
	found, err := m.store.GetDel(ctx, keyPrefix+sessionID, &session)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrExpiredSession)
	}
	return m.check(op, &session, observedDeviceID, observedStationID)
}

func (m *Manager) check(op string, session *models.QRSession, observedDeviceID, observedStationID int64) (*models.QRSession, error) {
	// TTL в хранилище уже отсекает истёкшие ключи, проверка ниже
	// закрывает зазор между выборкой и сравнением.
	if session.Expired(time.Now().UTC()) {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrExpiredSession)
	}
	if observedDeviceID != 0 && observedDeviceID != session.DeviceID {
		return nil, fmt.Errorf("%s: device mismatch: %w", op, apperrors.ErrConflict)
	}
	if observedStationID != 0 && observedStationID != session.StationID {
		return nil, fmt.Errorf("%s: station mismatch: %w", op, apperrors.ErrConflict)
	}
	return session, nil
}
