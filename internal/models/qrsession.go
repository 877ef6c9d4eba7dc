package models

import "time"

// QRPurpose назначение QR-сессии.
type QRPurpose string

// Назначения QR-сессий.
const (
	QRPurposeStart  QRPurpose = "start"
	QRPurposeReturn QRPurpose = "return"
)

// QRSession эфемерная сессия сканирования QR-кода. Живёт только в
// быстром хранилище с TTL и уничтожается по истечении или после
// одноразового использования.
type QRSession struct {
	SessionID string    `json:"session_id"`
	DeviceID  int64     `json:"device_id"`
	StationID int64     `json:"station_id"`
	UserUID   string    `json:"user_uid"`
	Purpose   QRPurpose `json:"purpose"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired сообщает, истекла ли сессия на момент now.
func (s *QRSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
