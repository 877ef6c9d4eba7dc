package models

// StartRentalRequest запрос на начало аренды.
type StartRentalRequest struct {
	DeviceCode  string `json:"device_code" validate:"required"`
	StationID   int64  `json:"station_id" validate:"required,gt=0"`
	QRSessionID string `json:"qr_session_id,omitempty"`
}

// ExtendRentalRequest запрос на продление аренды. Часы строго в [1, 24].
type ExtendRentalRequest struct {
	ExtraHours int `json:"extra_hours" validate:"required,gte=1,lte=24"`
}

// EndRentalRequest запрос на завершение аренды с возвратом устройства.
type EndRentalRequest struct {
	StationID   int64  `json:"station_id" validate:"required,gt=0"`
	QRSessionID string `json:"qr_session_id,omitempty"`
}

// ReportLostRequest запрос на отметку устройства как утерянного.
type ReportLostRequest struct {
	Notes string `json:"notes" validate:"required"`
}

// IssueQRRequest запрос на выпуск QR-сессии.
type IssueQRRequest struct {
	DeviceID  int64  `json:"device_id" validate:"required,gt=0"`
	StationID int64  `json:"station_id" validate:"required,gt=0"`
	Purpose   string `json:"purpose" validate:"required,oneof=start return"`
}

// ValidateQRRequest запрос на проверку QR-сессии. Наблюдаемые
// идентификаторы опциональны: ноль означает "не проверять".
type ValidateQRRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	DeviceID  int64  `json:"device_id,omitempty"`
	StationID int64  `json:"station_id,omitempty"`
}
