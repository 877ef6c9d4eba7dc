package models

import "time"

// RentalResponse JSON-представление аренды в ответах API.
// Денежные суммы отдаются строками с двумя знаками после запятой.
type RentalResponse struct {
	RentalCode          string     `json:"rental_code"`
	Status              string     `json:"status"`
	DeviceID            int64      `json:"device_id"`
	StationFromID       int64      `json:"station_from_id"`
	StationToID         *int64     `json:"station_to_id,omitempty"`
	StartTime           time.Time  `json:"start_time"`
	ExpectedEndTime     time.Time  `json:"expected_end_time"`
	EndTime             *time.Time `json:"end_time,omitempty"`
	ExtendedHours       int        `json:"extended_hours"`
	BaseAmount          string     `json:"base_amount"`
	TaxAmount           string     `json:"tax_amount"`
	LateFee             string     `json:"late_fee"`
	TotalAmount         string     `json:"total_amount"`
	DepositAmount       string     `json:"deposit_amount"`
	DepositReturnAmount string     `json:"deposit_return_amount"`
	Notes               string     `json:"notes,omitempty"`
}

// NewRentalResponse собирает RentalResponse из доменной аренды.
func NewRentalResponse(r *Rental) RentalResponse {
	return RentalResponse{
		RentalCode:          r.RentalCode,
		Status:              string(r.Status),
		DeviceID:            r.DeviceID,
		StationFromID:       r.StationFromID,
		StationToID:         r.StationToID,
		StartTime:           r.StartTime,
		ExpectedEndTime:     r.ExpectedEndTime,
		EndTime:             r.EndTime,
		ExtendedHours:       r.ExtendedHours,
		BaseAmount:          r.BaseAmount.StringFixed(2),
		TaxAmount:           r.TaxAmount.StringFixed(2),
		LateFee:             r.LateFee.StringFixed(2),
		TotalAmount:         r.TotalAmount.StringFixed(2),
		DepositAmount:       r.DepositAmount.StringFixed(2),
		DepositReturnAmount: r.DepositReturnAmount.StringFixed(2),
		Notes:               r.Notes,
	}
}
