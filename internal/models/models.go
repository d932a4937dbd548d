package models

import "time"

// ListSpacesFilter - фильтры для списка парковочных мест
type ListSpacesFilter struct {
	Floor         *int
	Section       *string
	Type          *string
	Status        *string
	AvailableOnly bool
}

// CreateSpaceRequest - модель для создания парковочного места
type CreateSpaceRequest struct {
	Number          string  `json:"number" binding:"required"`
	Floor           int     `json:"floor" binding:"required,gt=0"`
	Section         string  `json:"section" binding:"required"`
	Type            string  `json:"type" binding:"required"`
	HourlyRateCents int64   `json:"hourly_rate_cents" binding:"required,gt=0"`
	PosX            float64 `json:"pos_x"`
	PosY            float64 `json:"pos_y"`
}

// UpdateSpaceStatusRequest - модель для смены статуса места персоналом
type UpdateSpaceStatusRequest struct {
	SpaceID string `json:"space_id" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// AvailabilityResponse - ответ проверки доступности окна на месте
type AvailabilityResponse struct {
	SpaceID   string          `json:"space_id"`
	Available bool            `json:"available"`
	Conflicts []BookingWindow `json:"conflicts,omitempty"`
}

// BookingWindow - окно существующей брони, возвращается для диагностики
type BookingWindow struct {
	BookingID string    `json:"booking_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// CreateBookingRequest - модель для создания бронирования
type CreateBookingRequest struct {
	SpaceID       string    `json:"space_id" binding:"required"`
	StartTime     time.Time `json:"start_time" binding:"required"`
	EndTime       time.Time `json:"end_time" binding:"required"`
	VehicleNumber *string   `json:"vehicle_number,omitempty"`
}

// UpdateBookingRequest - модель для обновления бронирования
type UpdateBookingRequest struct {
	BookingID     string  `json:"booking_id" binding:"required"`
	Status        *string `json:"status,omitempty"`
	VehicleNumber *string `json:"vehicle_number,omitempty"`
}

// CancelBookingRequest - модель для отмены бронирования
type CancelBookingRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
}

// ProcessPaymentRequest - модель для проведения платежа по брони
type ProcessPaymentRequest struct {
	BookingID   string `json:"booking_id" binding:"required"`
	AmountCents int64  `json:"amount_cents" binding:"required"`
	Method      string `json:"method" binding:"required"`
}

// PaymentOutcomeResponse - результат платежа
type PaymentOutcomeResponse struct {
	BookingID     string        `json:"booking_id"`
	AmountCents   int64         `json:"amount_cents"`
	Method        string        `json:"method"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	BookingStatus BookingStatus `json:"booking_status"`
	Reference     string        `json:"reference,omitempty"`
	Reason        string        `json:"reason,omitempty"`
}
