package models

import (
	"time"
)

// User represents a user in the system
type User struct {
	UserID       string    `json:"user_id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	Surname      string    `json:"surname" db:"surname"`
	Role         Role      `json:"role" db:"role"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	IsActive     bool      `json:"is_active" db:"is_active"`
}

// ParkingSpace represents a single parking space on the map.
// Status is driven by the booking lifecycle except for maintenance, which is
// set only by staff and is never overridden by booking transitions.
type ParkingSpace struct {
	ID              string      `json:"id" db:"id"`
	Number          string      `json:"number" db:"number"`
	Floor           int         `json:"floor" db:"floor"`
	Section         string      `json:"section" db:"section"`
	Type            SpaceType   `json:"type" db:"type"`
	Status          SpaceStatus `json:"status" db:"status"`
	HourlyRateCents int64       `json:"hourly_rate_cents" db:"hourly_rate_cents"`
	PosX            float64     `json:"pos_x" db:"pos_x"`
	PosY            float64     `json:"pos_y" db:"pos_y"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// Booking represents a reservation of one space for a half-open time window
// [StartTime, EndTime). TotalAmountCents is fixed at creation time as
// ceil(hours) * the space's hourly rate.
type Booking struct {
	ID               string        `json:"id" db:"id"`
	UserID           string        `json:"user_id" db:"user_id"`
	SpaceID          string        `json:"space_id" db:"space_id"`
	StartTime        time.Time     `json:"start_time" db:"start_time"`
	EndTime          time.Time     `json:"end_time" db:"end_time"`
	TotalAmountCents int64         `json:"total_amount_cents" db:"total_amount_cents"`
	Status           BookingStatus `json:"status" db:"status"`
	PaymentStatus    PaymentStatus `json:"payment_status" db:"payment_status"`
	VehicleNumber    *string       `json:"vehicle_number,omitempty" db:"vehicle_number"`
	QRCode           string        `json:"qr_code" db:"qr_code"`
	CancelledAt      *time.Time    `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`

	// MaintenanceHeld reports that the space kept its maintenance override
	// through this transition. Set on transition results only, never stored.
	MaintenanceHeld bool `json:"maintenance_held,omitempty" db:"-"`
}
