package models

import "fmt"

// Role identifies what an authenticated actor is allowed to do.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// IsStaff reports whether the role carries staff privileges.
func (r Role) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin
}

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingActive, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

func (s BookingStatus) String() string { return string(s) }

// ParseBookingStatus converts a string to a BookingStatus.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// PaymentStatus represents the payment state of a booking.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// SpaceStatus represents the state of a parking space.
type SpaceStatus string

const (
	SpaceAvailable   SpaceStatus = "available"
	SpaceOccupied    SpaceStatus = "occupied"
	SpaceReserved    SpaceStatus = "reserved"
	SpaceMaintenance SpaceStatus = "maintenance"
)

// IsValid returns true if the status is a recognized space status.
func (s SpaceStatus) IsValid() bool {
	switch s {
	case SpaceAvailable, SpaceOccupied, SpaceReserved, SpaceMaintenance:
		return true
	}
	return false
}

// SpaceType classifies a parking space.
type SpaceType string

const (
	SpaceRegular  SpaceType = "regular"
	SpaceCompact  SpaceType = "compact"
	SpaceDisabled SpaceType = "disabled"
	SpaceElectric SpaceType = "electric"
)

// IsValid returns true if the type is a recognized space type.
func (t SpaceType) IsValid() bool {
	switch t {
	case SpaceRegular, SpaceCompact, SpaceDisabled, SpaceElectric:
		return true
	}
	return false
}
