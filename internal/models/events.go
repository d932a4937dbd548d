package models

import "time"

// NATS Event Types
const (
	EventBookingCreated     = "booking.created"
	EventBookingStatus      = "booking.status_changed"
	EventBookingCancelled   = "booking.cancelled"
	EventBookingExpired     = "booking.expired"
	EventPaymentCompleted   = "payment.completed"
	EventPaymentFailed      = "payment.failed"
	EventSpaceStatusChanged = "space.status_changed"
)

// BookingCreatedEvent represents a booking creation event
type BookingCreatedEvent struct {
	BookingID   string    `json:"booking_id"`
	SpaceID     string    `json:"space_id"`
	UserID      string    `json:"user_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	AmountCents int64     `json:"amount_cents"`
	Timestamp   time.Time `json:"timestamp"`
}

// BookingStatusEvent represents a booking lifecycle transition
type BookingStatusEvent struct {
	BookingID   string        `json:"booking_id"`
	SpaceID     string        `json:"space_id"`
	UserID      string        `json:"user_id"`
	From        BookingStatus `json:"from"`
	To          BookingStatus `json:"to"`
	SpaceStatus SpaceStatus   `json:"space_status"`
	Timestamp   time.Time     `json:"timestamp"`
}

// BookingCancelledEvent represents a booking cancellation event
type BookingCancelledEvent struct {
	BookingID string    `json:"booking_id"`
	SpaceID   string    `json:"space_id"`
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// BookingExpiredEvent represents an unpaid booking expired by the background job
type BookingExpiredEvent struct {
	BookingID string    `json:"booking_id"`
	SpaceID   string    `json:"space_id"`
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// PaymentCompletedEvent represents a successful payment event
type PaymentCompletedEvent struct {
	BookingID   string    `json:"booking_id"`
	AmountCents int64     `json:"amount_cents"`
	Method      string    `json:"method"`
	Reference   string    `json:"reference"`
	Timestamp   time.Time `json:"timestamp"`
}

// PaymentFailedEvent represents a failed payment event
type PaymentFailedEvent struct {
	BookingID   string    `json:"booking_id"`
	AmountCents int64     `json:"amount_cents"`
	Method      string    `json:"method"`
	Reason      string    `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
}

// SpaceStatusChangedEvent represents a staff-driven space status change
type SpaceStatusChangedEvent struct {
	SpaceID   string      `json:"space_id"`
	From      SpaceStatus `json:"from"`
	To        SpaceStatus `json:"to"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
}
