package booking

import (
	"time"

	"parkhub/internal/models"
)

// validTransitions defines the state machine for manual booking transitions.
// completed and cancelled are terminal.
var validTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:   {models.BookingConfirmed, models.BookingCancelled},
	models.BookingConfirmed: {models.BookingActive, models.BookingCancelled},
	models.BookingActive:    {models.BookingCompleted},
	models.BookingCompleted: {},
	models.BookingCancelled: {},
}

// CanTransition checks if a booking status transition is allowed.
func CanTransition(from, to models.BookingStatus) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible.
func IsTerminal(s models.BookingStatus) bool {
	allowed, ok := validTransitions[s]
	if !ok {
		return true
	}
	return len(allowed) == 0
}

// CanCancel reports whether a booking may still be cancelled. Cancellation is
// legal only from pending and confirmed.
func CanCancel(s models.BookingStatus) bool {
	return s == models.BookingPending || s == models.BookingConfirmed
}

// spaceStatusFor maps a booking status to the space status it implies.
func spaceStatusFor(s models.BookingStatus) models.SpaceStatus {
	switch s {
	case models.BookingPending, models.BookingConfirmed:
		return models.SpaceReserved
	case models.BookingActive:
		return models.SpaceOccupied
	default:
		return models.SpaceAvailable
	}
}

// Overlaps applies the half-open interval test: [s1,e1) and [s2,e2) conflict
// iff s1 < e2 && s2 < e1. A booking ending at 10:00 does not conflict with one
// starting at 10:00.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
