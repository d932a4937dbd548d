// Package errors defines the outcome taxonomy shared by the booking engine,
// the repositories and the HTTP layer. All of these are recoverable: they are
// reported to the caller as distinct outcomes and never treated as fatal.
package errors

import "errors"

var (
	// ErrInvalidWindow indicates a requested time window with start >= end.
	ErrInvalidWindow = errors.New("invalid booking window")

	// ErrInvalidInput indicates a request field outside the accepted domain,
	// e.g. an unknown space type or status.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSpaceNotFound indicates the referenced parking space does not exist.
	ErrSpaceNotFound = errors.New("parking space not found")

	// ErrSpaceUnavailable indicates the space is blocked outside the booking
	// flow, e.g. placed in maintenance by staff.
	ErrSpaceUnavailable = errors.New("parking space unavailable")

	// ErrConflict indicates the requested window overlaps a live booking on
	// the same space. Callers may retry with backoff or a different window.
	ErrConflict = errors.New("booking window conflict")

	// ErrBookingNotFound indicates the referenced booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAmountMismatch indicates a payment amount different from the
	// booking's total.
	ErrAmountMismatch = errors.New("payment amount mismatch")

	// ErrAlreadyPaid indicates the booking has already been paid for.
	ErrAlreadyPaid = errors.New("booking already paid")

	// ErrIllegalTransition indicates a booking status transition outside the
	// lifecycle state machine.
	ErrIllegalTransition = errors.New("illegal booking status transition")

	// ErrNotCancellable indicates cancellation of a booking that is already
	// active, completed or cancelled.
	ErrNotCancellable = errors.New("booking is not cancellable")

	// ErrForbidden indicates the acting user may not operate on this booking.
	ErrForbidden = errors.New("operation is forbidden for user")

	// ErrUnauthorized indicates the request carried no verified identity.
	ErrUnauthorized = errors.New("user is not authorized")

	// ErrStoreTimeout indicates the durable store did not answer within the
	// configured deadline. Callers may retry with backoff.
	ErrStoreTimeout = errors.New("store operation timed out")
)
