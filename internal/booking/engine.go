// Package booking implements the admission and lifecycle engine for parking
// reservations: deciding whether a window may be booked on a space, pricing
// it, and keeping booking status, payment status and space status consistent
// as a booking moves through its lifecycle.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "parkhub/internal/errors"
	"parkhub/internal/logger"
	"parkhub/internal/metrics"
	"parkhub/internal/models"

	"github.com/google/uuid"
)

// Actor is the verified identity on whose behalf an operation runs. The
// engine trusts it; credential validation happens at the HTTP boundary.
type Actor struct {
	UserID string
	Role   models.Role
}

// ConflictError carries the conflicting booking's window for diagnostics.
// errors.Is(err, apperrors.ErrConflict) holds for it.
type ConflictError struct {
	Window models.BookingWindow
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("booking window conflict with %s [%s, %s)",
		e.Window.BookingID,
		e.Window.StartTime.Format(time.RFC3339),
		e.Window.EndTime.Format(time.RFC3339))
}

func (e *ConflictError) Unwrap() error { return apperrors.ErrConflict }

// SpaceDirectory is the read-only lookup of space attributes by id.
// Implementations return (nil, nil) when the space does not exist.
type SpaceDirectory interface {
	GetSpace(ctx context.Context, id string) (*models.ParkingSpace, error)
}

// Store is the durable booking store. CreateWithReservation and Transition
// must apply their booking and space writes as one atomic unit; two
// concurrent CreateWithReservation calls for overlapping windows on the same
// space must not both succeed - the loser observes a conflict.
type Store interface {
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListLive(ctx context.Context, spaceID string) ([]models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	CreateWithReservation(ctx context.Context, b *models.Booking) error
	// Transition persists the booking's current status, payment status and
	// cancellation timestamp and moves the space to spaceStatus, unless the
	// space is in maintenance, in which case the space is left untouched and
	// maintenanceHeld is true.
	Transition(ctx context.Context, b *models.Booking, spaceStatus models.SpaceStatus) (maintenanceHeld bool, err error)
	// UpdatePayment loads the booking under an exclusive lock, invokes decide
	// with its current state, and persists the returned statuses in the same
	// atomic unit. Concurrent calls for the same booking serialize behind the
	// lock, so the second caller's decide observes the first one's write.
	UpdatePayment(ctx context.Context, id string, decide func(b *models.Booking) (models.PaymentStatus, models.BookingStatus, error)) error
	SetVehicle(ctx context.Context, id string, vehicleNumber *string) error
}

// ChargeResult is the payment processor's verdict on a charge attempt.
type ChargeResult struct {
	Approved  bool
	Reference string
	Reason    string
}

// PaymentProcessor reports success or failure for a charge attempt.
type PaymentProcessor interface {
	Charge(ctx context.Context, bookingID string, amountCents int64, method string) (*ChargeResult, error)
}

// NotificationSink receives fire-and-forget user-facing messages on status
// changes. Publish failures are logged, never surfaced to the caller.
type NotificationSink interface {
	Publish(subject string, data interface{}) error
}

// Engine validates booking requests against existing bookings and space
// state, computes charges, and transitions booking, payment and space status
// together. It is stateless between requests; the store is the only shared
// state.
type Engine struct {
	spaces       SpaceDirectory
	store        Store
	payments     PaymentProcessor
	sink         NotificationSink
	qr           *QRSigner
	storeTimeout time.Duration
	now          func() time.Time
}

func NewEngine(spaces SpaceDirectory, store Store, payments PaymentProcessor, sink NotificationSink, qr *QRSigner, storeTimeout time.Duration) *Engine {
	return &Engine{
		spaces:       spaces,
		store:        store,
		payments:     payments,
		sink:         sink,
		qr:           qr,
		storeTimeout: storeTimeout,
		now:          time.Now,
	}
}

// storeCtx bounds a store call so it cannot hang indefinitely.
func (e *Engine) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.storeTimeout)
}

func mapStoreErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ErrStoreTimeout
	}
	return err
}

// CheckAvailability reports whether the half-open window [start, end) can be
// booked on the space, listing the conflicting windows when it cannot.
func (e *Engine) CheckAvailability(ctx context.Context, spaceID string, start, end time.Time) (*models.AvailabilityResponse, error) {
	if !start.Before(end) {
		return nil, apperrors.ErrInvalidWindow
	}

	space, err := e.getSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if space.Status == models.SpaceMaintenance {
		return nil, apperrors.ErrSpaceUnavailable
	}

	conflicts, err := e.findConflicts(ctx, spaceID, start, end)
	if err != nil {
		return nil, err
	}

	return &models.AvailabilityResponse{
		SpaceID:   spaceID,
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
	}, nil
}

// CreateBooking admits a window on a space and persists the booking together
// with the space's move to reserved as one atomic unit. Exactly one of two
// concurrent overlapping requests succeeds; the other observes a conflict.
func (e *Engine) CreateBooking(ctx context.Context, actor Actor, spaceID string, start, end time.Time, vehicleNumber *string) (*models.Booking, error) {
	if !start.Before(end) {
		return nil, apperrors.ErrInvalidWindow
	}

	space, err := e.getSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if space.Status == models.SpaceMaintenance {
		return nil, apperrors.ErrSpaceUnavailable
	}

	// Best-effort pre-check for a friendly error; the store transaction is
	// the actual arbiter under concurrency.
	conflicts, err := e.findConflicts(ctx, spaceID, start, end)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		metrics.IncBookingConflict()
		return nil, &ConflictError{Window: conflicts[0]}
	}

	id := uuid.New().String()
	now := e.now()
	booking := &models.Booking{
		ID:               id,
		UserID:           actor.UserID,
		SpaceID:          spaceID,
		StartTime:        start,
		EndTime:          end,
		TotalAmountCents: TotalAmount(start, end, space.HourlyRateCents),
		Status:           models.BookingPending,
		PaymentStatus:    models.PaymentPending,
		VehicleNumber:    vehicleNumber,
		QRCode:           e.qr.Token(id, spaceID, start, end),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	sctx, cancel := e.storeCtx(ctx)
	defer cancel()
	if err := e.store.CreateWithReservation(sctx, booking); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			metrics.IncBookingConflict()
		}
		return nil, mapStoreErr(err)
	}

	metrics.IncBookingCreated(string(space.Type))
	e.publish(ctx, models.EventBookingCreated, models.BookingCreatedEvent{
		BookingID:   booking.ID,
		SpaceID:     spaceID,
		UserID:      actor.UserID,
		StartTime:   start,
		EndTime:     end,
		AmountCents: booking.TotalAmountCents,
		Timestamp:   now,
	})

	return booking, nil
}

// RecordPayment charges the booking's total through the payment processor.
// On success booking moves to confirmed/paid; on failure the payment status
// becomes failed and the booking (and its space reservation) stay as they
// are until explicitly cancelled.
func (e *Engine) RecordPayment(ctx context.Context, bookingID string, amountCents int64, method string) (*models.PaymentOutcomeResponse, error) {
	var outcome *models.PaymentOutcomeResponse
	var result *ChargeResult

	sctx, cancel := e.storeCtx(ctx)
	defer cancel()
	err := e.store.UpdatePayment(sctx, bookingID, func(b *models.Booking) (models.PaymentStatus, models.BookingStatus, error) {
		if b.PaymentStatus == models.PaymentPaid {
			return "", "", apperrors.ErrAlreadyPaid
		}
		if b.Status != models.BookingPending && b.Status != models.BookingConfirmed {
			return "", "", apperrors.ErrIllegalTransition
		}
		if amountCents != b.TotalAmountCents {
			return "", "", apperrors.ErrAmountMismatch
		}

		// The gateway is called with the booking locked, so a concurrent
		// attempt waits here and then sees paid instead of charging again.
		var chargeErr error
		result, chargeErr = e.payments.Charge(ctx, bookingID, amountCents, method)
		if chargeErr != nil {
			return "", "", fmt.Errorf("failed to charge booking: %w", chargeErr)
		}

		outcome = &models.PaymentOutcomeResponse{
			BookingID:   bookingID,
			AmountCents: amountCents,
			Method:      method,
			Reference:   result.Reference,
			Reason:      result.Reason,
		}
		if result.Approved {
			outcome.PaymentStatus = models.PaymentPaid
			outcome.BookingStatus = models.BookingConfirmed
		} else {
			outcome.PaymentStatus = models.PaymentFailed
			outcome.BookingStatus = b.Status
		}
		return outcome.PaymentStatus, outcome.BookingStatus, nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	if result.Approved {
		metrics.IncPaymentOutcome("paid")
		e.publish(ctx, models.EventPaymentCompleted, models.PaymentCompletedEvent{
			BookingID:   bookingID,
			AmountCents: amountCents,
			Method:      method,
			Reference:   result.Reference,
			Timestamp:   e.now(),
		})
	} else {
		metrics.IncPaymentOutcome("failed")
		e.publish(ctx, models.EventPaymentFailed, models.PaymentFailedEvent{
			BookingID:   bookingID,
			AmountCents: amountCents,
			Method:      method,
			Reason:      result.Reason,
			Timestamp:   e.now(),
		})
	}

	return outcome, nil
}

// UpdateStatus applies a manual lifecycle transition and moves the space
// status in lockstep. A space in maintenance is never moved; the transition
// still commits and the returned booking carries MaintenanceHeld so callers
// can tell the space kept its override.
func (e *Engine) UpdateStatus(ctx context.Context, actor Actor, bookingID string, newStatus models.BookingStatus) (*models.Booking, error) {
	booking, err := e.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := e.authorize(actor, booking); err != nil {
		return nil, err
	}

	if !CanTransition(booking.Status, newStatus) {
		return nil, apperrors.ErrIllegalTransition
	}

	from := booking.Status
	booking.Status = newStatus
	booking.UpdatedAt = e.now()
	if newStatus == models.BookingCancelled {
		now := e.now()
		booking.CancelledAt = &now
		if booking.PaymentStatus == models.PaymentPaid {
			booking.PaymentStatus = models.PaymentRefunded
		}
	}

	target := spaceStatusFor(newStatus)
	sctx, cancel := e.storeCtx(ctx)
	held, err := e.store.Transition(sctx, booking, target)
	cancel()
	if err != nil {
		return nil, mapStoreErr(err)
	}
	booking.MaintenanceHeld = held
	if held {
		logger.WithContext(ctx).Warn("Space in maintenance, status not changed by booking transition",
			"space_id", booking.SpaceID,
			"booking_id", booking.ID,
			"wanted_status", target)
	}

	if newStatus == models.BookingCancelled {
		metrics.IncBookingCancelled()
		e.publish(ctx, models.EventBookingCancelled, models.BookingCancelledEvent{
			BookingID: booking.ID,
			SpaceID:   booking.SpaceID,
			UserID:    booking.UserID,
			Reason:    "cancelled by " + string(actor.Role),
			Timestamp: e.now(),
		})
	} else {
		e.publish(ctx, models.EventBookingStatus, models.BookingStatusEvent{
			BookingID:   booking.ID,
			SpaceID:     booking.SpaceID,
			UserID:      booking.UserID,
			From:        from,
			To:          newStatus,
			SpaceStatus: target,
			Timestamp:   e.now(),
		})
	}

	return booking, nil
}

// CancelBooking cancels a booking. Allowed only from pending and confirmed;
// active, completed and cancelled bookings are terminal for cancellation and
// keep their space status untouched.
func (e *Engine) CancelBooking(ctx context.Context, actor Actor, bookingID string) error {
	booking, err := e.getBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if err := e.authorize(actor, booking); err != nil {
		return err
	}

	if !CanCancel(booking.Status) {
		return apperrors.ErrNotCancellable
	}

	_, err = e.UpdateStatus(ctx, actor, bookingID, models.BookingCancelled)
	return err
}

// ListForUser returns the actor's own bookings, newest first.
func (e *Engine) ListForUser(ctx context.Context, actor Actor) ([]models.Booking, error) {
	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	bookings, err := e.store.ListByUser(sctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", mapStoreErr(err))
	}
	return bookings, nil
}

// SetVehicle updates the optional vehicle number on a booking.
func (e *Engine) SetVehicle(ctx context.Context, actor Actor, bookingID string, vehicleNumber *string) (*models.Booking, error) {
	booking, err := e.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := e.authorize(actor, booking); err != nil {
		return nil, err
	}

	sctx, cancel := e.storeCtx(ctx)
	err = e.store.SetVehicle(sctx, bookingID, vehicleNumber)
	cancel()
	if err != nil {
		return nil, mapStoreErr(err)
	}

	booking.VehicleNumber = vehicleNumber
	return booking, nil
}

// VerifyQR re-verifies a scanned token against a booking without trusting
// the caller-supplied fields beyond the booking id.
func (e *Engine) VerifyQR(ctx context.Context, bookingID, token string) (bool, error) {
	booking, err := e.getBooking(ctx, bookingID)
	if err != nil {
		return false, err
	}
	return e.qr.Verify(token, booking.ID, booking.SpaceID, booking.StartTime, booking.EndTime), nil
}

func (e *Engine) authorize(actor Actor, booking *models.Booking) error {
	if actor.Role.IsStaff() {
		return nil
	}
	if actor.UserID != booking.UserID {
		return apperrors.ErrForbidden
	}
	return nil
}

func (e *Engine) getSpace(ctx context.Context, spaceID string) (*models.ParkingSpace, error) {
	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	space, err := e.spaces.GetSpace(sctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get space: %w", mapStoreErr(err))
	}
	if space == nil {
		return nil, apperrors.ErrSpaceNotFound
	}
	return space, nil
}

func (e *Engine) getBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	booking, err := e.store.GetBooking(sctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", mapStoreErr(err))
	}
	if booking == nil {
		return nil, apperrors.ErrBookingNotFound
	}
	return booking, nil
}

func (e *Engine) findConflicts(ctx context.Context, spaceID string, start, end time.Time) ([]models.BookingWindow, error) {
	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	live, err := e.store.ListLive(sctx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", mapStoreErr(err))
	}

	var conflicts []models.BookingWindow
	for _, b := range live {
		if Overlaps(b.StartTime, b.EndTime, start, end) {
			conflicts = append(conflicts, models.BookingWindow{
				BookingID: b.ID,
				StartTime: b.StartTime,
				EndTime:   b.EndTime,
			})
		}
	}
	return conflicts, nil
}

func (e *Engine) publish(ctx context.Context, subject string, data interface{}) {
	if e.sink == nil {
		return
	}
	if err := e.sink.Publish(subject, data); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"event_type", subject)
	}
}
