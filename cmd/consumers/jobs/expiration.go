package jobs

import (
	"context"
	"log/slog"
	"time"

	"parkhub/internal/metrics"
	"parkhub/internal/models"
)

// bookingStore is the slice of the booking repository the job needs.
type bookingStore interface {
	ListExpiredPending(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
	// ExpirePending cancels the booking only while it is still pending and
	// unpaid; expired=false means someone paid or transitioned it first.
	ExpirePending(ctx context.Context, id string, cancelledAt time.Time) (expired bool, maintenanceHeld bool, err error)
}

type eventPublisher interface {
	Publish(subject string, data interface{}) error
}

// BookingExpirationJob cancels unpaid bookings that sat in pending too long
// and releases their spaces.
type BookingExpirationJob struct {
	store      bookingStore
	publisher  eventPublisher
	expiration time.Duration
	ticker     *time.Ticker
	done       chan bool
}

// NewBookingExpirationJob creates a new booking expiration job
func NewBookingExpirationJob(store bookingStore, publisher eventPublisher, expiration time.Duration) *BookingExpirationJob {
	return &BookingExpirationJob{
		store:      store,
		publisher:  publisher,
		expiration: expiration,
		done:       make(chan bool),
	}
}

// Start begins the background job that checks for expired bookings every 30 seconds
func (j *BookingExpirationJob) Start(ctx context.Context) {
	slog.Info("Starting booking expiration job", "check_interval", "30s", "timeout", j.expiration)

	j.ticker = time.NewTicker(30 * time.Second)

	// Run initial check immediately
	go j.checkExpiredBookings(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.checkExpiredBookings(ctx)
			case <-j.done:
				slog.Info("Booking expiration job stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job
func (j *BookingExpirationJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

// checkExpiredBookings finds pending, unpaid bookings past the cutoff and expires them
func (j *BookingExpirationJob) checkExpiredBookings(ctx context.Context) {
	cutoff := time.Now().Add(-j.expiration)

	candidates, err := j.store.ListExpiredPending(ctx, cutoff)
	if err != nil {
		slog.Error("Failed to list expired bookings", "error", err)
		return
	}

	if len(candidates) == 0 {
		slog.Debug("No expired bookings found")
		return
	}

	slog.Info("Found expired bookings to process", "count", len(candidates))

	for i := range candidates {
		b := &candidates[i]
		expired, err := j.expireBooking(ctx, b)
		switch {
		case err != nil:
			slog.Error("Failed to expire booking",
				"error", err,
				"booking_id", b.ID,
				"space_id", b.SpaceID,
				"created_at", b.CreatedAt)
		case expired:
			slog.Info("Expired booking",
				"booking_id", b.ID,
				"space_id", b.SpaceID,
				"elapsed_time", time.Since(b.CreatedAt).String())
		}
	}
}

// expireBooking cancels a single booking and frees its space. Spaces under
// maintenance keep their status. The write is conditional on the booking
// still being pending and unpaid; a booking that got paid after the listing
// read is left alone.
func (j *BookingExpirationJob) expireBooking(ctx context.Context, b *models.Booking) (bool, error) {
	now := time.Now()

	expired, held, err := j.store.ExpirePending(ctx, b.ID, now)
	if err != nil {
		return false, err
	}
	if !expired {
		slog.Info("Booking no longer pending and unpaid, skipping expiry",
			"booking_id", b.ID, "space_id", b.SpaceID)
		return false, nil
	}
	if held {
		slog.Warn("Space under maintenance, status kept", "space_id", b.SpaceID, "booking_id", b.ID)
	}

	metrics.IncBookingExpired()

	event := models.BookingExpiredEvent{
		BookingID: b.ID,
		SpaceID:   b.SpaceID,
		UserID:    b.UserID,
		Reason:    "payment timeout exceeded",
		Timestamp: now,
	}

	if err := j.publisher.Publish(models.EventBookingExpired, event); err != nil {
		slog.Error("Failed to publish booking expired event",
			"error", err,
			"booking_id", b.ID)
		// Expiration already persisted, do not fail on notification
	}

	return true, nil
}
