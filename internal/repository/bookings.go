package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"parkhub/internal/database"
	apperrors "parkhub/internal/errors"
	"parkhub/internal/models"

	"github.com/lib/pq"
)

// exclusionViolation is the Postgres error code raised when an insert hits
// the bookings_no_overlap constraint.
const exclusionViolation = "23P01"

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, user_id, space_id, start_time, end_time, total_amount_cents,
	       status, payment_status, vehicle_number, qr_code, cancelled_at, created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.SpaceID,
		&b.StartTime,
		&b.EndTime,
		&b.TotalAmountCents,
		&b.Status,
		&b.PaymentStatus,
		&b.VehicleNumber,
		&b.QRCode,
		&b.CancelledAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BookingRepository) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return booking, err
}

// ListLive returns the bookings on a space that can still claim its window:
// status in {pending, confirmed, active}.
func (r *BookingRepository) ListLive(ctx context.Context, spaceID string) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE space_id = $1 AND status IN ('pending', 'confirmed', 'active')
		ORDER BY start_time`

	return r.queryBookings(ctx, query, spaceID)
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC`

	return r.queryBookings(ctx, query, userID)
}

// ListExpiredPending returns bookings stuck pending/pending since before the
// cutoff. Used by the background expiration job.
func (r *BookingRepository) ListExpiredPending(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'pending'
		  AND payment_status = 'pending'
		  AND created_at < $1
		ORDER BY created_at ASC`

	return r.queryBookings(ctx, query, cutoff)
}

func (r *BookingRepository) queryBookings(ctx context.Context, query string, args ...interface{}) ([]models.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}

	return bookings, rows.Err()
}

// CreateWithReservation inserts the booking and flips the space to reserved
// as one transaction. The space row is locked for the duration so a
// concurrent create on the same space serializes behind it, and the
// bookings_no_overlap exclusion constraint arbitrates at commit time; either
// way the losing writer observes apperrors.ErrConflict.
func (r *BookingRepository) CreateWithReservation(ctx context.Context, b *models.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var spaceStatus models.SpaceStatus
	lockQuery := `SELECT status FROM parking_spaces WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, lockQuery, b.SpaceID).Scan(&spaceStatus); err != nil {
		if err == sql.ErrNoRows {
			return apperrors.ErrSpaceNotFound
		}
		return err
	}

	if spaceStatus == models.SpaceMaintenance {
		return apperrors.ErrSpaceUnavailable
	}

	var conflictID string
	var conflictStart, conflictEnd time.Time
	conflictQuery := `
		SELECT id, start_time, end_time FROM bookings
		WHERE space_id = $1
		  AND status IN ('pending', 'confirmed', 'active')
		  AND start_time < $3 AND end_time > $2
		LIMIT 1`
	err = tx.QueryRowContext(ctx, conflictQuery, b.SpaceID, b.StartTime, b.EndTime).
		Scan(&conflictID, &conflictStart, &conflictEnd)
	if err == nil {
		return conflictError(conflictID, conflictStart, conflictEnd)
	}
	if err != sql.ErrNoRows {
		return err
	}

	insertQuery := `
		INSERT INTO bookings (id, user_id, space_id, start_time, end_time,
			total_amount_cents, status, payment_status, vehicle_number, qr_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`
	err = tx.QueryRowContext(ctx, insertQuery,
		b.ID,
		b.UserID,
		b.SpaceID,
		b.StartTime,
		b.EndTime,
		b.TotalAmountCents,
		b.Status,
		b.PaymentStatus,
		b.VehicleNumber,
		b.QRCode,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return mapConflict(err)
	}

	updateQuery := `UPDATE parking_spaces SET status = 'reserved', updated_at = NOW() WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateQuery, b.SpaceID); err != nil {
		return err
	}

	return mapConflict(tx.Commit())
}

// Transition persists the booking's status fields and moves the space in the
// same transaction. A space in maintenance keeps its status; the caller is
// told through maintenanceHeld so it can signal the condition upward.
func (r *BookingRepository) Transition(ctx context.Context, b *models.Booking, spaceStatus models.SpaceStatus) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var current models.SpaceStatus
	lockQuery := `SELECT status FROM parking_spaces WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, lockQuery, b.SpaceID).Scan(&current); err != nil {
		return false, err
	}

	bookingQuery := `
		UPDATE bookings
		SET status = $1, payment_status = $2, cancelled_at = $3, updated_at = NOW()
		WHERE id = $4`
	if _, err := tx.ExecContext(ctx, bookingQuery, b.Status, b.PaymentStatus, b.CancelledAt, b.ID); err != nil {
		return false, err
	}

	held := current == models.SpaceMaintenance
	if !held {
		spaceQuery := `UPDATE parking_spaces SET status = $1, updated_at = NOW() WHERE id = $2`
		if _, err := tx.ExecContext(ctx, spaceQuery, spaceStatus, b.SpaceID); err != nil {
			return false, err
		}
	}

	return held, tx.Commit()
}

// UpdatePayment locks the booking row, passes its current state to decide and
// persists the returned statuses before releasing the lock. Two concurrent
// payment attempts on the same booking serialize here; the second decide call
// sees the first one's paid state and can reject instead of charging again.
func (r *BookingRepository) UpdatePayment(ctx context.Context, id string, decide func(b *models.Booking) (models.PaymentStatus, models.BookingStatus, error)) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	b, err := scanBooking(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return apperrors.ErrBookingNotFound
	}
	if err != nil {
		return err
	}

	payment, status, err := decide(b)
	if err != nil {
		return err
	}

	updateQuery := `
		UPDATE bookings
		SET payment_status = $1, status = $2, updated_at = NOW()
		WHERE id = $3`
	if _, err := tx.ExecContext(ctx, updateQuery, payment, status, id); err != nil {
		return err
	}

	return tx.Commit()
}

// ExpirePending cancels a booking only if it is still pending and unpaid,
// releasing its space in the same transaction. It reports expired=false when
// a payment landed between the expirer's listing read and this write, leaving
// the booking untouched.
func (r *BookingRepository) ExpirePending(ctx context.Context, id string, cancelledAt time.Time) (expired bool, maintenanceHeld bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, false, err
	}
	defer tx.Rollback()

	var spaceID string
	var current models.SpaceStatus
	lockQuery := `
		SELECT s.id, s.status
		FROM bookings b
		JOIN parking_spaces s ON s.id = b.space_id
		WHERE b.id = $1
		FOR UPDATE OF s`
	if err := tx.QueryRowContext(ctx, lockQuery, id).Scan(&spaceID, &current); err != nil {
		if err == sql.ErrNoRows {
			return false, false, apperrors.ErrBookingNotFound
		}
		return false, false, err
	}

	// The predicate re-checks under the row lock; a paid or transitioned
	// booking matches zero rows and keeps its payment record.
	res, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET status = 'cancelled', cancelled_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND payment_status = 'pending'`, id, cancelledAt)
	if err != nil {
		return false, false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, false, err
	}
	if rows == 0 {
		return false, false, nil
	}

	held := current == models.SpaceMaintenance
	if !held {
		spaceQuery := `UPDATE parking_spaces SET status = 'available', updated_at = NOW() WHERE id = $1`
		if _, err := tx.ExecContext(ctx, spaceQuery, spaceID); err != nil {
			return false, false, err
		}
	}

	return true, held, tx.Commit()
}

func (r *BookingRepository) SetVehicle(ctx context.Context, id string, vehicleNumber *string) error {
	query := `UPDATE bookings SET vehicle_number = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, vehicleNumber, id)
	return err
}

func conflictError(id string, start, end time.Time) error {
	return fmt.Errorf("space already booked: %w", &windowConflict{
		id:    id,
		start: start,
		end:   end,
	})
}

type windowConflict struct {
	id         string
	start, end time.Time
}

func (c *windowConflict) Error() string {
	return fmt.Sprintf("conflicting booking %s [%s, %s)", c.id, c.start, c.end)
}

func (c *windowConflict) Unwrap() error { return apperrors.ErrConflict }

// mapConflict converts an exclusion-constraint violation into the conflict
// outcome so the losing writer of a double-booking race sees ErrConflict, not
// a raw database error.
func mapConflict(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == exclusionViolation {
		return apperrors.ErrConflict
	}
	return err
}
