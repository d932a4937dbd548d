package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"parkhub/internal/models"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.BookingStatus
		want     bool
	}{
		{models.BookingPending, models.BookingConfirmed, true},
		{models.BookingPending, models.BookingCancelled, true},
		{models.BookingPending, models.BookingActive, false},
		{models.BookingPending, models.BookingCompleted, false},
		{models.BookingConfirmed, models.BookingActive, true},
		{models.BookingConfirmed, models.BookingCancelled, true},
		{models.BookingConfirmed, models.BookingCompleted, false},
		{models.BookingConfirmed, models.BookingPending, false},
		{models.BookingActive, models.BookingCompleted, true},
		{models.BookingActive, models.BookingCancelled, false},
		{models.BookingCompleted, models.BookingCancelled, false},
		{models.BookingCancelled, models.BookingPending, false},
		{models.BookingCancelled, models.BookingConfirmed, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(models.BookingPending))
	assert.False(t, IsTerminal(models.BookingConfirmed))
	assert.False(t, IsTerminal(models.BookingActive))
	assert.True(t, IsTerminal(models.BookingCompleted))
	assert.True(t, IsTerminal(models.BookingCancelled))
	assert.True(t, IsTerminal(models.BookingStatus("garbage")))
}

func TestCanCancel(t *testing.T) {
	assert.True(t, CanCancel(models.BookingPending))
	assert.True(t, CanCancel(models.BookingConfirmed))
	assert.False(t, CanCancel(models.BookingActive))
	assert.False(t, CanCancel(models.BookingCompleted))
	assert.False(t, CanCancel(models.BookingCancelled))
}

func TestSpaceStatusFor(t *testing.T) {
	assert.Equal(t, models.SpaceReserved, spaceStatusFor(models.BookingPending))
	assert.Equal(t, models.SpaceReserved, spaceStatusFor(models.BookingConfirmed))
	assert.Equal(t, models.SpaceOccupied, spaceStatusFor(models.BookingActive))
	assert.Equal(t, models.SpaceAvailable, spaceStatusFor(models.BookingCompleted))
	assert.Equal(t, models.SpaceAvailable, spaceStatusFor(models.BookingCancelled))
}

func TestOverlapsHalfOpen(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	h := func(hours float64) time.Time { return base.Add(time.Duration(hours * float64(time.Hour))) }

	// [9, 11) vs [10.5, 12) overlap
	assert.True(t, Overlaps(h(0), h(2), h(1.5), h(3)))
	// [9, 11) vs [11, 12) touch but do not overlap
	assert.False(t, Overlaps(h(0), h(2), h(2), h(3)))
	assert.False(t, Overlaps(h(2), h(3), h(0), h(2)))
	// containment
	assert.True(t, Overlaps(h(0), h(3), h(1), h(2)))
	// disjoint
	assert.False(t, Overlaps(h(0), h(1), h(2), h(3)))
}
