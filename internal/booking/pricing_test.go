package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBilledHours(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(1), BilledHours(base, base.Add(time.Hour)))
	assert.Equal(t, int64(2), BilledHours(base, base.Add(2*time.Hour)))
	// Partial hours round up
	assert.Equal(t, int64(2), BilledHours(base, base.Add(90*time.Minute)))
	assert.Equal(t, int64(1), BilledHours(base, base.Add(time.Minute)))
	assert.Equal(t, int64(25), BilledHours(base, base.Add(24*time.Hour+time.Second)))
}

func TestTotalAmountDeterministic(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)

	first := TotalAmount(start, end, 1000)
	assert.Equal(t, int64(2000), first)

	// Same inputs always price the same
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, TotalAmount(start, end, 1000))
	}
}
