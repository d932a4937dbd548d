package booking

import "time"

// BilledHours returns the number of whole hours billed for a window. Partial
// hours round up: 1.5 hours bills as 2.
func BilledHours(start, end time.Time) int64 {
	d := end.Sub(start)
	hours := int64(d / time.Hour)
	if d%time.Hour > 0 {
		hours++
	}
	return hours
}

// TotalAmount computes the charge for a window at the given hourly rate.
// Recomputing with the same inputs always yields the same amount, so refunds
// and reports agree with the original charge.
func TotalAmount(start, end time.Time, hourlyRateCents int64) int64 {
	return BilledHours(start, end) * hourlyRateCents
}
