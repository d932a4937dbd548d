package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parkhub",
			Name:      "booking_created_total",
			Help:      "Count of bookings created by space type.",
		},
		[]string{"space_type"},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "parkhub",
			Name:      "booking_conflicts_total",
			Help:      "Count of booking attempts rejected due to window conflicts.",
		},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "parkhub",
			Name:      "booking_cancelled_total",
			Help:      "Count of bookings cancelled.",
		},
	)

	bookingExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "parkhub",
			Name:      "booking_expired_total",
			Help:      "Count of unpaid bookings expired by the background job.",
		},
	)

	paymentOutcome = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parkhub",
			Name:      "payment_outcome_total",
			Help:      "Count of payment attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingConflicts, bookingCancelled,
			bookingExpired, paymentOutcome)
	})
}

func IncBookingCreated(spaceType string) {
	bookingCreated.WithLabelValues(spaceType).Inc()
}

func IncBookingConflict() {
	bookingConflicts.Inc()
}

func IncBookingCancelled() {
	bookingCancelled.Inc()
}

func IncBookingExpired() {
	bookingExpired.Inc()
}

func IncPaymentOutcome(outcome string) {
	paymentOutcome.WithLabelValues(outcome).Inc()
}
