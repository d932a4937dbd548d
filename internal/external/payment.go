package external

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"parkhub/internal/booking"
)

// PaymentConfig configures the simulated payment processor. DeclineMethod
// names a payment method that is always declined, which gives tests and
// demo environments a deterministic failure path.
type PaymentConfig struct {
	DeclineMethod string
	Timeout       time.Duration
}

// PaymentClient simulates the external payment gateway: it approves every
// charge except those using the configured decline method, and issues a
// deterministic reference derived from the booking and amount the way a
// gateway would return a transaction id.
type PaymentClient struct {
	declineMethod string
	timeout       time.Duration
}

func NewPaymentClient(cfg PaymentConfig) *PaymentClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.DeclineMethod == "" {
		cfg.DeclineMethod = "test-declined"
	}

	return &PaymentClient{
		declineMethod: cfg.DeclineMethod,
		timeout:       cfg.Timeout,
	}
}

// Charge reports the gateway's verdict on a charge attempt.
func (pc *PaymentClient) Charge(ctx context.Context, bookingID string, amountCents int64, method string) (*booking.ChargeResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if amountCents <= 0 {
		return &booking.ChargeResult{
			Approved: false,
			Reason:   "non-positive amount",
		}, nil
	}

	if method == pc.declineMethod {
		return &booking.ChargeResult{
			Approved: false,
			Reason:   "declined by issuer",
		}, nil
	}

	return &booking.ChargeResult{
		Approved:  true,
		Reference: pc.reference(bookingID, amountCents, method),
	}, nil
}

// reference derives a stable transaction reference for a charge.
func (pc *PaymentClient) reference(bookingID string, amountCents int64, method string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", bookingID, amountCents, method)))
	return "txn-" + hex.EncodeToString(sum[:8])
}
