package consumers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/stan.go"

	"parkhub/internal/cache"
	"parkhub/internal/models"
	"parkhub/internal/repository"
)

// Handlers deliver booking lifecycle notifications. The engine persists all
// state synchronously, so consumers only fan events out to users and keep
// the spaces cache honest.
type Handlers struct {
	repos  *repository.Repositories
	valkey *cache.ValkeyClient
}

func NewHandlers(repos *repository.Repositories, valkey *cache.ValkeyClient) *Handlers {
	return &Handlers{
		repos:  repos,
		valkey: valkey,
	}
}

// invalidateSpaces drops cached space listings after a status change.
func (h *Handlers) invalidateSpaces() {
	if h.valkey == nil {
		return
	}
	if err := h.valkey.InvalidateSpacesList(context.Background()); err != nil {
		slog.Error("Failed to invalidate spaces cache", "error", err)
	}
}

func (h *Handlers) HandleBookingCreated(m *stan.Msg) {
	var event models.BookingCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking created event", "error", err)
		return
	}

	slog.Info("Booking created",
		"booking_id", event.BookingID,
		"space_id", event.SpaceID,
		"user_id", event.UserID,
		"amount_cents", event.AmountCents)

	// Space moved to reserved, listings are stale
	h.invalidateSpaces()

	// Здесь же можно отправлять письмо с QR-кодом

	m.Ack()
}

func (h *Handlers) HandleBookingStatusChanged(m *stan.Msg) {
	var event models.BookingStatusEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking status event", "error", err)
		return
	}

	slog.Info("Booking status changed",
		"booking_id", event.BookingID,
		"from", event.From,
		"to", event.To,
		"space_status", event.SpaceStatus)

	h.invalidateSpaces()

	m.Ack()
}

func (h *Handlers) HandleBookingCancelled(m *stan.Msg) {
	var event models.BookingCancelledEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking cancelled event", "error", err)
		return
	}

	slog.Info("Booking cancelled",
		"booking_id", event.BookingID,
		"space_id", event.SpaceID,
		"reason", event.Reason)

	h.invalidateSpaces()

	m.Ack()
}

func (h *Handlers) HandleBookingExpired(m *stan.Msg) {
	var event models.BookingExpiredEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking expired event", "error", err)
		return
	}

	slog.Info("Booking expired",
		"booking_id", event.BookingID,
		"space_id", event.SpaceID)

	h.invalidateSpaces()

	m.Ack()
}

func (h *Handlers) HandlePaymentCompleted(m *stan.Msg) {
	var event models.PaymentCompletedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment completed event", "error", err)
		return
	}

	slog.Info("Payment completed",
		"booking_id", event.BookingID,
		"amount_cents", event.AmountCents,
		"reference", event.Reference)

	// Здесь же можно отправлять чек пользователю

	m.Ack()
}

func (h *Handlers) HandlePaymentFailed(m *stan.Msg) {
	var event models.PaymentFailedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment failed event", "error", err)
		return
	}

	slog.Warn("Payment failed",
		"booking_id", event.BookingID,
		"amount_cents", event.AmountCents,
		"reason", event.Reason)

	m.Ack()
}

func (h *Handlers) HandleSpaceStatusChanged(m *stan.Msg) {
	var event models.SpaceStatusChangedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal space status event", "error", err)
		return
	}

	slog.Info("Space status changed",
		"space_id", event.SpaceID,
		"from", event.From,
		"to", event.To,
		"actor_id", event.ActorID)

	h.invalidateSpaces()

	m.Ack()
}
