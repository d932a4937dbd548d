package consumers

import (
	"context"
	"log/slog"

	"parkhub/internal/cache"
	"parkhub/internal/config"
	"parkhub/internal/database"
	"parkhub/internal/messaging"
	"parkhub/internal/repository"
)

type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	repos    *repository.Repositories
	handlers *Handlers
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	// Connect to NATS
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	// Кеш опционален: без него просто нечего инвалидировать
	valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
	if err != nil {
		slog.Warn("Valkey unavailable, cache invalidation disabled", "error", err)
		valkeyClient = nil
	}

	repos := repository.NewRepositories(db)

	handlers := NewHandlers(repos, valkeyClient)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		repos:    repos,
		handlers: handlers,
	}, nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	// Subscribe to booking events
	_, err := cs.nats.SubscribeQueue("booking.created", "consumers", cs.handlers.HandleBookingCreated)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue("booking.status_changed", "consumers", cs.handlers.HandleBookingStatusChanged)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue("booking.cancelled", "consumers", cs.handlers.HandleBookingCancelled)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue("booking.expired", "consumers", cs.handlers.HandleBookingExpired)
	if err != nil {
		return err
	}

	// Subscribe to payment events
	_, err = cs.nats.SubscribeQueue("payment.completed", "consumers", cs.handlers.HandlePaymentCompleted)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue("payment.failed", "consumers", cs.handlers.HandlePaymentFailed)
	if err != nil {
		return err
	}

	// Subscribe to space events
	_, err = cs.nats.SubscribeQueue("space.status_changed", "consumers", cs.handlers.HandleSpaceStatusChanged)
	if err != nil {
		return err
	}

	slog.Info("All consumers started successfully")
	return nil
}

// Bookings exposes the booking repository for background jobs.
func (cs *ConsumerService) Bookings() *repository.BookingRepository {
	return cs.repos.Bookings
}

// NATS exposes the messaging client for background jobs.
func (cs *ConsumerService) NATS() *messaging.NATSClient {
	return cs.nats
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.handlers != nil && cs.handlers.valkey != nil {
		if err := cs.handlers.valkey.Close(); err != nil {
			slog.Error("Error closing Valkey connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
