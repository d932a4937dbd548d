package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"parkhub/cmd/consumers/jobs"
	"parkhub/internal/config"
	"parkhub/internal/consumers"
	"parkhub/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	log.Println("Starting consumers service...")

	// Override NATS client ID for consumers
	cfg.NATS.ClientID = "parkhub-consumers"

	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		log.Fatalf("Failed to create consumer service: %v", err)
	}

	// Start consuming messages
	if err := consumerService.Start(); err != nil {
		log.Fatalf("Failed to start consumers: %v", err)
	}

	// Start the booking expiration job alongside the consumers
	jobCtx, jobCancel := context.WithCancel(context.Background())
	expirationJob := jobs.NewBookingExpirationJob(consumerService.Bookings(), consumerService.NATS(), cfg.BookingExpiration)
	expirationJob.Start(jobCtx)

	log.Println("Consumers service started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down consumers service...")

	expirationJob.Stop()
	jobCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := consumerService.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Consumers service stopped")
}
