package service

import (
	"parkhub/internal/booking"
	"parkhub/internal/messaging"
	"parkhub/internal/repository"
	"parkhub/internal/search"
)

type Services struct {
	Spaces   *SpaceService
	Bookings *booking.Engine
}

func NewServices(repos *repository.Repositories, natsClient *messaging.NATSClient, searchClient *search.Client, engine *booking.Engine) *Services {
	return &Services{
		Spaces:   NewSpaceService(repos.Spaces, searchClient, natsClient),
		Bookings: engine,
	}
}
