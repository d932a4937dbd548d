package repository

import (
	"parkhub/internal/database"
)

type Repositories struct {
	Spaces   *SpaceRepository
	Bookings *BookingRepository
	Users    *UserRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Spaces:   NewSpaceRepository(db),
		Bookings: NewBookingRepository(db),
		Users:    NewUserRepository(db),
	}
}
