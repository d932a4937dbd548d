package handlers

import (
	"net/http"

	"parkhub/internal/middleware"
	"parkhub/internal/models"

	"github.com/gin-gonic/gin"
)

// Bookings handlers

// CreateBooking - POST /api/bookings
// Создать бронирование: окно проверяется и бронь с резервом места
// записываются атомарно
func (h *Handlers) CreateBooking(c *gin.Context) {
	actor, ok := middleware.ActorFromGin(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bookingResult, err := h.services.Bookings.CreateBooking(
		c.Request.Context(), actor, req.SpaceID, req.StartTime, req.EndTime, req.VehicleNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bookingResult)
}

// ListBookings - GET /api/bookings
// Получить список бронирований текущего пользователя
func (h *Handlers) ListBookings(c *gin.Context) {
	actor, ok := middleware.ActorFromGin(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookings, err := h.services.Bookings.ListForUser(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// UpdateBooking - PATCH /api/bookings/status
// Перевести бронь по жизненному циклу и/или обновить номер машины
func (h *Handlers) UpdateBooking(c *gin.Context) {
	actor, ok := middleware.ActorFromGin(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Status == nil && req.VehicleNumber == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	var result *models.Booking
	var err error

	// Сначала переход статуса: если он отклонён, номер машины не записывается
	// и бронь остаётся нетронутой
	if req.Status != nil {
		newStatus, parseErr := models.ParseBookingStatus(*req.Status)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": parseErr.Error()})
			return
		}

		result, err = h.services.Bookings.UpdateStatus(c.Request.Context(), actor, req.BookingID, newStatus)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	if req.VehicleNumber != nil {
		held := result != nil && result.MaintenanceHeld
		result, err = h.services.Bookings.SetVehicle(c.Request.Context(), actor, req.BookingID, req.VehicleNumber)
		if err != nil {
			respondError(c, err)
			return
		}
		result.MaintenanceHeld = held
	}

	c.JSON(http.StatusOK, result)
}

// CancelBooking - PATCH /api/bookings/cancel
// Отменить бронирование (только из pending/confirmed)
func (h *Handlers) CancelBooking(c *gin.Context) {
	actor, ok := middleware.ActorFromGin(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Bookings.CancelBooking(c.Request.Context(), actor, req.BookingID); err != nil {
		respondError(c, err)
		return
	}

	// Возвращаем 200 без тела ответа
	c.Status(http.StatusOK)
}
