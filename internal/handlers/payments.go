package handlers

import (
	"net/http"

	"parkhub/internal/middleware"
	"parkhub/internal/models"

	"github.com/gin-gonic/gin"
)

// Payments handlers

// ProcessPayment - POST /api/payments/process
// Провести платеж по брони. При неуспехе бронь и резерв места остаются
// до явной отмены
func (h *Handlers) ProcessPayment(c *gin.Context) {
	if _, ok := middleware.ActorFromGin(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.services.Bookings.RecordPayment(
		c.Request.Context(), req.BookingID, req.AmountCents, req.Method)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// VerifyQR - GET /api/bookings/qr/verify
// Проверить QR-токен брони без обращения к платежным данным
func (h *Handlers) VerifyQR(c *gin.Context) {
	if _, ok := middleware.ActorFromGin(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookingID := c.Query("booking_id")
	token := c.Query("token")
	if bookingID == "" || token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking_id and token are required"})
		return
	}

	valid, err := h.services.Bookings.VerifyQR(c.Request.Context(), bookingID, token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking_id": bookingID, "valid": valid})
}
