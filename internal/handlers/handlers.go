package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"parkhub/internal/booking"
	"parkhub/internal/cache"
	apperrors "parkhub/internal/errors"
	"parkhub/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services     *service.Services
	valkeyClient *cache.ValkeyClient
}

func NewHandlers(services *service.Services, valkeyClient *cache.ValkeyClient) *Handlers {
	return &Handlers{
		services:     services,
		valkeyClient: valkeyClient,
	}
}

// StatusFor maps an engine outcome onto an HTTP status code. Every outcome in
// the taxonomy stays distinct and recoverable; only unknown errors become 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidWindow),
		errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, apperrors.ErrAmountMismatch):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrSpaceNotFound),
		errors.Is(err, apperrors.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrSpaceUnavailable),
		errors.Is(err, apperrors.ErrAlreadyPaid),
		errors.Is(err, apperrors.ErrIllegalTransition),
		errors.Is(err, apperrors.ErrNotCancellable):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrStoreTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError renders an engine outcome. Conflicts carry the conflicting
// window for diagnostics.
func respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err, "path", c.Request.URL.Path)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}

	body := gin.H{"error": err.Error()}
	var conflict *booking.ConflictError
	if errors.As(err, &conflict) {
		body["conflict"] = conflict.Window
	}

	c.JSON(status, body)
}
