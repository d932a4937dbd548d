package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"parkhub/internal/logger"
	"parkhub/internal/middleware"
	"parkhub/internal/models"

	"github.com/gin-gonic/gin"
)

// Spaces handlers

// ListSpaces - GET /api/spaces
// Список парковочных мест с фильтрами и полнотекстовым поиском
func (h *Handlers) ListSpaces(c *gin.Context) {
	query := c.Query("query")

	var filter models.ListSpacesFilter
	if floorParam := c.Query("floor"); floorParam != "" {
		floor, err := strconv.Atoi(floorParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "floor must be an integer"})
			return
		}
		filter.Floor = &floor
	}
	if section := c.Query("section"); section != "" {
		filter.Section = &section
	}
	if spaceType := c.Query("type"); spaceType != "" {
		filter.Type = &spaceType
	}
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}
	filter.AvailableOnly = c.Query("available") == "true"

	// Кешируем только списки без поискового запроса
	cacheKey := ""
	if query == "" && h.valkeyClient != nil {
		cacheKey = spacesCacheKey(filter)
		if rawJSON, err := h.valkeyClient.GetSpacesListRaw(c.Request.Context(), cacheKey); err == nil {
			c.Data(http.StatusOK, "application/json", rawJSON)
			return
		}
	}

	response, err := h.services.Spaces.List(c.Request.Context(), filter, query)
	if err != nil {
		respondError(c, err)
		return
	}

	if cacheKey != "" {
		if err := h.valkeyClient.SetSpacesList(c.Request.Context(), cacheKey, response); err != nil {
			logger.WithContext(c.Request.Context()).Debug("Failed to cache spaces list", "error", err)
		}
	}

	c.JSON(http.StatusOK, response)
}

// CreateSpace - POST /api/spaces
// Создать парковочное место (только персонал)
func (h *Handlers) CreateSpace(c *gin.Context) {
	actor, ok := middleware.ActorFromGin(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateSpaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	space, err := h.services.Spaces.Create(c.Request.Context(), actor.Role, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateSpacesCache(c)
	c.JSON(http.StatusCreated, space)
}

// UpdateSpaceStatus - PATCH /api/spaces/status
// Сменить статус места (только персонал; maintenance имеет приоритет)
func (h *Handlers) UpdateSpaceStatus(c *gin.Context) {
	actor, ok := middleware.ActorFromGin(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateSpaceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	space, err := h.services.Spaces.UpdateStatus(c.Request.Context(), actor.UserID, actor.Role, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateSpacesCache(c)
	c.JSON(http.StatusOK, space)
}

// GetAvailability - GET /api/spaces/availability
// Проверить доступность окна на месте; возвращает конфликтующие окна
func (h *Handlers) GetAvailability(c *gin.Context) {
	spaceID := c.Query("space_id")
	if spaceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "space_id is required"})
		return
	}

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be RFC3339"})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be RFC3339"})
		return
	}

	availability, err := h.services.Bookings.CheckAvailability(c.Request.Context(), spaceID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, availability)
}

func (h *Handlers) invalidateSpacesCache(c *gin.Context) {
	if h.valkeyClient == nil {
		return
	}
	if err := h.valkeyClient.InvalidateSpacesList(c.Request.Context()); err != nil {
		logger.WithContext(c.Request.Context()).Debug("Failed to invalidate spaces cache", "error", err)
	}
}

func spacesCacheKey(f models.ListSpacesFilter) string {
	key := ""
	if f.Floor != nil {
		key += fmt.Sprintf("f%d", *f.Floor)
	}
	if f.Section != nil {
		key += ":s" + *f.Section
	}
	if f.Type != nil {
		key += ":t" + *f.Type
	}
	if f.Status != nil {
		key += ":st" + *f.Status
	}
	if f.AvailableOnly {
		key += ":avail"
	}
	if key == "" {
		key = "all"
	}
	return key
}
