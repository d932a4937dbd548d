package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "parkhub/internal/errors"
	"parkhub/internal/logger"
	"parkhub/internal/messaging"
	"parkhub/internal/models"
	"parkhub/internal/repository"
	"parkhub/internal/search"
)

// SpaceService handles the staff-facing space directory: listing with
// filters, free-text search through Elasticsearch, creation, and manual
// status overrides such as maintenance.
type SpaceService struct {
	spaceRepo    *repository.SpaceRepository
	searchClient *search.Client
	natsClient   *messaging.NATSClient
}

func NewSpaceService(spaceRepo *repository.SpaceRepository, searchClient *search.Client, natsClient *messaging.NATSClient) *SpaceService {
	return &SpaceService{
		spaceRepo:    spaceRepo,
		searchClient: searchClient,
		natsClient:   natsClient,
	}
}

// List returns spaces matching the filter. A non-empty free-text query goes
// through Elasticsearch; plain filter listings hit Postgres.
func (s *SpaceService) List(ctx context.Context, filter models.ListSpacesFilter, query string) ([]models.ParkingSpace, error) {
	if query != "" && s.searchClient != nil {
		spaces, err := s.searchClient.SearchSpaces(ctx, query, 50)
		if err != nil {
			// Search is an accelerator, not the source of truth.
			logger.WithContext(ctx).Error("Space search failed, falling back to database",
				"error", err, "query", query)
		} else {
			return spaces, nil
		}
	}

	spaces, err := s.spaceRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list spaces: %w", err)
	}
	return spaces, nil
}

func (s *SpaceService) Get(ctx context.Context, id string) (*models.ParkingSpace, error) {
	space, err := s.spaceRepo.GetSpace(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get space: %w", err)
	}
	if space == nil {
		return nil, apperrors.ErrSpaceNotFound
	}
	return space, nil
}

func (s *SpaceService) Create(ctx context.Context, actor models.Role, req *models.CreateSpaceRequest) (*models.ParkingSpace, error) {
	if !actor.IsStaff() {
		return nil, apperrors.ErrForbidden
	}

	spaceType := models.SpaceType(req.Type)
	if !spaceType.IsValid() {
		return nil, fmt.Errorf("%w: unknown space type %q", apperrors.ErrInvalidInput, req.Type)
	}

	space := &models.ParkingSpace{
		Number:          req.Number,
		Floor:           req.Floor,
		Section:         req.Section,
		Type:            spaceType,
		Status:          models.SpaceAvailable,
		HourlyRateCents: req.HourlyRateCents,
		PosX:            req.PosX,
		PosY:            req.PosY,
	}

	if err := s.spaceRepo.Create(ctx, space); err != nil {
		return nil, fmt.Errorf("failed to create space: %w", err)
	}

	s.index(ctx, space)

	return space, nil
}

// UpdateStatus is the staff override of a space's status. Maintenance set
// here takes precedence over booking-driven transitions until staff lift it.
func (s *SpaceService) UpdateStatus(ctx context.Context, actorID string, actorRole models.Role, req *models.UpdateSpaceStatusRequest) (*models.ParkingSpace, error) {
	if !actorRole.IsStaff() {
		return nil, apperrors.ErrForbidden
	}

	status := models.SpaceStatus(req.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown space status %q", apperrors.ErrInvalidInput, req.Status)
	}

	previous, err := s.spaceRepo.UpdateStatus(ctx, req.SpaceID, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrSpaceNotFound
		}
		return nil, fmt.Errorf("failed to update space status: %w", err)
	}

	if s.natsClient != nil {
		event := models.SpaceStatusChangedEvent{
			SpaceID:   req.SpaceID,
			From:      previous,
			To:        status,
			ActorID:   actorID,
			Timestamp: time.Now(),
		}
		if err := s.natsClient.Publish(models.EventSpaceStatusChanged, event); err != nil {
			logger.WithContext(ctx).Error("Failed to publish space status event",
				"error", err,
				"space_id", req.SpaceID,
				"event_type", models.EventSpaceStatusChanged)
		}
	}

	space, err := s.spaceRepo.GetSpace(ctx, req.SpaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get space: %w", err)
	}

	s.index(ctx, space)

	return space, nil
}

// ReindexAll pushes every space into the search index. Used by the
// sync-spaces tool after schema or index changes.
func (s *SpaceService) ReindexAll(ctx context.Context) (int, error) {
	if s.searchClient == nil {
		return 0, fmt.Errorf("search client not configured")
	}

	spaces, err := s.spaceRepo.List(ctx, models.ListSpacesFilter{})
	if err != nil {
		return 0, fmt.Errorf("failed to list spaces: %w", err)
	}

	indexed := 0
	for i := range spaces {
		if err := s.searchClient.IndexSpace(ctx, &spaces[i]); err != nil {
			logger.WithContext(ctx).Error("Failed to index space",
				"error", err, "space_id", spaces[i].ID)
			continue
		}
		indexed++
	}

	return indexed, nil
}

func (s *SpaceService) index(ctx context.Context, space *models.ParkingSpace) {
	if s.searchClient == nil || space == nil {
		return
	}
	if err := s.searchClient.IndexSpace(ctx, space); err != nil {
		logger.WithContext(ctx).Error("Failed to index space",
			"error", err, "space_id", space.ID)
	}
}
