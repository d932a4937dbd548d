package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "parkhub/internal/errors"
	"parkhub/internal/models"
)

// Validation runs before any repository call, so a nil repo is enough here.

func TestCreateSpaceRejectsUnknownType(t *testing.T) {
	svc := NewSpaceService(nil, nil, nil)

	_, err := svc.Create(context.Background(), models.RoleStaff, &models.CreateSpaceRequest{
		Number:          "1A-01",
		Floor:           1,
		Section:         "A",
		Type:            "hoverboard",
		HourlyRateCents: 1000,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateSpaceForbiddenForCustomers(t *testing.T) {
	svc := NewSpaceService(nil, nil, nil)

	_, err := svc.Create(context.Background(), models.RoleCustomer, &models.CreateSpaceRequest{
		Number:          "1A-01",
		Floor:           1,
		Section:         "A",
		Type:            string(models.SpaceRegular),
		HourlyRateCents: 1000,
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUpdateSpaceStatusRejectsUnknownStatus(t *testing.T) {
	svc := NewSpaceService(nil, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "staff-1", models.RoleStaff, &models.UpdateSpaceStatusRequest{
		SpaceID: "s1",
		Status:  "broken",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
