package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/wayfare-app/wayfare-api/internal/domain"
	"github.com/wayfare-app/wayfare-api/internal/repository/ports"
)

// AccessService decides, per request, what a caller may do with a trip.
// Decisions are evaluated against the trip's current traveller list on every
// call; nothing is cached.
type AccessService struct {
	trips ports.TripRepository
}

func NewAccessService(trips ports.TripRepository) *AccessService {
	return &AccessService{trips: trips}
}

// ResolveViewAccess loads the trip and requires the caller to hold any role
// on it.
func (s *AccessService) ResolveViewAccess(ctx context.Context, tripID, callerID uuid.UUID) (*domain.Trip, error) {
	trip, err := s.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !trip.Travellers.Contains(callerID) {
		return nil, ErrForbidden
	}
	return trip, nil
}

// ResolveEditAccess loads the trip and requires a role with write access. The
// caller's role is returned so Owner-only operations can gate further.
func (s *AccessService) ResolveEditAccess(ctx context.Context, tripID, callerID uuid.UUID) (*domain.Trip, domain.Role, error) {
	trip, err := s.load(ctx, tripID)
	if err != nil {
		return nil, "", err
	}
	role, ok := trip.Travellers.RoleOf(callerID)
	if !ok || !role.CanEdit() {
		return nil, "", ErrForbidden
	}
	return trip, role, nil
}

func (s *AccessService) load(ctx context.Context, tripID uuid.UUID) (*domain.Trip, error) {
	trip, err := s.trips.FindByID(ctx, tripID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return trip, nil
}
