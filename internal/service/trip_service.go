package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wayfare-app/wayfare-api/internal/domain"
	"github.com/wayfare-app/wayfare-api/internal/repository/ports"
)

type TripService struct {
	trips  ports.TripRepository
	users  ports.UserRepository
	access *AccessService
}

func NewTripService(trips ports.TripRepository, users ports.UserRepository, access *AccessService) *TripService {
	return &TripService{trips: trips, users: users, access: access}
}

// Create inserts the trip with the caller as its sole Owner.
func (s *TripService) Create(ctx context.Context, callerID uuid.UUID, title string, description *string) (*domain.Trip, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	return s.trips.Create(ctx, title, normalizeString(description), callerID)
}

// List returns every trip the caller is a traveller on.
func (s *TripService) List(ctx context.Context, callerID uuid.UUID) ([]domain.Trip, error) {
	return s.trips.ListForUser(ctx, callerID)
}

func (s *TripService) Get(ctx context.Context, tripID, callerID uuid.UUID) (*domain.Trip, error) {
	return s.access.ResolveViewAccess(ctx, tripID, callerID)
}

// Update applies a partial update. Absent fields are left untouched; an
// explicitly empty title is rejected.
func (s *TripService) Update(ctx context.Context, tripID, callerID uuid.UUID, fields domain.TripChangeFields) (*domain.Trip, error) {
	trip, _, err := s.access.ResolveEditAccess(ctx, tripID, callerID)
	if err != nil {
		return nil, err
	}
	if fields.Title != nil {
		trimmed := strings.TrimSpace(*fields.Title)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		fields.Title = &trimmed
	}
	if fields.Empty() {
		return trip, nil
	}
	updated, err := s.trips.Update(ctx, tripID, fields)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes the trip and everything hanging off it. Owner only.
func (s *TripService) Delete(ctx context.Context, tripID, callerID uuid.UUID) (*domain.Trip, error) {
	_, role, err := s.access.ResolveEditAccess(ctx, tripID, callerID)
	if err != nil {
		return nil, err
	}
	if role != domain.RoleOwner {
		return nil, ErrOwnerRequired
	}
	deleted, err := s.trips.Delete(ctx, tripID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return deleted, nil
}

// AddTraveller shares the trip with another user. The role defaults to
// Viewer when the caller supplies none.
func (s *TripService) AddTraveller(ctx context.Context, tripID, callerID uuid.UUID, username string, rawRole *string) (*domain.Trip, error) {
	trip, _, err := s.access.ResolveEditAccess(ctx, tripID, callerID)
	if err != nil {
		return nil, err
	}

	role := domain.DefaultRole
	if rawRole != nil && strings.TrimSpace(*rawRole) != "" {
		role, err = domain.ParseRole(strings.TrimSpace(*rawRole))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
		}
	}

	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := trip.Travellers.CanAdd(user.ID); err != nil {
		return nil, err
	}

	updated, err := s.trips.AddTraveller(ctx, tripID, user.ID, role)
	if err != nil {
		// Lost a race with a concurrent add of the same user.
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateTraveller
		}
		return nil, err
	}
	return updated, nil
}

// RemoveTraveller drops a user from the trip. Any collaborator may remove
// themselves; removing someone else needs edit access. The last Owner can
// never be removed.
func (s *TripService) RemoveTraveller(ctx context.Context, tripID, callerID, userID uuid.UUID) (*domain.Trip, error) {
	var trip *domain.Trip
	var err error
	if callerID == userID {
		trip, err = s.access.ResolveViewAccess(ctx, tripID, callerID)
	} else {
		trip, _, err = s.access.ResolveEditAccess(ctx, tripID, callerID)
	}
	if err != nil {
		return nil, err
	}
	if err := trip.Travellers.CanRemove(userID); err != nil {
		return nil, err
	}

	updated, err := s.trips.RemoveTraveller(ctx, tripID, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrTravellerMissing
		}
		return nil, err
	}
	return updated, nil
}

// ChangeTravellerRole reassigns a collaborator's role. Owner only; demoting
// the last Owner is rejected.
func (s *TripService) ChangeTravellerRole(ctx context.Context, tripID, callerID, userID uuid.UUID, rawRole string) (*domain.Trip, error) {
	trip, callerRole, err := s.access.ResolveEditAccess(ctx, tripID, callerID)
	if err != nil {
		return nil, err
	}
	if callerRole != domain.RoleOwner {
		return nil, ErrOwnerRequired
	}

	role, err := domain.ParseRole(strings.TrimSpace(rawRole))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if err := trip.Travellers.CanChangeRole(userID, role); err != nil {
		return nil, err
	}

	updated, err := s.trips.UpdateTravellerRole(ctx, tripID, userID, role)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrTravellerMissing
		}
		return nil, err
	}
	return updated, nil
}

func normalizeString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
