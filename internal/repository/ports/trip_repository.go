package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/wayfare-app/wayfare-api/internal/domain"
)

// TripRepository persists trips together with their traveller list and the
// ordered ids of their destinations.
type TripRepository interface {
	// Create inserts the trip and its creator as the sole Owner traveller in
	// one transaction.
	Create(ctx context.Context, title string, description *string, ownerID uuid.UUID) (*domain.Trip, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error)
	// ListForUser returns the trips on which the user holds any role.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)
	Update(ctx context.Context, id uuid.UUID, fields domain.TripChangeFields) (*domain.Trip, error)
	// Delete removes the trip and, through it, its travellers and
	// destinations. The deleted trip is returned.
	Delete(ctx context.Context, id uuid.UUID) (*domain.Trip, error)
	AddTraveller(ctx context.Context, tripID, userID uuid.UUID, role domain.Role) (*domain.Trip, error)
	RemoveTraveller(ctx context.Context, tripID, userID uuid.UUID) (*domain.Trip, error)
	UpdateTravellerRole(ctx context.Context, tripID, userID uuid.UUID, role domain.Role) (*domain.Trip, error)
}
