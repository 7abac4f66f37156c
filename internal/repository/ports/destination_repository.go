package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/wayfare-app/wayfare-api/internal/domain"
)

// DestinationRepository persists destinations, each owned by exactly one
// trip. All lookups are scoped by trip id so a destination can never be read
// or written through a trip that does not own it.
type DestinationRepository interface {
	// Create appends the destination to the end of the trip's ordered list.
	Create(ctx context.Context, tripID uuid.UUID, name string, latitude, longitude float64, fields domain.DestinationChangeFields) (*domain.Destination, error)
	FindByID(ctx context.Context, tripID, destinationID uuid.UUID) (*domain.Destination, error)
	ListForTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Destination, error)
	Update(ctx context.Context, tripID, destinationID uuid.UUID, fields domain.DestinationChangeFields) (*domain.Destination, error)
	// Delete removes the destination and closes the gap in the trip's
	// ordering in a single transaction, returning the deleted row.
	Delete(ctx context.Context, tripID, destinationID uuid.UUID) (*domain.Destination, error)
	// ReplaceAttractions writes the whole embedded attraction document back.
	ReplaceAttractions(ctx context.Context, tripID, destinationID uuid.UUID, attractions domain.AttractionList) (*domain.Destination, error)
	SetPhotoURL(ctx context.Context, tripID, destinationID uuid.UUID, photoURL string) (*domain.Destination, error)
}
