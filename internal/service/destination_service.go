package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wayfare-app/wayfare-api/internal/domain"
	"github.com/wayfare-app/wayfare-api/internal/media"
	"github.com/wayfare-app/wayfare-api/internal/repository/ports"
)

const defaultPhotoMaxBytes = int64(10 * 1024 * 1024)

// DestinationCreateInput carries the required and optional fields for a new
// destination.
type DestinationCreateInput struct {
	Name      string
	Latitude  *float64
	Longitude *float64
	Fields    domain.DestinationChangeFields
}

// AttractionCreateInput carries the fields for a new embedded attraction.
type AttractionCreateInput struct {
	Name      string
	Latitude  *float64
	Longitude *float64
	Address   *string
	PlaceID   *string
	Notes     *string
	VisitDate *time.Time
}

// PhotoUpload is one multipart image destined for object storage.
type PhotoUpload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type DestinationServiceConfig struct {
	Bucket        string
	PhotoMaxBytes int64
}

type DestinationService struct {
	destinations ports.DestinationRepository
	access       *AccessService
	storage      ports.ObjectStorage
	processor    media.Processor

	bucket        string
	photoMaxBytes int64
	now           func() time.Time
	newID         func() uuid.UUID
}

func NewDestinationService(
	destinations ports.DestinationRepository,
	access *AccessService,
	storage ports.ObjectStorage,
	processor media.Processor,
	cfg DestinationServiceConfig,
) *DestinationService {
	maxBytes := cfg.PhotoMaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultPhotoMaxBytes
	}
	return &DestinationService{
		destinations:  destinations,
		access:        access,
		storage:       storage,
		processor:     processor,
		bucket:        strings.TrimSpace(cfg.Bucket),
		photoMaxBytes: maxBytes,
		now:           time.Now,
		newID:         uuid.New,
	}
}

// Create appends a destination to the trip's ordered list.
func (s *DestinationService) Create(ctx context.Context, tripID, callerID uuid.UUID, input DestinationCreateInput) (*domain.Destination, error) {
	if _, _, err := s.access.ResolveEditAccess(ctx, tripID, callerID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if input.Latitude == nil || input.Longitude == nil {
		return nil, fmt.Errorf("%w: latitude and longitude are required", ErrValidation)
	}
	if err := validateCoordinates(*input.Latitude, *input.Longitude); err != nil {
		return nil, err
	}

	return s.destinations.Create(ctx, tripID, name, *input.Latitude, *input.Longitude, input.Fields)
}

// List returns the trip's destinations in itinerary order.
func (s *DestinationService) List(ctx context.Context, tripID, callerID uuid.UUID) ([]domain.Destination, error) {
	if _, err := s.access.ResolveViewAccess(ctx, tripID, callerID); err != nil {
		return nil, err
	}
	return s.destinations.ListForTrip(ctx, tripID)
}

func (s *DestinationService) Get(ctx context.Context, tripID, destinationID, callerID uuid.UUID) (*domain.Destination, error) {
	if _, err := s.access.ResolveViewAccess(ctx, tripID, callerID); err != nil {
		return nil, err
	}
	return s.find(ctx, tripID, destinationID)
}

// Update applies a partial update. Required fields may change but never to an
// empty value.
func (s *DestinationService) Update(ctx context.Context, tripID, destinationID, callerID uuid.UUID, fields domain.DestinationChangeFields) (*domain.Destination, error) {
	if _, _, err := s.access.ResolveEditAccess(ctx, tripID, callerID); err != nil {
		return nil, err
	}
	if fields.Name != nil {
		trimmed := strings.TrimSpace(*fields.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		fields.Name = &trimmed
	}
	if fields.Latitude != nil || fields.Longitude != nil {
		current, err := s.find(ctx, tripID, destinationID)
		if err != nil {
			return nil, err
		}
		lat, lng := current.Latitude, current.Longitude
		if fields.Latitude != nil {
			lat = *fields.Latitude
		}
		if fields.Longitude != nil {
			lng = *fields.Longitude
		}
		if err := validateCoordinates(lat, lng); err != nil {
			return nil, err
		}
	}
	if fields.Empty() {
		return s.find(ctx, tripID, destinationID)
	}

	updated, err := s.destinations.Update(ctx, tripID, destinationID, fields)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDestinationNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes the destination and closes the ordering gap in one
// transaction, so the trip's list never carries a dangling id.
func (s *DestinationService) Delete(ctx context.Context, tripID, destinationID, callerID uuid.UUID) (*domain.Destination, error) {
	if _, _, err := s.access.ResolveEditAccess(ctx, tripID, callerID); err != nil {
		return nil, err
	}
	deleted, err := s.destinations.Delete(ctx, tripID, destinationID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDestinationNotFound
		}
		return nil, err
	}
	return deleted, nil
}

// ListAttractions returns the destination's embedded attractions.
func (s *DestinationService) ListAttractions(ctx context.Context, tripID, destinationID, callerID uuid.UUID) (domain.AttractionList, error) {
	dest, err := s.Get(ctx, tripID, destinationID, callerID)
	if err != nil {
		return nil, err
	}
	return dest.Attractions, nil
}

func (s *DestinationService) GetAttraction(ctx context.Context, tripID, destinationID, attractionID, callerID uuid.UUID) (*domain.Attraction, error) {
	dest, err := s.Get(ctx, tripID, destinationID, callerID)
	if err != nil {
		return nil, err
	}
	idx := dest.Attractions.Find(attractionID)
	if idx < 0 {
		return nil, ErrAttractionNotFound
	}
	attraction := dest.Attractions[idx]
	return &attraction, nil
}

// AddAttraction appends to the embedded list and writes the whole document
// back. Concurrent edits are last-write-wins.
func (s *DestinationService) AddAttraction(ctx context.Context, tripID, destinationID, callerID uuid.UUID, input AttractionCreateInput) (*domain.Attraction, error) {
	dest, err := s.findForEdit(ctx, tripID, destinationID, callerID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if input.Latitude == nil || input.Longitude == nil {
		return nil, fmt.Errorf("%w: latitude and longitude are required", ErrValidation)
	}
	if err := validateCoordinates(*input.Latitude, *input.Longitude); err != nil {
		return nil, err
	}

	attraction := domain.Attraction{
		ID:        s.newID(),
		Name:      name,
		Latitude:  *input.Latitude,
		Longitude: *input.Longitude,
		Address:   normalizeString(input.Address),
		PlaceID:   normalizeString(input.PlaceID),
		Notes:     normalizeString(input.Notes),
		VisitDate: input.VisitDate,
		CreatedAt: s.now().UTC(),
	}

	if _, err := s.destinations.ReplaceAttractions(ctx, tripID, destinationID, append(dest.Attractions, attraction)); err != nil {
		if isNotFound(err) {
			return nil, ErrDestinationNotFound
		}
		return nil, err
	}
	return &attraction, nil
}

// UpdateAttraction patches one embedded attraction in place.
func (s *DestinationService) UpdateAttraction(ctx context.Context, tripID, destinationID, attractionID, callerID uuid.UUID, fields domain.AttractionChangeFields) (*domain.Attraction, error) {
	dest, err := s.findForEdit(ctx, tripID, destinationID, callerID)
	if err != nil {
		return nil, err
	}
	idx := dest.Attractions.Find(attractionID)
	if idx < 0 {
		return nil, ErrAttractionNotFound
	}

	if fields.Name != nil {
		trimmed := strings.TrimSpace(*fields.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		fields.Name = &trimmed
	}
	lat, lng := dest.Attractions[idx].Latitude, dest.Attractions[idx].Longitude
	if fields.Latitude != nil {
		lat = *fields.Latitude
	}
	if fields.Longitude != nil {
		lng = *fields.Longitude
	}
	if err := validateCoordinates(lat, lng); err != nil {
		return nil, err
	}

	fields.Apply(&dest.Attractions[idx])
	if _, err := s.destinations.ReplaceAttractions(ctx, tripID, destinationID, dest.Attractions); err != nil {
		if isNotFound(err) {
			return nil, ErrDestinationNotFound
		}
		return nil, err
	}
	attraction := dest.Attractions[idx]
	return &attraction, nil
}

// RemoveAttraction drops one embedded attraction.
func (s *DestinationService) RemoveAttraction(ctx context.Context, tripID, destinationID, attractionID, callerID uuid.UUID) (*domain.Attraction, error) {
	dest, err := s.findForEdit(ctx, tripID, destinationID, callerID)
	if err != nil {
		return nil, err
	}
	idx := dest.Attractions.Find(attractionID)
	if idx < 0 {
		return nil, ErrAttractionNotFound
	}

	removed := dest.Attractions[idx]
	remaining := append(dest.Attractions[:idx:idx], dest.Attractions[idx+1:]...)
	if _, err := s.destinations.ReplaceAttractions(ctx, tripID, destinationID, remaining); err != nil {
		if isNotFound(err) {
			return nil, ErrDestinationNotFound
		}
		return nil, err
	}
	return &removed, nil
}

// AttachPhoto processes the upload, stores it, and points the destination's
// photo URL at the stored object.
func (s *DestinationService) AttachPhoto(ctx context.Context, tripID, destinationID, callerID uuid.UUID, upload PhotoUpload) (*domain.Destination, error) {
	dest, err := s.findForEdit(ctx, tripID, destinationID, callerID)
	if err != nil {
		return nil, err
	}
	if upload.Size <= 0 {
		return nil, fmt.Errorf("%w: photo is empty", ErrValidation)
	}
	if upload.Size > s.photoMaxBytes {
		return nil, fmt.Errorf("%w: photo exceeds size limit (%d bytes)", ErrValidation, s.photoMaxBytes)
	}

	processed, err := s.processor.Process(ctx, media.Upload{
		Reader:      upload.Reader,
		Size:        upload.Size,
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	objectKey := fmt.Sprintf("trips/%s/destinations/%s/%s%s",
		tripID, dest.ID, s.now().UTC().Format("20060102T150405Z"), photoExtension(processed.ContentType))
	reader := bytes.NewReader(processed.Bytes)
	if err := s.storage.Put(ctx, s.bucket, objectKey, reader, int64(len(processed.Bytes)), processed.ContentType); err != nil {
		return nil, err
	}

	updated, err := s.destinations.SetPhotoURL(ctx, tripID, destinationID, s.storage.PublicURL(s.bucket, objectKey))
	if err != nil {
		_ = s.storage.Remove(ctx, s.bucket, objectKey)
		if isNotFound(err) {
			return nil, ErrDestinationNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *DestinationService) find(ctx context.Context, tripID, destinationID uuid.UUID) (*domain.Destination, error) {
	dest, err := s.destinations.FindByID(ctx, tripID, destinationID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDestinationNotFound
		}
		return nil, err
	}
	return dest, nil
}

func (s *DestinationService) findForEdit(ctx context.Context, tripID, destinationID, callerID uuid.UUID) (*domain.Destination, error) {
	if _, _, err := s.access.ResolveEditAccess(ctx, tripID, callerID); err != nil {
		return nil, err
	}
	return s.find(ctx, tripID, destinationID)
}

func validateCoordinates(latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrValidation)
	}
	if longitude < -180 || longitude > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrValidation)
	}
	return nil
}

func photoExtension(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	return ".bin"
}
