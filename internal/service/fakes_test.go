package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wayfare-app/wayfare-api/internal/domain"
	"github.com/wayfare-app/wayfare-api/internal/media"
	"github.com/wayfare-app/wayfare-api/internal/repository/ports"
)

// In-memory repositories mirroring the Postgres implementations' observable
// behavior, including sql.ErrNoRows and unique-violation errors.

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

type memoryUserRepo struct {
	users []*domain.User
}

var _ ports.UserRepository = (*memoryUserRepo)(nil)

func (r *memoryUserRepo) Create(_ context.Context, username string, hash, salt []byte) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return nil, uniqueViolation("user_account_username_key")
		}
	}
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		PasswordSalt: salt,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.users = append(r.users, user)
	return user, nil
}

func (r *memoryUserRepo) UpsertGoogleUser(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	user := &domain.User{ID: uuid.New(), Username: username, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	r.users = append(r.users, user)
	return user, nil
}

func (r *memoryUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memoryUserRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memoryUserRepo) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if offset >= len(out) {
		return []domain.User{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryUserRepo) add(username string) *domain.User {
	user, _ := r.Create(context.Background(), username, []byte("hash"), []byte("salt"))
	return user
}

type memoryTripRepo struct {
	trips        map[uuid.UUID]*domain.Trip
	destinations *memoryDestinationRepo
}

var _ ports.TripRepository = (*memoryTripRepo)(nil)

func newMemoryTripRepo() *memoryTripRepo {
	return &memoryTripRepo{trips: make(map[uuid.UUID]*domain.Trip)}
}

func (r *memoryTripRepo) Create(_ context.Context, title string, description *string, ownerID uuid.UUID) (*domain.Trip, error) {
	trip := &domain.Trip{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Travellers: domain.TravellerList{{
			TripID:    uuid.Nil,
			UserID:    ownerID,
			Role:      domain.RoleOwner,
			Position:  1,
			CreatedAt: time.Now(),
		}},
		DestinationIDs: []uuid.UUID{},
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	trip.Travellers[0].TripID = trip.ID
	r.trips[trip.ID] = trip
	return copyTrip(trip), nil
}

func (r *memoryTripRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Trip, error) {
	trip, ok := r.trips[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyTrip(trip), nil
}

func (r *memoryTripRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	out := []domain.Trip{}
	for _, trip := range r.trips {
		if trip.Travellers.Contains(userID) {
			out = append(out, *copyTrip(trip))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryTripRepo) Update(_ context.Context, id uuid.UUID, fields domain.TripChangeFields) (*domain.Trip, error) {
	trip, ok := r.trips[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if fields.Title != nil {
		trip.Title = *fields.Title
	}
	if fields.Description != nil {
		trip.Description = fields.Description
	}
	trip.UpdatedAt = time.Now()
	return copyTrip(trip), nil
}

func (r *memoryTripRepo) Delete(_ context.Context, id uuid.UUID) (*domain.Trip, error) {
	trip, ok := r.trips[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	delete(r.trips, id)
	if r.destinations != nil {
		r.destinations.dropTrip(id)
	}
	return trip, nil
}

func (r *memoryTripRepo) AddTraveller(_ context.Context, tripID, userID uuid.UUID, role domain.Role) (*domain.Trip, error) {
	trip, ok := r.trips[tripID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if trip.Travellers.Contains(userID) {
		return nil, uniqueViolation("trip_traveller_trip_id_user_id_key")
	}
	trip.Travellers = append(trip.Travellers, domain.Traveller{
		TripID:    tripID,
		UserID:    userID,
		Role:      role,
		Position:  len(trip.Travellers) + 1,
		CreatedAt: time.Now(),
	})
	return copyTrip(trip), nil
}

func (r *memoryTripRepo) RemoveTraveller(_ context.Context, tripID, userID uuid.UUID) (*domain.Trip, error) {
	trip, ok := r.trips[tripID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	for i, t := range trip.Travellers {
		if t.UserID == userID {
			trip.Travellers = append(trip.Travellers[:i], trip.Travellers[i+1:]...)
			return copyTrip(trip), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memoryTripRepo) UpdateTravellerRole(_ context.Context, tripID, userID uuid.UUID, role domain.Role) (*domain.Trip, error) {
	trip, ok := r.trips[tripID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	for i := range trip.Travellers {
		if trip.Travellers[i].UserID == userID {
			trip.Travellers[i].Role = role
			return copyTrip(trip), nil
		}
	}
	return nil, sql.ErrNoRows
}

// setRole corrupts or adjusts a stored traveller role directly, bypassing
// validation, the way legacy rows can.
func (r *memoryTripRepo) setRole(tripID, userID uuid.UUID, role domain.Role) {
	trip := r.trips[tripID]
	for i := range trip.Travellers {
		if trip.Travellers[i].UserID == userID {
			trip.Travellers[i].Role = role
		}
	}
}

func copyTrip(trip *domain.Trip) *domain.Trip {
	out := *trip
	out.Travellers = append(domain.TravellerList{}, trip.Travellers...)
	out.DestinationIDs = append([]uuid.UUID{}, trip.DestinationIDs...)
	return &out
}

type memoryDestinationRepo struct {
	byTrip map[uuid.UUID][]*domain.Destination
}

var _ ports.DestinationRepository = (*memoryDestinationRepo)(nil)

func newMemoryDestinationRepo() *memoryDestinationRepo {
	return &memoryDestinationRepo{byTrip: make(map[uuid.UUID][]*domain.Destination)}
}

func (r *memoryDestinationRepo) Create(_ context.Context, tripID uuid.UUID, name string, latitude, longitude float64, fields domain.DestinationChangeFields) (*domain.Destination, error) {
	dest := &domain.Destination{
		ID:          uuid.New(),
		TripID:      tripID,
		Position:    len(r.byTrip[tripID]) + 1,
		Name:        name,
		Latitude:    latitude,
		Longitude:   longitude,
		Attractions: domain.AttractionList{},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	applyDestinationFields(dest, fields)
	r.byTrip[tripID] = append(r.byTrip[tripID], dest)
	return copyDestination(dest), nil
}

func (r *memoryDestinationRepo) FindByID(_ context.Context, tripID, destinationID uuid.UUID) (*domain.Destination, error) {
	dest := r.lookup(tripID, destinationID)
	if dest == nil {
		return nil, sql.ErrNoRows
	}
	return copyDestination(dest), nil
}

func (r *memoryDestinationRepo) ListForTrip(_ context.Context, tripID uuid.UUID) ([]domain.Destination, error) {
	out := []domain.Destination{}
	for _, dest := range r.byTrip[tripID] {
		out = append(out, *copyDestination(dest))
	}
	return out, nil
}

func (r *memoryDestinationRepo) Update(_ context.Context, tripID, destinationID uuid.UUID, fields domain.DestinationChangeFields) (*domain.Destination, error) {
	dest := r.lookup(tripID, destinationID)
	if dest == nil {
		return nil, sql.ErrNoRows
	}
	applyDestinationFields(dest, fields)
	dest.UpdatedAt = time.Now()
	return copyDestination(dest), nil
}

func (r *memoryDestinationRepo) Delete(_ context.Context, tripID, destinationID uuid.UUID) (*domain.Destination, error) {
	list := r.byTrip[tripID]
	for i, dest := range list {
		if dest.ID == destinationID {
			r.byTrip[tripID] = append(list[:i], list[i+1:]...)
			for j, rest := range r.byTrip[tripID] {
				rest.Position = j + 1
			}
			return dest, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memoryDestinationRepo) ReplaceAttractions(_ context.Context, tripID, destinationID uuid.UUID, attractions domain.AttractionList) (*domain.Destination, error) {
	dest := r.lookup(tripID, destinationID)
	if dest == nil {
		return nil, sql.ErrNoRows
	}
	dest.Attractions = append(domain.AttractionList{}, attractions...)
	dest.UpdatedAt = time.Now()
	return copyDestination(dest), nil
}

func (r *memoryDestinationRepo) SetPhotoURL(_ context.Context, tripID, destinationID uuid.UUID, photoURL string) (*domain.Destination, error) {
	dest := r.lookup(tripID, destinationID)
	if dest == nil {
		return nil, sql.ErrNoRows
	}
	dest.PhotoURL = &photoURL
	dest.UpdatedAt = time.Now()
	return copyDestination(dest), nil
}

func (r *memoryDestinationRepo) lookup(tripID, destinationID uuid.UUID) *domain.Destination {
	for _, dest := range r.byTrip[tripID] {
		if dest.ID == destinationID {
			return dest
		}
	}
	return nil
}

func (r *memoryDestinationRepo) dropTrip(tripID uuid.UUID) {
	delete(r.byTrip, tripID)
}

func applyDestinationFields(dest *domain.Destination, fields domain.DestinationChangeFields) {
	if fields.Name != nil {
		dest.Name = *fields.Name
	}
	if fields.Latitude != nil {
		dest.Latitude = *fields.Latitude
	}
	if fields.Longitude != nil {
		dest.Longitude = *fields.Longitude
	}
	if fields.Address != nil {
		dest.Address = fields.Address
	}
	if fields.PlaceID != nil {
		dest.PlaceID = fields.PlaceID
	}
	if fields.StartDate != nil {
		dest.StartDate = fields.StartDate
	}
	if fields.EndDate != nil {
		dest.EndDate = fields.EndDate
	}
	if fields.Accommodations != nil {
		dest.Accommodations = fields.Accommodations
	}
}

func copyDestination(dest *domain.Destination) *domain.Destination {
	out := *dest
	out.Attractions = append(domain.AttractionList{}, dest.Attractions...)
	return &out
}

type storedObject struct {
	bucket, key string
	contentType string
	data        []byte
}

type memoryStorage struct {
	objects []storedObject
	putErr  error
}

var _ ports.ObjectStorage = (*memoryStorage)(nil)

func (s *memoryStorage) Put(_ context.Context, bucket, objectKey string, reader io.Reader, size int64, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: got %d, declared %d", len(data), size)
	}
	s.objects = append(s.objects, storedObject{bucket: bucket, key: objectKey, contentType: contentType, data: data})
	return nil
}

func (s *memoryStorage) Remove(_ context.Context, bucket, objectKey string) error {
	for i, obj := range s.objects {
		if obj.bucket == bucket && obj.key == objectKey {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memoryStorage) PublicURL(bucket, objectKey string) string {
	return "https://cdn.test/" + bucket + "/" + objectKey
}

// passthroughProcessor returns uploads unchanged.
type passthroughProcessor struct {
	err error
}

var _ media.Processor = (*passthroughProcessor)(nil)

func (p *passthroughProcessor) Process(_ context.Context, upload media.Upload, _ int) (*media.Result, error) {
	if p.err != nil {
		return nil, p.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, upload.Reader); err != nil {
		return nil, err
	}
	return &media.Result{Bytes: buf.Bytes(), ContentType: upload.ContentType}, nil
}
