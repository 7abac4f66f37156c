package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Attraction is an embedded subdocument of a destination. It has no identity
// outside the destination that owns it.
type Attraction struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Address   *string    `json:"address,omitempty"`
	PlaceID   *string    `json:"place_id,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	VisitDate *time.Time `json:"visit_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// AttractionList is stored as a single jsonb document on the destination row.
type AttractionList []Attraction

func (l AttractionList) Value() (driver.Value, error) {
	if l == nil {
		l = AttractionList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (l *AttractionList) Scan(value any) error {
	if value == nil {
		*l = AttractionList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("attraction list must be []byte")
	}
	return json.Unmarshal(bytes, l)
}

// Find returns the index of the attraction with the given id, or -1.
func (l AttractionList) Find(id uuid.UUID) int {
	for i, a := range l {
		if a.ID == id {
			return i
		}
	}
	return -1
}

type Destination struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	TripID         uuid.UUID      `db:"trip_id" json:"trip_id"`
	Position       int            `db:"position" json:"-"`
	Name           string         `db:"name" json:"name"`
	Latitude       float64        `db:"latitude" json:"latitude"`
	Longitude      float64        `db:"longitude" json:"longitude"`
	Address        *string        `db:"address" json:"address,omitempty"`
	PlaceID        *string        `db:"place_id" json:"place_id,omitempty"`
	StartDate      *time.Time     `db:"start_date" json:"start_date,omitempty"`
	EndDate        *time.Time     `db:"end_date" json:"end_date,omitempty"`
	Accommodations *string        `db:"accommodations" json:"accommodations,omitempty"`
	Attractions    AttractionList `db:"attractions" json:"attractions"`
	PhotoURL       *string        `db:"photo_url" json:"photo_url,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// DestinationChangeFields is the partial-update payload for a destination.
// Nil fields are left untouched; the embedded attraction list has its own
// operations and is never patched through here.
type DestinationChangeFields struct {
	Name           *string    `json:"name,omitempty"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	Address        *string    `json:"address,omitempty"`
	PlaceID        *string    `json:"place_id,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Accommodations *string    `json:"accommodations,omitempty"`
}

func (f DestinationChangeFields) Empty() bool {
	return f.Name == nil && f.Latitude == nil && f.Longitude == nil &&
		f.Address == nil && f.PlaceID == nil && f.StartDate == nil &&
		f.EndDate == nil && f.Accommodations == nil
}

// AttractionChangeFields is the partial-update payload for one embedded
// attraction.
type AttractionChangeFields struct {
	Name      *string    `json:"name,omitempty"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	Address   *string    `json:"address,omitempty"`
	PlaceID   *string    `json:"place_id,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	VisitDate *time.Time `json:"visit_date,omitempty"`
}

// Apply copies the present fields onto the attraction.
func (f AttractionChangeFields) Apply(a *Attraction) {
	if f.Name != nil {
		a.Name = *f.Name
	}
	if f.Latitude != nil {
		a.Latitude = *f.Latitude
	}
	if f.Longitude != nil {
		a.Longitude = *f.Longitude
	}
	if f.Address != nil {
		a.Address = f.Address
	}
	if f.PlaceID != nil {
		a.PlaceID = f.PlaceID
	}
	if f.Notes != nil {
		a.Notes = f.Notes
	}
	if f.VisitDate != nil {
		a.VisitDate = f.VisitDate
	}
}
