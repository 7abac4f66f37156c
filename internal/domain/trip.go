package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrDuplicateTraveller is returned when a (trip, user) pair already holds
	// a traveller entry.
	ErrDuplicateTraveller = errors.New("user is already a traveller on this trip")
	// ErrLastOwner is returned when removing or demoting the only Owner.
	ErrLastOwner = errors.New("a trip must keep at least one Owner")
	// ErrTravellerMissing is returned when the user has no entry on the trip.
	ErrTravellerMissing = errors.New("user is not a traveller on this trip")
)

// Traveller grants one user access to one trip under a role.
type Traveller struct {
	TripID    uuid.UUID `db:"trip_id" json:"-"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Username  string    `db:"username" json:"username"`
	Role      Role      `db:"role" json:"role"`
	Position  int       `db:"position" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"added_at"`
}

// TravellerList is the trip's access-control list, ordered by position.
// Membership invariants live here instead of being re-scanned ad hoc in
// every handler.
type TravellerList []Traveller

// RoleOf returns the caller's role on the trip. Unknown stored roles are
// normalized to Viewer.
func (l TravellerList) RoleOf(userID uuid.UUID) (Role, bool) {
	for _, t := range l {
		if t.UserID == userID {
			return t.Role.Normalize(), true
		}
	}
	return "", false
}

// Contains reports whether the user holds any role on the trip.
func (l TravellerList) Contains(userID uuid.UUID) bool {
	_, ok := l.RoleOf(userID)
	return ok
}

// Owners counts entries holding the Owner role.
func (l TravellerList) Owners() int {
	n := 0
	for _, t := range l {
		if t.Role == RoleOwner {
			n++
		}
	}
	return n
}

// CanAdd rejects inserting a user that already appears in the list.
func (l TravellerList) CanAdd(userID uuid.UUID) error {
	if l.Contains(userID) {
		return ErrDuplicateTraveller
	}
	return nil
}

// CanRemove rejects removing a user that is absent, or the last Owner.
func (l TravellerList) CanRemove(userID uuid.UUID) error {
	role, ok := l.RoleOf(userID)
	if !ok {
		return ErrTravellerMissing
	}
	if role == RoleOwner && l.Owners() <= 1 {
		return ErrLastOwner
	}
	return nil
}

// CanChangeRole rejects role changes for absent users and demoting the last
// Owner to a lesser role.
func (l TravellerList) CanChangeRole(userID uuid.UUID, to Role) error {
	role, ok := l.RoleOf(userID)
	if !ok {
		return ErrTravellerMissing
	}
	if role == RoleOwner && to != RoleOwner && l.Owners() <= 1 {
		return ErrLastOwner
	}
	return nil
}

type Trip struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	Title          string        `db:"title" json:"title"`
	Description    *string       `db:"description" json:"description,omitempty"`
	DestinationIDs []uuid.UUID   `db:"-" json:"destination"`
	Travellers     TravellerList `db:"-" json:"travellers"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// TripChangeFields is the partial-update payload for a trip. Nil fields are
// left untouched.
type TripChangeFields struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Empty reports whether the patch would change nothing.
func (f TripChangeFields) Empty() bool {
	return f.Title == nil && f.Description == nil
}
