package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/wayfare-app/wayfare-api/internal/domain"
)

func newTripFixture() (*TripService, *memoryTripRepo, *memoryUserRepo) {
	trips := newMemoryTripRepo()
	users := &memoryUserRepo{}
	access := NewAccessService(trips)
	return NewTripService(trips, users, access), trips, users
}

func TestTripService_CreateInsertsOwner(t *testing.T) {
	ctx := context.Background()
	svc, _, users := newTripFixture()
	alice := users.add("alice")

	trip, err := svc.Create(ctx, alice.ID, "Summer in Italy", nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(trip.Travellers) != 1 {
		t.Fatalf("expected one traveller, got %d", len(trip.Travellers))
	}
	if trip.Travellers[0].UserID != alice.ID || trip.Travellers[0].Role != domain.RoleOwner {
		t.Fatalf("creator not inserted as Owner: %+v", trip.Travellers[0])
	}

	if _, err := svc.Create(ctx, alice.ID, "   ", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank title, got %v", err)
	}
}

func TestTripService_AccessChecks(t *testing.T) {
	ctx := context.Background()
	svc, _, users := newTripFixture()
	alice := users.add("alice")
	mallory := users.add("mallory")

	trip, err := svc.Create(ctx, alice.ID, "Summer in Italy", nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Get(ctx, trip.ID, mallory.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for outsider, got %v", err)
	}
	if _, err := svc.Get(ctx, uuid.New(), alice.ID); !errors.Is(err, ErrTripNotFound) {
		t.Fatalf("expected ErrTripNotFound, got %v", err)
	}

	title := "Hijacked"
	if _, err := svc.Update(ctx, trip.ID, mallory.ID, domain.TripChangeFields{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on outsider update, got %v", err)
	}
}

func TestTripService_UpdatePartial(t *testing.T) {
	ctx := context.Background()
	svc, _, users := newTripFixture()
	alice := users.add("alice")

	desc := "Two weeks, three cities"
	trip, err := svc.Create(ctx, alice.ID, "Summer in Italy", &desc)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	title := "Autumn in Italy"
	updated, err := svc.Update(ctx, trip.ID, alice.ID, domain.TripChangeFields{Title: &title})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Title != "Autumn in Italy" {
		t.Fatalf("title not updated: %q", updated.Title)
	}
	if updated.Description == nil || *updated.Description != desc {
		t.Fatal("absent description field must stay untouched")
	}

	empty := "  "
	if _, err := svc.Update(ctx, trip.ID, alice.ID, domain.TripChangeFields{Title: &empty}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank title, got %v", err)
	}
}

func TestTripService_DeleteIsOwnerOnly(t *testing.T) {
	ctx := context.Background()
	svc, trips, users := newTripFixture()
	alice := users.add("alice")
	bob := users.add("bob")

	trip, err := svc.Create(ctx, alice.ID, "Summer in Italy", nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	role := "Editor"
	if _, err := svc.AddTraveller(ctx, trip.ID, alice.ID, "bob", &role); err != nil {
		t.Fatalf("AddTraveller returned error: %v", err)
	}

	if _, err := svc.Delete(ctx, trip.ID, bob.ID); !errors.Is(err, ErrOwnerRequired) {
		t.Fatalf("expected ErrOwnerRequired for Editor delete, got %v", err)
	}

	deleted, err := svc.Delete(ctx, trip.ID, alice.ID)
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if deleted.ID != trip.ID {
		t.Fatal("Delete must return the removed trip")
	}
	if _, err := trips.FindByID(ctx, trip.ID); err == nil {
		t.Fatal("trip still present after delete")
	}
}

func TestTripService_AddTraveller(t *testing.T) {
	ctx := context.Background()
	svc, _, users := newTripFixture()
	alice := users.add("alice")
	bob := users.add("bob")

	trip, err := svc.Create(ctx, alice.ID, "Summer in Italy", nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// No role defaults to Viewer.
	updated, err := svc.AddTraveller(ctx, trip.ID, alice.ID, "bob", nil)
	if err != nil {
		t.Fatalf("AddTraveller returned error: %v", err)
	}
	role, ok := updated.Travellers.RoleOf(bob.ID)
	if !ok || role != domain.RoleViewer {
		t.Fatalf("expected bob as Viewer, got %v (present=%v)", role, ok)
	}

	if _, err := svc.AddTraveller(ctx, trip.ID, alice.ID, "bob", nil); !errors.Is(err, domain.ErrDuplicateTraveller) {
		t.Fatalf("expected ErrDuplicateTraveller, got %v", err)
	}
	if _, err := svc.AddTraveller(ctx, trip.ID, alice.ID, "nobody", nil); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	bad := "Superuser"
	if _, err := svc.AddTraveller(ctx, trip.ID, alice.ID, "bob", &bad); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown role, got %v", err)
	}
}

func TestTripService_RemoveTraveller(t *testing.T) {
	ctx := context.Background()
	svc, _, users := newTripFixture()
	alice := users.add("alice")
	bob := users.add("bob")
	carol := users.add("carol")

	trip, err := svc.Create(ctx, alice.ID, "Summer in Italy", nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	viewer := "Viewer"
	if _, err := svc.AddTraveller(ctx, trip.ID, alice.ID, "bob", &viewer); err != nil {
		t.Fatalf("AddTraveller returned error: %v", err)
	}
	if _, err := svc.AddTraveller(ctx, trip.ID, alice.ID, "carol", &viewer); err != nil {
		t.Fatalf("AddTraveller returned error: %v", err)
	}

	// A Viewer cannot remove someone else.
	if _, err := svc.RemoveTraveller(ctx, trip.ID, bob.ID, carol.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// But may leave the trip themselves.
	updated, err := svc.RemoveTraveller(ctx, trip.ID, bob.ID, bob.ID)
	if err != nil {
		t.Fatalf("self-removal returned error: %v", err)
	}
	if updated.Travellers.Contains(bob.ID) {
		t.Fatal("bob still on trip after self-removal")
	}

	// The only Owner can never be removed.
	if _, err := svc.RemoveTraveller(ctx, trip.ID, alice.ID, alice.ID); !errors.Is(err, domain.ErrLastOwner) {
		t.Fatalf("expected ErrLastOwner, got %v", err)
	}
}

func TestTripService_ChangeTravellerRole(t *testing.T) {
	ctx := context.Background()
	svc, trips, users := newTripFixture()
	alice := users.add("alice")
	bob := users.add("bob")

	trip, err := svc.Create(ctx, alice.ID, "Summer in Italy", nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	editor := "Editor"
	if _, err := svc.AddTraveller(ctx, trip.ID, alice.ID, "bob", &editor); err != nil {
		t.Fatalf("AddTraveller returned error: %v", err)
	}

	// An Editor cannot reassign roles.
	if _, err := svc.ChangeTravellerRole(ctx, trip.ID, bob.ID, alice.ID, "Viewer"); !errors.Is(err, ErrOwnerRequired) {
		t.Fatalf("expected ErrOwnerRequired, got %v", err)
	}

	// The only Owner cannot demote themselves.
	if _, err := svc.ChangeTravellerRole(ctx, trip.ID, alice.ID, alice.ID, "Viewer"); !errors.Is(err, domain.ErrLastOwner) {
		t.Fatalf("expected ErrLastOwner, got %v", err)
	}

	updated, err := svc.ChangeTravellerRole(ctx, trip.ID, alice.ID, bob.ID, "Owner")
	if err != nil {
		t.Fatalf("ChangeTravellerRole returned error: %v", err)
	}
	if role, _ := updated.Travellers.RoleOf(bob.ID); role != domain.RoleOwner {
		t.Fatalf("expected bob promoted to Owner, got %v", role)
	}

	// With two Owners, alice may now step down.
	if _, err := svc.ChangeTravellerRole(ctx, trip.ID, alice.ID, alice.ID, "Viewer"); err != nil {
		t.Fatalf("demotion with a second Owner returned error: %v", err)
	}

	// A corrupt stored role reads as Viewer and blocks editing.
	trips.setRole(trip.ID, alice.ID, domain.Role("superadmin"))
	title := "New title"
	if _, err := svc.Update(ctx, trip.ID, alice.ID, domain.TripChangeFields{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for unknown stored role, got %v", err)
	}
}
