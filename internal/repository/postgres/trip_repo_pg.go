package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/wayfare-app/wayfare-api/internal/domain"
	"github.com/wayfare-app/wayfare-api/internal/repository/ports"
)

type TripRepository struct {
	db *sqlx.DB
}

func NewTripRepo(db *sqlx.DB) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) Create(ctx context.Context, title string, description *string, ownerID uuid.UUID) (*domain.Trip, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const insertTrip = `
        INSERT INTO trip (title, description)
        VALUES ($1, $2)
        RETURNING id
    `
	var tripID uuid.UUID
	if err := tx.GetContext(ctx, &tripID, insertTrip, title, nullString(description)); err != nil {
		return nil, err
	}

	const insertOwner = `
        INSERT INTO trip_traveller (trip_id, user_id, role, position)
        VALUES ($1, $2, $3, 1)
    `
	if _, err := tx.ExecContext(ctx, insertOwner, tripID, ownerID, domain.RoleOwner); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, tripID)
}

func (r *TripRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	const query = `
        SELECT id, title, description, created_at, updated_at
        FROM trip
        WHERE id = $1
    `
	var trip domain.Trip
	if err := r.db.GetContext(ctx, &trip, query, id); err != nil {
		return nil, err
	}
	if err := r.populate(ctx, []*domain.Trip{&trip}); err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *TripRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	const query = `
        SELECT t.id, t.title, t.description, t.created_at, t.updated_at
        FROM trip t
        JOIN trip_traveller tt ON tt.trip_id = t.id
        WHERE tt.user_id = $1
        ORDER BY t.created_at DESC
    `
	trips := make([]domain.Trip, 0)
	if err := r.db.SelectContext(ctx, &trips, query, userID); err != nil {
		return nil, err
	}

	refs := make([]*domain.Trip, len(trips))
	for i := range trips {
		refs[i] = &trips[i]
	}
	if err := r.populate(ctx, refs); err != nil {
		return nil, err
	}
	return trips, nil
}

func (r *TripRepository) Update(ctx context.Context, id uuid.UUID, fields domain.TripChangeFields) (*domain.Trip, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{}
	idx := 1

	if fields.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", idx))
		args = append(args, *fields.Title)
		idx++
	}
	if fields.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", idx))
		args = append(args, nullString(fields.Description))
		idx++
	}

	query := fmt.Sprintf(`
        UPDATE trip
        SET %s
        WHERE id = $%d
        RETURNING id
    `, strings.Join(setParts, ", "), idx)
	args = append(args, id)

	var updatedID uuid.UUID
	if err := r.db.GetContext(ctx, &updatedID, query, args...); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, updatedID)
}

func (r *TripRepository) Delete(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	trip, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM trip WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}
	return trip, nil
}

func (r *TripRepository) AddTraveller(ctx context.Context, tripID, userID uuid.UUID, role domain.Role) (*domain.Trip, error) {
	const query = `
        INSERT INTO trip_traveller (trip_id, user_id, role, position)
        VALUES (
            $1, $2, $3,
            (SELECT COALESCE(MAX(position), 0) + 1 FROM trip_traveller WHERE trip_id = $1)
        )
    `
	if _, err := r.db.ExecContext(ctx, query, tripID, userID, role); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, tripID)
}

func (r *TripRepository) RemoveTraveller(ctx context.Context, tripID, userID uuid.UUID) (*domain.Trip, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM trip_traveller WHERE trip_id = $1 AND user_id = $2`, tripID, userID)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}
	return r.FindByID(ctx, tripID)
}

func (r *TripRepository) UpdateTravellerRole(ctx context.Context, tripID, userID uuid.UUID, role domain.Role) (*domain.Trip, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE trip_traveller SET role = $3 WHERE trip_id = $1 AND user_id = $2`, tripID, userID, role)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}
	return r.FindByID(ctx, tripID)
}

// populate loads travellers and ordered destination ids for a batch of trips
// in two queries.
func (r *TripRepository) populate(ctx context.Context, trips []*domain.Trip) error {
	if len(trips) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(trips))
	byID := make(map[uuid.UUID]*domain.Trip, len(trips))
	for _, trip := range trips {
		trip.Travellers = domain.TravellerList{}
		trip.DestinationIDs = []uuid.UUID{}
		ids = append(ids, trip.ID)
		byID[trip.ID] = trip
	}

	const travellerQuery = `
        SELECT tt.trip_id, tt.user_id, u.username, tt.role, tt.position, tt.created_at
        FROM trip_traveller tt
        JOIN user_account u ON u.id = tt.user_id
        WHERE tt.trip_id = ANY($1::uuid[])
        ORDER BY tt.trip_id, tt.position
    `
	travellers := make([]domain.Traveller, 0)
	if err := r.db.SelectContext(ctx, &travellers, travellerQuery, pq.Array(ids)); err != nil {
		return err
	}
	for _, t := range travellers {
		if trip, ok := byID[t.TripID]; ok {
			trip.Travellers = append(trip.Travellers, t)
		}
	}

	const destinationQuery = `
        SELECT trip_id, id
        FROM destination
        WHERE trip_id = ANY($1::uuid[])
        ORDER BY trip_id, position
    `
	rows := make([]struct {
		TripID uuid.UUID `db:"trip_id"`
		ID     uuid.UUID `db:"id"`
	}, 0)
	if err := r.db.SelectContext(ctx, &rows, destinationQuery, pq.Array(ids)); err != nil {
		return err
	}
	for _, row := range rows {
		if trip, ok := byID[row.TripID]; ok {
			trip.DestinationIDs = append(trip.DestinationIDs, row.ID)
		}
	}
	return nil
}

func nullString(ptr *string) sql.NullString {
	if ptr == nil {
		return sql.NullString{Valid: false}
	}
	v := strings.TrimSpace(*ptr)
	if v == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: v, Valid: true}
}

var _ ports.TripRepository = (*TripRepository)(nil)
