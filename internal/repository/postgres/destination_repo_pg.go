package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/wayfare-app/wayfare-api/internal/domain"
	"github.com/wayfare-app/wayfare-api/internal/repository/ports"
)

const destinationColumns = `
    id, trip_id, position, name, latitude, longitude, address, place_id,
    start_date, end_date, accommodations, attractions, photo_url,
    created_at, updated_at
`

type DestinationRepository struct {
	db *sqlx.DB
}

func NewDestinationRepo(db *sqlx.DB) *DestinationRepository {
	return &DestinationRepository{db: db}
}

func (r *DestinationRepository) Create(ctx context.Context, tripID uuid.UUID, name string, latitude, longitude float64, fields domain.DestinationChangeFields) (*domain.Destination, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO destination (
            trip_id, position, name, latitude, longitude, address, place_id,
            start_date, end_date, accommodations, attractions
        ) VALUES (
            :trip_id,
            (SELECT COALESCE(MAX(position), 0) + 1 FROM destination WHERE trip_id = :trip_id),
            :name, :latitude, :longitude, :address, :place_id,
            :start_date, :end_date, :accommodations, :attractions
        )
        RETURNING ` + destinationColumns

	args := map[string]any{
		"trip_id":        tripID,
		"name":           name,
		"latitude":       latitude,
		"longitude":      longitude,
		"address":        nullString(fields.Address),
		"place_id":       nullString(fields.PlaceID),
		"start_date":     nullTime(fields.StartDate),
		"end_date":       nullTime(fields.EndDate),
		"accommodations": nullString(fields.Accommodations),
		"attractions":    domain.AttractionList{},
	}

	rows, err := tx.NamedQuery(query, args)
	if err != nil {
		return nil, err
	}

	var dest domain.Destination
	if rows.Next() {
		if err = rows.StructScan(&dest); err != nil {
			rows.Close()
			return nil, err
		}
	} else {
		rows.Close()
		return nil, sql.ErrNoRows
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, `UPDATE trip SET updated_at = NOW() WHERE id = $1`, tripID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &dest, nil
}

func (r *DestinationRepository) FindByID(ctx context.Context, tripID, destinationID uuid.UUID) (*domain.Destination, error) {
	query := `
        SELECT ` + destinationColumns + `
        FROM destination
        WHERE id = $1 AND trip_id = $2
    `
	var dest domain.Destination
	if err := r.db.GetContext(ctx, &dest, query, destinationID, tripID); err != nil {
		return nil, err
	}
	return &dest, nil
}

func (r *DestinationRepository) ListForTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Destination, error) {
	query := `
        SELECT ` + destinationColumns + `
        FROM destination
        WHERE trip_id = $1
        ORDER BY position
    `
	destinations := make([]domain.Destination, 0)
	if err := r.db.SelectContext(ctx, &destinations, query, tripID); err != nil {
		return nil, err
	}
	return destinations, nil
}

func (r *DestinationRepository) Update(ctx context.Context, tripID, destinationID uuid.UUID, fields domain.DestinationChangeFields) (*domain.Destination, error) {
	setParts := []string{"updated_at = NOW()"}
	args := []any{}
	idx := 1

	if fields.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", idx))
		args = append(args, *fields.Name)
		idx++
	}
	if fields.Latitude != nil {
		setParts = append(setParts, fmt.Sprintf("latitude = $%d", idx))
		args = append(args, *fields.Latitude)
		idx++
	}
	if fields.Longitude != nil {
		setParts = append(setParts, fmt.Sprintf("longitude = $%d", idx))
		args = append(args, *fields.Longitude)
		idx++
	}
	if fields.Address != nil {
		setParts = append(setParts, fmt.Sprintf("address = $%d", idx))
		args = append(args, nullString(fields.Address))
		idx++
	}
	if fields.PlaceID != nil {
		setParts = append(setParts, fmt.Sprintf("place_id = $%d", idx))
		args = append(args, nullString(fields.PlaceID))
		idx++
	}
	if fields.StartDate != nil {
		setParts = append(setParts, fmt.Sprintf("start_date = $%d", idx))
		args = append(args, nullTime(fields.StartDate))
		idx++
	}
	if fields.EndDate != nil {
		setParts = append(setParts, fmt.Sprintf("end_date = $%d", idx))
		args = append(args, nullTime(fields.EndDate))
		idx++
	}
	if fields.Accommodations != nil {
		setParts = append(setParts, fmt.Sprintf("accommodations = $%d", idx))
		args = append(args, nullString(fields.Accommodations))
		idx++
	}

	query := fmt.Sprintf(`
        UPDATE destination
        SET %s
        WHERE id = $%d AND trip_id = $%d
        RETURNING `+destinationColumns,
		strings.Join(setParts, ", "), idx, idx+1)
	args = append(args, destinationID, tripID)

	var dest domain.Destination
	if err := r.db.GetContext(ctx, &dest, query, args...); err != nil {
		return nil, err
	}
	return &dest, nil
}

// Delete removes the destination, closes the gap in the trip's ordering and
// touches the parent trip, all in one transaction.
func (r *DestinationRepository) Delete(ctx context.Context, tripID, destinationID uuid.UUID) (*domain.Destination, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
        DELETE FROM destination
        WHERE id = $1 AND trip_id = $2
        RETURNING ` + destinationColumns
	var dest domain.Destination
	if err := tx.GetContext(ctx, &dest, query, destinationID, tripID); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE destination SET position = position - 1 WHERE trip_id = $1 AND position > $2`,
		tripID, dest.Position); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE trip SET updated_at = NOW() WHERE id = $1`, tripID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &dest, nil
}

func (r *DestinationRepository) ReplaceAttractions(ctx context.Context, tripID, destinationID uuid.UUID, attractions domain.AttractionList) (*domain.Destination, error) {
	query := `
        UPDATE destination
        SET attractions = $3, updated_at = NOW()
        WHERE id = $1 AND trip_id = $2
        RETURNING ` + destinationColumns
	var dest domain.Destination
	if err := r.db.GetContext(ctx, &dest, query, destinationID, tripID, attractions); err != nil {
		return nil, err
	}
	return &dest, nil
}

func (r *DestinationRepository) SetPhotoURL(ctx context.Context, tripID, destinationID uuid.UUID, photoURL string) (*domain.Destination, error) {
	query := `
        UPDATE destination
        SET photo_url = $3, updated_at = NOW()
        WHERE id = $1 AND trip_id = $2
        RETURNING ` + destinationColumns
	var dest domain.Destination
	if err := r.db.GetContext(ctx, &dest, query, destinationID, tripID, photoURL); err != nil {
		return nil, err
	}
	return &dest, nil
}

func nullTime(ptr *time.Time) sql.NullTime {
	if ptr == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *ptr, Valid: true}
}

var _ ports.DestinationRepository = (*DestinationRepository)(nil)
