package service

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUsernameTaken       = errors.New("username is already taken")
	ErrUserNotFound        = errors.New("user not found")
	ErrTripNotFound        = errors.New("trip not found")
	ErrDestinationNotFound = errors.New("destination not found")
	ErrAttractionNotFound  = errors.New("attraction not found")
	ErrForbidden           = errors.New("not allowed to access this trip")
	ErrOwnerRequired       = errors.New("only a trip Owner may do this")
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
