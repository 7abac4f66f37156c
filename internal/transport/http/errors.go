package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wayfare-app/wayfare-api/internal/domain"
	"github.com/wayfare-app/wayfare-api/internal/service"
	"github.com/wayfare-app/wayfare-api/internal/util"
)

// writeServiceError maps service sentinels to HTTP status codes. Anything
// unrecognized is a 500 with a generic message.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, domain.ErrLastOwner):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrOwnerRequired):
		return c.JSON(http.StatusForbidden, util.Error(err.Error()))
	case errors.Is(err, service.ErrTripNotFound),
		errors.Is(err, service.ErrDestinationNotFound),
		errors.Is(err, service.ErrAttractionNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, domain.ErrTravellerMissing):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, domain.ErrDuplicateTraveller):
		return c.JSON(http.StatusConflict, util.Error(err.Error()))
	}
	c.Logger().Errorf("unhandled service error: %v", err)
	return c.JSON(http.StatusInternalServerError, util.Error("internal server error"))
}
