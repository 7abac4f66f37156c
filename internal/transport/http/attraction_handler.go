package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wayfare-app/wayfare-api/internal/domain"
	"github.com/wayfare-app/wayfare-api/internal/service"
	"github.com/wayfare-app/wayfare-api/internal/util"
)

type AttractionHandler struct {
	destinations *service.DestinationService
}

func RegisterAttractions(e *echo.Echo, auth *service.AuthService, destinations *service.DestinationService) {
	handler := &AttractionHandler{destinations: destinations}

	g := e.Group("/trips/:tripId/destinations/:destinationId/attractions", RequireAuth(auth))
	g.POST("", handler.create)
	g.GET("", handler.list)
	g.GET("/:attractionId", handler.get)
	g.PUT("/:attractionId", handler.update)
	g.DELETE("/:attractionId", handler.delete)
}

func (h *AttractionHandler) create(c echo.Context) error {
	user, tripID, ok := tripRequest(c)
	if !ok {
		return nil
	}
	destinationID, ok := parseUUIDParam(c, "destinationId")
	if !ok {
		return nil
	}

	var req struct {
		Name      string     `json:"name"`
		Latitude  *float64   `json:"latitude"`
		Longitude *float64   `json:"longitude"`
		Address   *string    `json:"address"`
		PlaceID   *string    `json:"place_id"`
		Notes     *string    `json:"notes"`
		VisitDate *time.Time `json:"visit_date"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	attraction, err := h.destinations.AddAttraction(c.Request().Context(), tripID, destinationID, user.ID, service.AttractionCreateInput{
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Address:   req.Address,
		PlaceID:   req.PlaceID,
		Notes:     req.Notes,
		VisitDate: req.VisitDate,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, util.Envelope{"attraction": attraction})
}

func (h *AttractionHandler) list(c echo.Context) error {
	user, tripID, ok := tripRequest(c)
	if !ok {
		return nil
	}
	destinationID, ok := parseUUIDParam(c, "destinationId")
	if !ok {
		return nil
	}

	attractions, err := h.destinations.ListAttractions(c.Request().Context(), tripID, destinationID, user.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"attractions": attractions})
}

func (h *AttractionHandler) get(c echo.Context) error {
	user, tripID, destinationID, attractionID, ok := attractionRequest(c)
	if !ok {
		return nil
	}

	attraction, err := h.destinations.GetAttraction(c.Request().Context(), tripID, destinationID, attractionID, user.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"attraction": attraction})
}

func (h *AttractionHandler) update(c echo.Context) error {
	user, tripID, destinationID, attractionID, ok := attractionRequest(c)
	if !ok {
		return nil
	}

	var fields domain.AttractionChangeFields
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	attraction, err := h.destinations.UpdateAttraction(c.Request().Context(), tripID, destinationID, attractionID, user.ID, fields)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"attraction": attraction})
}

func (h *AttractionHandler) delete(c echo.Context) error {
	user, tripID, destinationID, attractionID, ok := attractionRequest(c)
	if !ok {
		return nil
	}

	attraction, err := h.destinations.RemoveAttraction(c.Request().Context(), tripID, destinationID, attractionID, user.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"attraction": attraction})
}

func attractionRequest(c echo.Context) (user *domain.User, tripID, destinationID, attractionID uuid.UUID, ok bool) {
	user, tripID, ok = tripRequest(c)
	if !ok {
		return nil, uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	destinationID, ok = parseUUIDParam(c, "destinationId")
	if !ok {
		return nil, uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	attractionID, ok = parseUUIDParam(c, "attractionId")
	if !ok {
		return nil, uuid.Nil, uuid.Nil, uuid.Nil, false
	}
	return user, tripID, destinationID, attractionID, true
}
