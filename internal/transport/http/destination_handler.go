package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wayfare-app/wayfare-api/internal/domain"
	"github.com/wayfare-app/wayfare-api/internal/service"
	"github.com/wayfare-app/wayfare-api/internal/util"
)

type DestinationHandler struct {
	destinations *service.DestinationService
}

func RegisterDestinations(e *echo.Echo, auth *service.AuthService, destinations *service.DestinationService) {
	handler := &DestinationHandler{destinations: destinations}

	g := e.Group("/trips/:tripId/destinations", RequireAuth(auth))
	g.POST("", handler.create)
	g.GET("", handler.list)
	g.GET("/:destinationId", handler.get)
	g.PUT("/:destinationId", handler.update)
	g.DELETE("/:destinationId", handler.delete)
	g.POST("/:destinationId/photo", handler.attachPhoto)
}

func (h *DestinationHandler) create(c echo.Context) error {
	user, tripID, ok := tripRequest(c)
	if !ok {
		return nil
	}

	var req struct {
		Name           string     `json:"name"`
		Latitude       *float64   `json:"latitude"`
		Longitude      *float64   `json:"longitude"`
		Address        *string    `json:"address"`
		PlaceID        *string    `json:"place_id"`
		StartDate      *time.Time `json:"start_date"`
		EndDate        *time.Time `json:"end_date"`
		Accommodations *string    `json:"accommodations"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	dest, err := h.destinations.Create(c.Request().Context(), tripID, user.ID, service.DestinationCreateInput{
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Fields: domain.DestinationChangeFields{
			Address:        req.Address,
			PlaceID:        req.PlaceID,
			StartDate:      req.StartDate,
			EndDate:        req.EndDate,
			Accommodations: req.Accommodations,
		},
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, util.Envelope{"destination": dest})
}

func (h *DestinationHandler) list(c echo.Context) error {
	user, tripID, ok := tripRequest(c)
	if !ok {
		return nil
	}

	destinations, err := h.destinations.List(c.Request().Context(), tripID, user.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"destinations": destinations})
}

func (h *DestinationHandler) get(c echo.Context) error {
	user, tripID, ok := tripRequest(c)
	if !ok {
		return nil
	}
	destinationID, ok := parseUUIDParam(c, "destinationId")
	if !ok {
		return nil
	}

	dest, err := h.destinations.Get(c.Request().Context(), tripID, destinationID, user.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"destination": dest})
}

func (h *DestinationHandler) update(c echo.Context) error {
	user, tripID, ok := tripRequest(c)
	if !ok {
		return nil
	}
	destinationID, ok := parseUUIDParam(c, "destinationId")
	if !ok {
		return nil
	}

	var fields domain.DestinationChangeFields
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	dest, err := h.destinations.Update(c.Request().Context(), tripID, destinationID, user.ID, fields)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"destination": dest})
}

func (h *DestinationHandler) delete(c echo.Context) error {
	user, tripID, ok := tripRequest(c)
	if !ok {
		return nil
	}
	destinationID, ok := parseUUIDParam(c, "destinationId")
	if !ok {
		return nil
	}

	dest, err := h.destinations.Delete(c.Request().Context(), tripID, destinationID, user.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"destination": dest})
}

func (h *DestinationHandler) attachPhoto(c echo.Context) error {
	user, tripID, ok := tripRequest(c)
	if !ok {
		return nil
	}
	destinationID, ok := parseUUIDParam(c, "destinationId")
	if !ok {
		return nil
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("photo file is required"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read photo"))
	}
	defer file.Close()

	dest, err := h.destinations.AttachPhoto(c.Request().Context(), tripID, destinationID, user.ID, service.PhotoUpload{
		Reader:      file,
		Size:        fileHeader.Size,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"destination": dest})
}
