package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wayfare-app/wayfare-api/internal/domain"
	"github.com/wayfare-app/wayfare-api/internal/service"
	"github.com/wayfare-app/wayfare-api/internal/util"
)

type TripHandler struct {
	trips *service.TripService
}

func RegisterTrips(e *echo.Echo, auth *service.AuthService, trips *service.TripService) {
	handler := &TripHandler{trips: trips}

	g := e.Group("/trips", RequireAuth(auth))
	g.POST("", handler.create)
	g.GET("", handler.list)
	g.GET("/:tripId", handler.get)
	g.PUT("/:tripId", handler.update)
	g.DELETE("/:tripId", handler.delete)
	g.POST("/:tripId/travellers", handler.addTraveller)
	g.DELETE("/:tripId/travellers/:userId", handler.removeTraveller)
	g.PUT("/:tripId/travellers/:userId", handler.changeTravellerRole)
}

func (h *TripHandler) create(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req struct {
		Title       string  `json:"title"`
		Description *string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	trip, err := h.trips.Create(c.Request().Context(), user.ID, req.Title, req.Description)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, util.Envelope{"trip": trip})
}

func (h *TripHandler) list(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	trips, err := h.trips.List(c.Request().Context(), user.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"trips": trips})
}

func (h *TripHandler) get(c echo.Context) error {
	user, tripID, ok := tripRequest(c)
	if !ok {
		return nil
	}

	trip, err := h.trips.Get(c.Request().Context(), tripID, user.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"trip": trip})
}

func (h *TripHandler) update(c echo.Context) error {
	user, tripID, ok := tripRequest(c)
	if !ok {
		return nil
	}

	var fields domain.TripChangeFields
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	trip, err := h.trips.Update(c.Request().Context(), tripID, user.ID, fields)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"trip": trip})
}

func (h *TripHandler) delete(c echo.Context) error {
	user, tripID, ok := tripRequest(c)
	if !ok {
		return nil
	}

	trip, err := h.trips.Delete(c.Request().Context(), tripID, user.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"trip": trip})
}

func (h *TripHandler) addTraveller(c echo.Context) error {
	user, tripID, ok := tripRequest(c)
	if !ok {
		return nil
	}

	var req struct {
		Username string  `json:"username"`
		Role     *string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	trip, err := h.trips.AddTraveller(c.Request().Context(), tripID, user.ID, req.Username, req.Role)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"trip": trip})
}

func (h *TripHandler) removeTraveller(c echo.Context) error {
	user, tripID, ok := tripRequest(c)
	if !ok {
		return nil
	}
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return nil
	}

	trip, err := h.trips.RemoveTraveller(c.Request().Context(), tripID, user.ID, userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"trip": trip})
}

func (h *TripHandler) changeTravellerRole(c echo.Context) error {
	user, tripID, ok := tripRequest(c)
	if !ok {
		return nil
	}
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return nil
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	trip, err := h.trips.ChangeTravellerRole(c.Request().Context(), tripID, user.ID, userID, req.Role)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"trip": trip})
}

// tripRequest resolves the authenticated user and the :tripId parameter. On
// failure the response is already written and ok is false.
func tripRequest(c echo.Context) (user *domain.User, tripID uuid.UUID, ok bool) {
	user, ok = CurrentUser(c)
	if !ok {
		_ = c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
		return nil, uuid.Nil, false
	}
	tripID, ok = parseUUIDParam(c, "tripId")
	if !ok {
		return nil, uuid.Nil, false
	}
	return user, tripID, true
}

// parseUUIDParam writes the 400 response itself when the parameter does not
// parse.
func parseUUIDParam(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, util.Error(name+" must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}
