package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/wayfare-app/wayfare-api/internal/places"
	"github.com/wayfare-app/wayfare-api/internal/service"
	"github.com/wayfare-app/wayfare-api/internal/util"
)

type RecommendationHandler struct {
	recommendations *service.RecommendationService
}

func RegisterRecommendations(e *echo.Echo, auth *service.AuthService, recommendations *service.RecommendationService) {
	handler := &RecommendationHandler{recommendations: recommendations}

	g := e.Group("/recommendations", RequireAuth(auth))
	g.GET("/hotels", handler.hotels)
	g.GET("/restaurants", handler.restaurants)
	g.GET("/attractions", handler.attractions)
	g.GET("/place/:placeId", handler.placeDetails)
	g.GET("/geocode", handler.geocode)
}

func (h *RecommendationHandler) hotels(c echo.Context) error {
	query, ok := parseNearbyQuery(c)
	if !ok {
		return nil
	}
	results, err := h.recommendations.Hotels(c.Request().Context(), query)
	if err != nil {
		return writePlacesError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"results": results})
}

func (h *RecommendationHandler) restaurants(c echo.Context) error {
	query, ok := parseNearbyQuery(c)
	if !ok {
		return nil
	}
	results, err := h.recommendations.Restaurants(c.Request().Context(), query)
	if err != nil {
		return writePlacesError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"results": results})
}

func (h *RecommendationHandler) attractions(c echo.Context) error {
	query, ok := parseNearbyQuery(c)
	if !ok {
		return nil
	}
	results, err := h.recommendations.Attractions(c.Request().Context(), query)
	if err != nil {
		return writePlacesError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"results": results})
}

func (h *RecommendationHandler) placeDetails(c echo.Context) error {
	details, err := h.recommendations.PlaceDetails(c.Request().Context(), c.Param("placeId"))
	if err != nil {
		return writePlacesError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"result": details})
}

func (h *RecommendationHandler) geocode(c echo.Context) error {
	results, err := h.recommendations.Geocode(c.Request().Context(), c.QueryParam("address"))
	if err != nil {
		return writePlacesError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"results": results})
}

// parseNearbyQuery reads the shared query parameters. Malformed numbers are
// a 400; full location validation happens in the service.
func parseNearbyQuery(c echo.Context) (service.NearbyQuery, bool) {
	query := service.NearbyQuery{Location: c.QueryParam("location")}

	if raw := c.QueryParam("radius"); raw != "" {
		radius, err := strconv.Atoi(raw)
		if err != nil || radius <= 0 {
			_ = c.JSON(http.StatusBadRequest, util.Error("radius must be a positive integer"))
			return service.NearbyQuery{}, false
		}
		query.Radius = radius
	}
	for _, bound := range []struct {
		name string
		dest **int
	}{
		{"minprice", &query.MinPrice},
		{"maxprice", &query.MaxPrice},
	} {
		raw := c.QueryParam(bound.name)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			_ = c.JSON(http.StatusBadRequest, util.Error(bound.name+" must be an integer"))
			return service.NearbyQuery{}, false
		}
		*bound.dest = &value
	}
	return query, true
}

// writePlacesError relays provider failures: a non-OK provider status is the
// client's problem (bad key, no results, quota), a transport failure is a
// gateway error.
func writePlacesError(c echo.Context, err error) error {
	var upstream *places.UpstreamError
	if errors.As(err, &upstream) {
		return c.JSON(http.StatusBadRequest, util.Envelope{
			"error":         "place search failed",
			"status":        upstream.Status,
			"error_message": upstream.Message,
		})
	}
	if errors.Is(err, service.ErrValidation) {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	return c.JSON(http.StatusBadGateway, util.Error("place provider unavailable"))
}
