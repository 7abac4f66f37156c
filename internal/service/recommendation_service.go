package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/wayfare-app/wayfare-api/internal/places"
)

// attractionTypes are the place categories merged into one attraction search.
var attractionTypes = []string{"tourist_attraction", "museum", "amusement_park", "park"}

// PlaceSearcher is the slice of the places client the recommendation service
// needs.
type PlaceSearcher interface {
	NearbySearch(ctx context.Context, req places.NearbyRequest) (*places.SearchResponse, error)
	PlaceDetails(ctx context.Context, placeID string) (*places.DetailsResponse, error)
	Geocode(ctx context.Context, address string) (*places.GeocodeResponse, error)
}

// NearbyQuery is the parsed query string of a recommendation request.
type NearbyQuery struct {
	Location string // "lat,lng"
	Radius   int
	MinPrice *int
	MaxPrice *int
}

type RecommendationService struct {
	client PlaceSearcher
}

func NewRecommendationService(client PlaceSearcher) *RecommendationService {
	return &RecommendationService{client: client}
}

// Hotels returns lodging places around the location.
func (s *RecommendationService) Hotels(ctx context.Context, query NearbyQuery) ([]places.Place, error) {
	return s.searchOne(ctx, query, "lodging", nil, nil)
}

// Restaurants returns restaurants around the location, optionally bounded by
// price level.
func (s *RecommendationService) Restaurants(ctx context.Context, query NearbyQuery) ([]places.Place, error) {
	if err := validatePriceRange(query.MinPrice, query.MaxPrice); err != nil {
		return nil, err
	}
	return s.searchOne(ctx, query, "restaurant", query.MinPrice, query.MaxPrice)
}

// Attractions merges several sightseeing categories into one result set.
// Duplicates across categories keep their first occurrence, with the later
// categories appended to the place's types. A category that fails upstream is
// skipped unless every category fails.
func (s *RecommendationService) Attractions(ctx context.Context, query NearbyQuery) ([]places.Place, error) {
	location, err := parseLocation(query.Location)
	if err != nil {
		return nil, err
	}

	merged := make([]places.Place, 0, 32)
	index := make(map[string]int)
	var lastErr error

	for _, placeType := range attractionTypes {
		resp, err := s.client.NearbySearch(ctx, places.NearbyRequest{
			Location: location,
			Radius:   query.Radius,
			Type:     placeType,
		})
		if err != nil {
			lastErr = err
			continue
		}
		for _, place := range resp.Results {
			if i, seen := index[place.PlaceID]; seen {
				if !containsType(merged[i].Types, placeType) {
					merged[i].Types = append(merged[i].Types, placeType)
				}
				continue
			}
			if !containsType(place.Types, placeType) {
				place.Types = append(place.Types, placeType)
			}
			index[place.PlaceID] = len(merged)
			merged = append(merged, place)
		}
	}

	if len(merged) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return merged, nil
}

// PlaceDetails passes the provider's detail payload through.
func (s *RecommendationService) PlaceDetails(ctx context.Context, placeID string) (*places.PlaceDetails, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, fmt.Errorf("%w: placeId is required", ErrValidation)
	}
	resp, err := s.client.PlaceDetails(ctx, placeID)
	if err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// Geocode resolves a free-form address to coordinates.
func (s *RecommendationService) Geocode(ctx context.Context, address string) ([]places.GeocodeResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrValidation)
	}
	resp, err := s.client.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (s *RecommendationService) searchOne(ctx context.Context, query NearbyQuery, placeType string, minPrice, maxPrice *int) ([]places.Place, error) {
	location, err := parseLocation(query.Location)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.NearbySearch(ctx, places.NearbyRequest{
		Location: location,
		Radius:   query.Radius,
		Type:     placeType,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	})
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// parseLocation accepts the "lat,lng" query form.
func parseLocation(raw string) (places.LatLng, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return places.LatLng{}, fmt.Errorf("%w: location is required", ErrValidation)
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return places.LatLng{}, fmt.Errorf("%w: location must be lat,lng", ErrValidation)
	}
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if latErr != nil || lngErr != nil {
		return places.LatLng{}, fmt.Errorf("%w: location must be lat,lng", ErrValidation)
	}
	if err := validateCoordinates(lat, lng); err != nil {
		return places.LatLng{}, err
	}
	return places.LatLng{Lat: lat, Lng: lng}, nil
}

func validatePriceRange(minPrice, maxPrice *int) error {
	check := func(v int) error {
		if v < 0 || v > 4 {
			return fmt.Errorf("%w: price level must be between 0 and 4", ErrValidation)
		}
		return nil
	}
	if minPrice != nil {
		if err := check(*minPrice); err != nil {
			return err
		}
	}
	if maxPrice != nil {
		if err := check(*maxPrice); err != nil {
			return err
		}
	}
	if minPrice != nil && maxPrice != nil && *minPrice > *maxPrice {
		return fmt.Errorf("%w: minprice cannot exceed maxprice", ErrValidation)
	}
	return nil
}

func containsType(haystack []string, needle string) bool {
	for _, t := range haystack {
		if t == needle {
			return true
		}
	}
	return false
}
