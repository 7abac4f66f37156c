package service

import (
	"context"
	"errors"
	"testing"

	"github.com/wayfare-app/wayfare-api/internal/places"
)

// scriptedPlaces returns canned responses per searched place type.
type scriptedPlaces struct {
	byType   map[string]*places.SearchResponse
	errs     map[string]error
	searched []string
	details  *places.DetailsResponse
	geocode  *places.GeocodeResponse
}

var _ PlaceSearcher = (*scriptedPlaces)(nil)

func (s *scriptedPlaces) NearbySearch(_ context.Context, req places.NearbyRequest) (*places.SearchResponse, error) {
	s.searched = append(s.searched, req.Type)
	if err, ok := s.errs[req.Type]; ok {
		return nil, err
	}
	if resp, ok := s.byType[req.Type]; ok {
		return resp, nil
	}
	return &places.SearchResponse{Status: places.StatusOK, Results: []places.Place{}}, nil
}

func (s *scriptedPlaces) PlaceDetails(context.Context, string) (*places.DetailsResponse, error) {
	if s.details == nil {
		return nil, &places.UpstreamError{Status: "NOT_FOUND"}
	}
	return s.details, nil
}

func (s *scriptedPlaces) Geocode(context.Context, string) (*places.GeocodeResponse, error) {
	if s.geocode == nil {
		return nil, &places.UpstreamError{Status: "ZERO_RESULTS"}
	}
	return s.geocode, nil
}

func TestRecommendationService_HotelsParsesLocation(t *testing.T) {
	ctx := context.Background()
	client := &scriptedPlaces{byType: map[string]*places.SearchResponse{
		"lodging": {Status: places.StatusOK, Results: []places.Place{{PlaceID: "h1", Name: "Grand Hotel"}}},
	}}
	svc := NewRecommendationService(client)

	results, err := svc.Hotels(ctx, NearbyQuery{Location: "52.52, 13.405"})
	if err != nil {
		t.Fatalf("Hotels returned error: %v", err)
	}
	if len(results) != 1 || results[0].PlaceID != "h1" {
		t.Fatalf("unexpected results: %+v", results)
	}

	if _, err := svc.Hotels(ctx, NearbyQuery{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing location, got %v", err)
	}
	if _, err := svc.Hotels(ctx, NearbyQuery{Location: "not-coords"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for malformed location, got %v", err)
	}
	if _, err := svc.Hotels(ctx, NearbyQuery{Location: "95,0"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for out-of-range latitude, got %v", err)
	}
}

func TestRecommendationService_RestaurantsPriceRange(t *testing.T) {
	ctx := context.Background()
	svc := NewRecommendationService(&scriptedPlaces{})

	min, max := 3, 1
	if _, err := svc.Restaurants(ctx, NearbyQuery{Location: "0,0", MinPrice: &min, MaxPrice: &max}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for inverted price range, got %v", err)
	}
	bad := 9
	if _, err := svc.Restaurants(ctx, NearbyQuery{Location: "0,0", MinPrice: &bad}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for price level 9, got %v", err)
	}
}

func TestRecommendationService_AttractionsMergesAndDedupes(t *testing.T) {
	ctx := context.Background()
	client := &scriptedPlaces{byType: map[string]*places.SearchResponse{
		"tourist_attraction": {Status: places.StatusOK, Results: []places.Place{
			{PlaceID: "a", Name: "Old Fort", Rating: 4.5, Types: []string{"tourist_attraction"}},
			{PlaceID: "b", Name: "City Museum", Types: []string{"museum"}},
		}},
		"museum": {Status: places.StatusOK, Results: []places.Place{
			{PlaceID: "b", Name: "City Museum", Types: []string{"museum"}},
			{PlaceID: "c", Name: "Art Gallery", Types: []string{"museum"}},
		}},
		"park": {Status: places.StatusOK, Results: []places.Place{
			{PlaceID: "a", Name: "Old Fort", Types: []string{"tourist_attraction"}},
		}},
	}}
	svc := NewRecommendationService(client)

	results, err := svc.Attractions(ctx, NearbyQuery{Location: "52.52,13.405"})
	if err != nil {
		t.Fatalf("Attractions returned error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 deduplicated places, got %d", len(results))
	}

	// First occurrence wins; later categories only extend the type list.
	if results[0].PlaceID != "a" || results[0].Rating != 4.5 {
		t.Fatalf("first occurrence not preserved: %+v", results[0])
	}
	if !containsType(results[0].Types, "park") {
		t.Fatalf("duplicate hit must append the searched type: %v", results[0].Types)
	}
	if !containsType(results[1].Types, "tourist_attraction") {
		t.Fatalf("searched type not appended: %v", results[1].Types)
	}

	if len(client.searched) != len(attractionTypes) {
		t.Fatalf("expected %d category searches, got %d", len(attractionTypes), len(client.searched))
	}
}

func TestRecommendationService_AttractionsSkipsFailedCategories(t *testing.T) {
	ctx := context.Background()
	client := &scriptedPlaces{
		byType: map[string]*places.SearchResponse{
			"museum": {Status: places.StatusOK, Results: []places.Place{{PlaceID: "c", Name: "Art Gallery", Types: []string{"museum"}}}},
		},
		errs: map[string]error{
			"tourist_attraction": &places.UpstreamError{Status: "OVER_QUERY_LIMIT"},
		},
	}
	svc := NewRecommendationService(client)

	results, err := svc.Attractions(ctx, NearbyQuery{Location: "52.52,13.405"})
	if err != nil {
		t.Fatalf("Attractions returned error: %v", err)
	}
	if len(results) != 1 || results[0].PlaceID != "c" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestRecommendationService_AttractionsAllCategoriesFail(t *testing.T) {
	ctx := context.Background()
	upstream := &places.UpstreamError{Status: "REQUEST_DENIED", Message: "key invalid"}
	client := &scriptedPlaces{errs: map[string]error{
		"tourist_attraction": upstream,
		"museum":             upstream,
		"amusement_park":     upstream,
		"park":               upstream,
	}}
	svc := NewRecommendationService(client)

	_, err := svc.Attractions(ctx, NearbyQuery{Location: "52.52,13.405"})
	var ue *places.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected the upstream error to surface, got %v", err)
	}
}

func TestRecommendationService_DetailsAndGeocode(t *testing.T) {
	ctx := context.Background()
	client := &scriptedPlaces{
		details: &places.DetailsResponse{Status: places.StatusOK, Result: places.PlaceDetails{Name: "Pergamon Museum"}},
		geocode: &places.GeocodeResponse{Status: places.StatusOK, Results: []places.GeocodeResult{{PlaceID: "gate"}}},
	}
	svc := NewRecommendationService(client)

	details, err := svc.PlaceDetails(ctx, "p42")
	if err != nil {
		t.Fatalf("PlaceDetails returned error: %v", err)
	}
	if details.Name != "Pergamon Museum" {
		t.Fatalf("unexpected details: %+v", details)
	}
	if _, err := svc.PlaceDetails(ctx, "  "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank placeId, got %v", err)
	}

	geo, err := svc.Geocode(ctx, "Brandenburg Gate")
	if err != nil {
		t.Fatalf("Geocode returned error: %v", err)
	}
	if len(geo) != 1 || geo[0].PlaceID != "gate" {
		t.Fatalf("unexpected geocode results: %+v", geo)
	}
	if _, err := svc.Geocode(ctx, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for blank address, got %v", err)
	}
}
