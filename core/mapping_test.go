package tripper

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/koscakluka/tripper/core/geocoding"
)

// pointNorth returns a point km kilometres north of origin along its meridian.
func pointNorth(origin geocoding.Point, km float64) geocoding.Point {
	const earthRadiusKm = 6378.137
	return geocoding.Point{
		Latitude:  origin.Latitude + km/earthRadiusKm*180/math.Pi,
		Longitude: origin.Longitude,
	}
}

func TestBuildMapFiltersByDistance(t *testing.T) {
	anchor := geocoding.Point{Latitude: 10, Longitude: 20}
	points := map[string]geocoding.Point{
		"Anchor": anchor,
		"Near":   pointNorth(anchor, 499.9),
		"Far":    pointNorth(anchor, 500.1),
	}
	planner := NewPlanner(&fakeLLM{}, WithGeocoder(staticGeocoder(points)))

	model, ok := planner.BuildMap(context.Background(), PlaceList{"Anchor", "Near", "Far"})
	if !ok {
		t.Fatalf("expected a map")
	}
	if model.Anchor.Name != "Anchor" {
		t.Fatalf("expected first resolved point as anchor, got %q", model.Anchor.Name)
	}
	if len(model.Markers) != 1 || model.Markers[0].Name != "Near" {
		t.Fatalf("expected only the near point, got %+v", model.Markers)
	}
	if model.Zoom != DefaultMapZoom {
		t.Fatalf("expected default zoom, got %d", model.Zoom)
	}
}

func TestBuildMapCustomDistance(t *testing.T) {
	anchor := geocoding.Point{Latitude: 45, Longitude: 7}
	points := map[string]geocoding.Point{
		"Anchor": anchor,
		"Near":   pointNorth(anchor, 40),
		"Far":    pointNorth(anchor, 60),
	}
	planner := NewPlanner(&fakeLLM{}, WithGeocoder(staticGeocoder(points)), WithMaxDistanceKm(50))

	model, ok := planner.BuildMap(context.Background(), PlaceList{"Anchor", "Near", "Far"})
	if !ok || len(model.Markers) != 1 {
		t.Fatalf("expected one marker within 50 km, got %+v", model)
	}
}

func TestBuildMapNeedsTwoResolvedPlaces(t *testing.T) {
	points := map[string]geocoding.Point{"Kyoto": {Latitude: 35.0116, Longitude: 135.7681}}
	planner := NewPlanner(&fakeLLM{}, WithGeocoder(staticGeocoder(points, "Gion")))

	model, ok := planner.BuildMap(context.Background(), PlaceList{"Kyoto", "Gion", "Atlantis"})
	if ok || model != nil {
		t.Fatalf("expected no map, got %+v", model)
	}
}

func TestBuildMapSkipsUnresolvedAnchorCandidates(t *testing.T) {
	points := map[string]geocoding.Point{
		"Kyoto":      {Latitude: 35.0116, Longitude: 135.7681},
		"Kinkaku-ji": {Latitude: 35.0394, Longitude: 135.7292},
	}
	planner := NewPlanner(&fakeLLM{},
		WithGeocoder(staticGeocoder(points)),
		WithTimezoneFinder(fixedTimezone("Asia/Tokyo")),
	)

	model, ok := planner.BuildMap(context.Background(), PlaceList{"Atlantis", "Kyoto", "Kinkaku-ji"})
	if !ok {
		t.Fatalf("expected a map")
	}
	if model.Anchor.Name != "Kyoto" || model.Anchor.Timezone != "Asia/Tokyo" {
		t.Fatalf("unexpected anchor %+v", model.Anchor)
	}
	if len(model.Markers) != 1 || model.Markers[0].Timezone != "" {
		t.Fatalf("unexpected markers %+v", model.Markers)
	}
}

func TestBuildMapWithoutGeocoder(t *testing.T) {
	if _, ok := NewPlanner(&fakeLLM{}).BuildMap(context.Background(), PlaceList{"a", "b"}); ok {
		t.Fatalf("expected no map without a geocoder")
	}
}

func TestBuildMapAnchorOnlyWhenEveryPlaceIsTooFar(t *testing.T) {
	anchor := geocoding.Point{Latitude: 48.8566, Longitude: 2.3522}
	points := map[string]geocoding.Point{
		"Paris":  anchor,
		"Lisbon": pointNorth(anchor, 1450),
		"Oslo":   pointNorth(anchor, 600),
	}
	planner := NewPlanner(&fakeLLM{}, WithGeocoder(staticGeocoder(points)))

	model, ok := planner.BuildMap(context.Background(), PlaceList{"Paris", "Lisbon", "Oslo"})
	if !ok {
		t.Fatalf("expected an anchor-only map")
	}
	if model.Anchor.Name != "Paris" {
		t.Fatalf("unexpected anchor %+v", model.Anchor)
	}
	if model.Markers == nil || len(model.Markers) != 0 {
		t.Fatalf("expected empty markers, got %#v", model.Markers)
	}
	if b, _ := json.Marshal(model); !strings.Contains(string(b), `"markers":[]`) {
		t.Fatalf("expected markers to encode as an empty list, got %s", b)
	}
}

func TestBuildMapKeepsPointOnTheLimit(t *testing.T) {
	anchor := geocoding.Point{Latitude: 10, Longitude: 20}
	edge := pointNorth(anchor, 500)
	points := map[string]geocoding.Point{"Anchor": anchor, "Edge": edge}

	limit := DistanceKm(
		GeoPoint{Latitude: anchor.Latitude, Longitude: anchor.Longitude},
		GeoPoint{Latitude: edge.Latitude, Longitude: edge.Longitude},
	)
	if math.Abs(limit-500) > 1e-6 {
		t.Fatalf("expected edge 500 km away, got %v", limit)
	}
	planner := NewPlanner(&fakeLLM{}, WithGeocoder(staticGeocoder(points)), WithMaxDistanceKm(limit))

	model, ok := planner.BuildMap(context.Background(), PlaceList{"Anchor", "Edge"})
	if !ok || len(model.Markers) != 1 {
		t.Fatalf("expected the point on the limit to be kept, got %+v", model)
	}
}

func TestBuildMapSingleUnknownPlace(t *testing.T) {
	var calls atomic.Int32
	geocoder := geocoding.GeocoderFunc(func(context.Context, string) (geocoding.Point, bool, error) {
		calls.Add(1)
		return geocoding.Point{}, false, nil
	})
	planner := NewPlanner(&fakeLLM{}, WithGeocoder(geocoder))

	model, ok := planner.BuildMap(context.Background(), PlaceList{"Nonexistent Placexyz123"})
	if ok || model != nil {
		t.Fatalf("expected no map, got %+v", model)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single lookup, got %d", calls.Load())
	}
}
