package tripper

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"go.opentelemetry.io/otel/attribute"
)

// GeoPoint is a resolved place on the map.
type GeoPoint struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// Timezone is the IANA name, set for the anchor only
	Timezone string `json:"timezone,omitempty"`
}

func (p GeoPoint) orb() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// MapModel is a map centred on Anchor. The anchor itself is not marked.
type MapModel struct {
	Anchor  GeoPoint   `json:"anchor"`
	Markers []GeoPoint `json:"markers"`
	Zoom    int        `json:"zoom"`
}

// DistanceKm is the great-circle distance between two points.
func DistanceKm(a, b GeoPoint) float64 {
	return geo.DistanceHaversine(a.orb(), b.orb()) / 1000
}

// BuildMap resolves names in order and keeps the points within the maximum
// distance of the first resolved one. It reports false when fewer than two
// names resolve. Unknown names and geocoding failures are skipped.
func (p *Planner) BuildMap(ctx context.Context, names PlaceList) (*MapModel, bool) {
	ctx, span := tracer.Start(ctx, "build map")
	defer span.End()
	span.SetAttributes(attribute.Int("request.places", len(names)))

	if p.geocoder == nil {
		logger.Warn("no geocoder configured, cannot build map")
		return nil, false
	}

	var points []GeoPoint
	for _, name := range names {
		point, ok, err := p.geocoder.Resolve(ctx, name)
		if err != nil {
			logger.Warn("failed to geocode place", "place", name, "error", err)
			span.RecordError(err)
			continue
		}
		if !ok {
			logger.Debug("place not found", "place", name)
			continue
		}
		points = append(points, GeoPoint{
			Name:      name,
			Latitude:  point.Latitude,
			Longitude: point.Longitude,
		})
	}
	span.SetAttributes(attribute.Int("response.resolved", len(points)))

	if len(points) < 2 {
		return nil, false
	}

	anchor := points[0]
	if p.timezones != nil {
		anchor.Timezone = p.timezones.GetTimezoneName(anchor.Longitude, anchor.Latitude)
	}

	model := &MapModel{Anchor: anchor, Markers: []GeoPoint{}, Zoom: p.zoom}
	for _, point := range points[1:] {
		if DistanceKm(anchor, point) <= p.maxDistanceKm {
			model.Markers = append(model.Markers, point)
		}
	}
	span.SetAttributes(attribute.Int("response.markers", len(model.Markers)))
	return model, true
}
