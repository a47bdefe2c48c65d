// Package geocoding resolves place names to coordinates.
package geocoding

import (
	"context"
	"strings"
)

// Point is a resolved place.
type Point struct {
	// Name is the name the point was resolved from
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Geocoder resolves a free-form place name. ok is false when the name is
// unknown; errors are reserved for failures to reach the service.
type Geocoder interface {
	Resolve(ctx context.Context, name string) (point Point, ok bool, err error)
}

// GeocoderFunc adapts a function to the Geocoder interface.
type GeocoderFunc func(ctx context.Context, name string) (Point, bool, error)

func (f GeocoderFunc) Resolve(ctx context.Context, name string) (Point, bool, error) {
	return f(ctx, name)
}

// normalizeName folds a name into a cache key.
func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
