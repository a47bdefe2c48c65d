package geocoding

import (
	"context"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const scopeName = "github.com/koscakluka/tripper/core/geocoding"

var (
	tracer = otel.Tracer(scopeName)
	logger = otelslog.NewLogger(scopeName)
)

const keyPrefix = "geocode:"

type cacheEntry struct {
	Found bool  `json:"found"`
	Point Point `json:"point"`
}

// Cached remembers both hits and misses of the wrapped geocoder. Transport
// errors are not cached.
type Cached struct {
	geocoder Geocoder
	cache    Cache
	ttl      time.Duration
	missTTL  time.Duration
}

type CachedOption func(*Cached)

// WithMissTTL sets how long unknown names are remembered, zero disables
// caching of misses.
func WithMissTTL(ttl time.Duration) CachedOption {
	return func(c *Cached) {
		c.missTTL = ttl
	}
}

func NewCached(geocoder Geocoder, cache Cache, ttl time.Duration, opts ...CachedOption) *Cached {
	c := &Cached{
		geocoder: geocoder,
		cache:    cache,
		ttl:      ttl,
		missTTL:  ttl,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cached) Resolve(ctx context.Context, name string) (Point, bool, error) {
	ctx, span := tracer.Start(ctx, "resolve cached place")
	defer span.End()

	key := keyPrefix + normalizeName(name)
	span.SetAttributes(attribute.String("cache.key", key))

	var entry cacheEntry
	hit, err := c.cache.GetJSON(ctx, key, &entry)
	if err != nil {
		logger.WarnContext(ctx, "geocode cache read failed", "key", key, "error", err)
	}
	if hit {
		span.AddEvent("cache hit")
		if entry.Found {
			entry.Point.Name = name
		}
		return entry.Point, entry.Found, nil
	}

	point, ok, err := c.geocoder.Resolve(ctx, name)
	if err != nil {
		span.RecordError(err)
		return Point{}, false, err
	}

	ttl := c.ttl
	if !ok {
		ttl = c.missTTL
	}
	if ok || c.missTTL > 0 {
		if err := c.cache.SetJSON(ctx, key, cacheEntry{Found: ok, Point: point}, ttl); err != nil {
			logger.WarnContext(ctx, "geocode cache write failed", "key", key, "error", err)
		}
	}
	return point, ok, nil
}
