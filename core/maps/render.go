// Package maps renders map models as standalone Leaflet pages.
package maps

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	tripper "github.com/koscakluka/tripper/core"
)

const (
	DefaultLeafletURL = "https://unpkg.com/leaflet@1.9.4/dist"
	DefaultTileURL    = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
)

//go:embed map.html.tmpl
var pageTemplate string

var page = template.Must(template.New("map").Parse(pageTemplate))

type RenderOptions struct {
	LeafletURL string
	TileURL    string
}

type RenderOption func(*RenderOptions)

// WithLeafletURL loads Leaflet from another location. Empty keeps the default.
func WithLeafletURL(url string) RenderOption {
	return func(o *RenderOptions) {
		if url != "" {
			o.LeafletURL = strings.TrimRight(url, "/")
		}
	}
}

// WithTileURL uses another tile server. Empty keeps the default.
func WithTileURL(url string) RenderOption {
	return func(o *RenderOptions) {
		if url != "" {
			o.TileURL = url
		}
	}
}

// Render writes an HTML page centred on the anchor with one tooltip marker
// per point in model.Markers.
func Render(w io.Writer, model tripper.MapModel, opts ...RenderOption) error {
	options := RenderOptions{
		LeafletURL: DefaultLeafletURL,
		TileURL:    DefaultTileURL,
	}
	for _, opt := range opts {
		opt(&options)
	}

	zoom := model.Zoom
	if zoom <= 0 {
		zoom = tripper.DefaultMapZoom
	}

	data := struct {
		tripper.MapModel
		LeafletURL string
		TileURL    string
	}{
		MapModel:   model,
		LeafletURL: options.LeafletURL,
		TileURL:    options.TileURL,
	}
	data.Zoom = zoom

	if err := page.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render map: %w", err)
	}
	return nil
}
