package maps

import (
	"bytes"
	"strings"
	"testing"

	tripper "github.com/koscakluka/tripper/core"
)

func TestRenderMarksEveryPointButTheAnchor(t *testing.T) {
	model := tripper.MapModel{
		Anchor: tripper.GeoPoint{Name: "Kyoto", Latitude: 35.0116, Longitude: 135.7681},
		Markers: []tripper.GeoPoint{
			{Name: "Kinkaku-ji", Latitude: 35.0394, Longitude: 135.7292},
			{Name: "Nishiki <Market>", Latitude: 35.005, Longitude: 135.7649},
		},
		Zoom: 12,
	}

	var out bytes.Buffer
	if err := Render(&out, model); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	html := out.String()

	if got := strings.Count(html, "L.marker("); got != 2 {
		t.Fatalf("expected 2 markers, got %d", got)
	}
	if !strings.Contains(compact(html), "setView([35.0116,135.7681],12)") {
		t.Fatalf("expected map centred on the anchor, got %s", html)
	}
	if strings.Contains(html, "bindTooltip(\"Kyoto\")") {
		t.Fatalf("anchor must not be marked")
	}
	if strings.Contains(html, "<Market>") {
		t.Fatalf("marker names must be escaped")
	}
}

func TestRenderAnchorOnly(t *testing.T) {
	model := tripper.MapModel{Anchor: tripper.GeoPoint{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522}}

	var out bytes.Buffer
	if err := Render(&out, model); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(out.String(), "L.marker(") {
		t.Fatalf("expected no markers")
	}
	if !strings.Contains(compact(out.String()), "setView([48.8566,2.3522],12)") {
		t.Fatalf("expected default zoom")
	}
}

func TestRenderCustomAssets(t *testing.T) {
	model := tripper.MapModel{Anchor: tripper.GeoPoint{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522}}

	var out bytes.Buffer
	err := Render(&out, model,
		WithLeafletURL("https://cdn.example.com/leaflet/"),
		WithTileURL(""),
	)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	html := out.String()
	if !strings.Contains(html, `href="https://cdn.example.com/leaflet/leaflet.css"`) {
		t.Fatalf("expected custom leaflet location, got %s", html)
	}
	if !strings.Contains(html, "tile.openstreetmap.org") {
		t.Fatalf("expected empty tile url to keep the default")
	}
}

func compact(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
