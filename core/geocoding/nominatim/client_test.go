package nominatim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("format") != "jsonv2" || query.Get("limit") != "1" {
			t.Errorf("unexpected query %v", query)
		}
		if r.Header.Get("User-Agent") != DefaultUserAgent {
			t.Errorf("expected user agent %q, got %q", DefaultUserAgent, r.Header.Get("User-Agent"))
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestResolveReturnsFirstResult(t *testing.T) {
	server := newTestServer(t, `[{"lat":"35.0116","lon":"135.7681","display_name":"Kyoto, Japan"}]`, http.StatusOK)
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithRateLimit(0))
	point, ok, err := client.Resolve(context.Background(), "Kyoto")
	if err != nil || !ok {
		t.Fatalf("expected Kyoto to resolve, got ok=%v err=%v", ok, err)
	}
	if point.Name != "Kyoto" || point.Latitude != 35.0116 || point.Longitude != 135.7681 {
		t.Fatalf("unexpected point %+v", point)
	}
}

func TestResolveUnknownPlaceIsAbsent(t *testing.T) {
	server := newTestServer(t, `[]`, http.StatusOK)
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithRateLimit(0))
	if _, ok, err := client.Resolve(context.Background(), "Atlantis"); ok || err != nil {
		t.Fatalf("expected absent place without error, got ok=%v err=%v", ok, err)
	}
}

func TestResolveServerErrorIsReturned(t *testing.T) {
	server := newTestServer(t, `busy`, http.StatusServiceUnavailable)
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithRateLimit(0))
	if _, ok, err := client.Resolve(context.Background(), "Kyoto"); ok || err == nil {
		t.Fatalf("expected transport error, got ok=%v err=%v", ok, err)
	}
}
