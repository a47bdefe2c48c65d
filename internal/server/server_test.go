package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	tripper "github.com/koscakluka/tripper/core"
	"github.com/koscakluka/tripper/core/llms"
	"github.com/koscakluka/tripper/core/maps"
	"github.com/koscakluka/tripper/core/speechtotext"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type contentChunk string

func (c contentChunk) FinishReason() *string { return nil }
func (c contentChunk) Content() string       { return string(c) }

type stubStream []string

func (s stubStream) Chunks(context.Context) func(func(llms.StreamChunk, error) bool) {
	return func(yield func(llms.StreamChunk, error) bool) {
		for _, piece := range s {
			if !yield(contentChunk(piece), nil) {
				return
			}
		}
	}
}

type stubLLM struct {
	pieces []string
	calls  atomic.Int32
}

func (l *stubLLM) PromptWithStream(context.Context, *string, ...llms.PromptOption) llms.Stream {
	l.calls.Add(1)
	return stubStream(l.pieces)
}

type stubPlanner struct {
	plan  tripper.Plan
	err   error
	model *tripper.MapModel
	seen  tripper.TripConstraints
}

func (p *stubPlanner) Generate(_ context.Context, constraints tripper.TripConstraints) (tripper.Plan, error) {
	p.seen = constraints
	if err := constraints.Validate(); err != nil {
		return tripper.Plan{}, err
	}
	return p.plan, p.err
}

func (p *stubPlanner) BuildMap(context.Context, tripper.PlaceList) (*tripper.MapModel, bool) {
	return p.model, p.model != nil
}

type stubTranscriber struct {
	text string
	err  error
}

func (t stubTranscriber) Transcribe(context.Context, []byte, string) (string, error) {
	return t.text, t.err
}

func newTestServer(llm *stubLLM, planner *stubPlanner, opts ...Option) http.Handler {
	return New(tripper.NewAssistant(llm), planner, opts...).Handler()
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.ID == "" {
		t.Fatalf("unexpected session response %s", rec.Body.String())
	}
	return resp.ID
}

func TestChatStreamsSnapshots(t *testing.T) {
	llm := &stubLLM{pieces: []string{"Hel", "lo"}}
	h := newTestServer(llm, &stubPlanner{})
	id := createSession(t, h)

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"message": "Hi", "language": "🇬🇧 English"}`)
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/chat", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.Count(rec.Body.String(), "event:conversation"); got != 2 {
		t.Fatalf("expected 2 conversation events, got %d in %s", got, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"text":"Hello"`) {
		t.Fatalf("expected full reply in stream, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil))
	if !strings.Contains(rec.Body.String(), `"user":"Hi"`) {
		t.Fatalf("expected stored history, got %s", rec.Body.String())
	}
}

func TestChatRejectsBlankMessage(t *testing.T) {
	llm := &stubLLM{}
	h := newTestServer(llm, &stubPlanner{})
	id := createSession(t, h)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/chat", strings.NewReader(`{"message": "  "}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if llm.calls.Load() != 0 {
		t.Fatalf("expected no completion request")
	}
}

func TestChatUnknownSession(t *testing.T) {
	h := newTestServer(&stubLLM{}, &stubPlanner{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/missing/chat", strings.NewReader(`{"message": "Hi"}`)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestResetSession(t *testing.T) {
	h := newTestServer(&stubLLM{pieces: []string{"ok"}}, &stubPlanner{})
	id := createSession(t, h)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/chat", strings.NewReader(`{"message": "Hi"}`)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/reset", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil))
	if rec.Body.String() != `{"turns":[]}` {
		t.Fatalf("expected empty history, got %s", rec.Body.String())
	}
}

func TestDeleteSession(t *testing.T) {
	h := newTestServer(&stubLLM{}, &stubPlanner{})
	id := createSession(t, h)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected deleted session to be gone, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected second delete to be 404, got %d", rec.Code)
	}
}

func voiceRequest(t *testing.T, id string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("audio", "voice.wav")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	_, _ = part.Write([]byte("RIFF"))
	_ = w.WriteField("language", "🇩🇪 Deutsch")
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/voice", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestVoiceUsesFailureTextAsMessage(t *testing.T) {
	h := newTestServer(&stubLLM{pieces: []string{"Sorry"}}, &stubPlanner{},
		WithTranscriber(stubTranscriber{err: speechtotext.ErrUnintelligible}))
	id := createSession(t, h)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, voiceRequest(t, id))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"user":"Cannot read voice"`) {
		t.Fatalf("expected failure text as user message, got %s", rec.Body.String())
	}
}

func TestVoiceWithoutTranscriber(t *testing.T) {
	h := newTestServer(&stubLLM{}, &stubPlanner{})
	id := createSession(t, h)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, voiceRequest(t, id))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestPlanValidationError(t *testing.T) {
	h := newTestServer(&stubLLM{}, &stubPlanner{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/plan", strings.NewReader(`{"interests": "food"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp PlanResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error != tripper.ErrMissingDestination.Message {
		t.Fatalf("unexpected error message %q", resp.Error)
	}
}

func TestPlanClampsBudget(t *testing.T) {
	planner := &stubPlanner{plan: tripper.Plan{Itinerary: "Day 1", Places: tripper.PlaceList{"Tokyo"}}}
	h := newTestServer(&stubLLM{}, planner)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/plan",
		strings.NewReader(`{"destination": "Tokyo", "budget": 500, "currency": "jpy"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if planner.seen.Budget != 10000 || planner.seen.Currency != "JPY" {
		t.Fatalf("expected clamped JPY budget, got %+v", planner.seen)
	}
}

func TestMapEndpoint(t *testing.T) {
	planner := &stubPlanner{}
	h := newTestServer(&stubLLM{}, planner)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/map", strings.NewReader(`{"places": ["Atlantis"]}`)))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	planner.model = &tripper.MapModel{
		Anchor:  tripper.GeoPoint{Name: "Kyoto", Latitude: 35.0116, Longitude: 135.7681},
		Markers: []tripper.GeoPoint{{Name: "Gion", Latitude: 35.0037, Longitude: 135.7788}},
		Zoom:    12,
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/map", strings.NewReader(`{"places": ["Kyoto", "Gion"]}`)))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "L.marker(") {
		t.Fatalf("expected map page, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestMapEndpointUsesConfiguredTiles(t *testing.T) {
	planner := &stubPlanner{model: &tripper.MapModel{
		Anchor:  tripper.GeoPoint{Name: "Kyoto", Latitude: 35.0116, Longitude: 135.7681},
		Markers: []tripper.GeoPoint{},
	}}
	h := newTestServer(&stubLLM{}, planner,
		WithMapOptions(maps.WithTileURL("https://tiles.example.com/{z}/{x}/{y}.png")))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/map", strings.NewReader(`{"places": ["Kyoto", "Atlantis"]}`)))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "tiles.example.com") {
		t.Fatalf("expected configured tile server, got %d %s", rec.Code, rec.Body.String())
	}
}
