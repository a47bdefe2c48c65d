// Package server exposes chat, planning and maps over HTTP.
package server

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tripper "github.com/koscakluka/tripper/core"
	"github.com/koscakluka/tripper/core/maps"
	"github.com/koscakluka/tripper/core/speechtotext"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var logger = otelslog.NewLogger("github.com/koscakluka/tripper/internal/server")

const defaultSessionTTL = 2 * time.Hour

type Assistant interface {
	Submit(ctx context.Context, conv *tripper.Conversation, message string, audioOptIn bool, language string) iter.Seq[tripper.Conversation]
}

type Planner interface {
	Generate(ctx context.Context, constraints tripper.TripConstraints) (tripper.Plan, error)
	BuildMap(ctx context.Context, names tripper.PlaceList) (*tripper.MapModel, bool)
}

type Server struct {
	assistant   Assistant
	planner     Planner
	transcriber speechtotext.Transcriber

	audioDir   string
	mapOptions []maps.RenderOption
	sessionTTL time.Duration
	sessions   *sessionStore
}

type Option func(*Server)

// WithTranscriber enables the voice endpoint.
func WithTranscriber(transcriber speechtotext.Transcriber) Option {
	return func(s *Server) {
		s.transcriber = transcriber
	}
}

// WithAudioDir serves locally stored replies under /audio/.
func WithAudioDir(dir string) Option {
	return func(s *Server) {
		s.audioDir = dir
	}
}

// WithMapOptions configures the pages served by the map endpoint.
func WithMapOptions(opts ...maps.RenderOption) Option {
	return func(s *Server) {
		s.mapOptions = append(s.mapOptions, opts...)
	}
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

func New(assistant Assistant, planner Planner, opts ...Option) *Server {
	s := &Server{
		assistant:  assistant,
		planner:    planner,
		sessionTTL: defaultSessionTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sessions = newSessionStore(s.sessionTTL)
	return s
}

// Handler returns the routes of the API.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", s.health)

	api := r.Group("/api")
	api.GET("/languages", s.languages)
	api.GET("/currencies", s.currencies)
	api.POST("/sessions", s.createSession)
	api.GET("/sessions/:id", s.getSession)
	api.DELETE("/sessions/:id", s.deleteSession)
	api.POST("/sessions/:id/reset", s.resetSession)
	api.POST("/sessions/:id/chat", s.chat)
	api.POST("/sessions/:id/voice", s.voice)
	api.POST("/plan", s.plan)
	api.POST("/map", s.renderMap)

	if s.audioDir != "" {
		r.Static("/audio", s.audioDir)
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, listen string) error {
	srv := &http.Server{
		Addr:              listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "address", listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("request", attrs...)
		case status >= 400:
			logger.Warn("request", attrs...)
		default:
			logger.Debug("request", attrs...)
		}
	}
}
