// Package app builds the tripper services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tripper "github.com/koscakluka/tripper/core"
	"github.com/koscakluka/tripper/core/geocoding"
	"github.com/koscakluka/tripper/core/geocoding/nominatim"
	"github.com/koscakluka/tripper/core/llms/groq"
	"github.com/koscakluka/tripper/core/llms/openai"
	"github.com/koscakluka/tripper/core/maps"
	"github.com/koscakluka/tripper/core/speechtotext"
	deepgramstt "github.com/koscakluka/tripper/core/speechtotext/deepgram"
	"github.com/koscakluka/tripper/core/speechtotext/google"
	"github.com/koscakluka/tripper/core/storage"
	"github.com/koscakluka/tripper/core/texttospeech"
	deepgramtts "github.com/koscakluka/tripper/core/texttospeech/deepgram"
	"github.com/koscakluka/tripper/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/ringsaturn/tzf"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var logger = otelslog.NewLogger("github.com/koscakluka/tripper/internal/app")

// AudioURLPrefix is where locally stored replies are served.
const AudioURLPrefix = "/audio/"

// llm is what every completion client offers.
type llm interface {
	tripper.LLMWithStream
	tripper.LLMWithGeneralPrompt
	tripper.LLMWithStructuredPrompt
}

// App holds the services shared by the CLI commands and the HTTP server.
// Voice services are nil when their backends are not configured.
type App struct {
	Config *config.Config

	Assistant   *tripper.Assistant
	Planner     *tripper.Planner
	Transcriber speechtotext.Transcriber
	Store       storage.Store
	// AudioDir is set when replies are stored on the local filesystem
	AudioDir string
	// MapOptions configures rendered map pages
	MapOptions []maps.RenderOption

	closers []func() error
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{
		Config: cfg,
		MapOptions: []maps.RenderOption{
			maps.WithLeafletURL(cfg.Map.LeafletURL),
			maps.WithTileURL(cfg.Map.TileURL),
		},
	}

	if cfg.LLM.APIKey() == "" {
		return nil, fmt.Errorf("missing api key for llm provider %q", cfg.LLM.Provider)
	}
	chatLLM := a.newLLM(cfg.LLM.ChatModel)
	planLLM := a.newLLM(cfg.LLM.PlanModel)
	extractLLM := planLLM
	if cfg.LLM.ExtractModel != "" && cfg.LLM.ExtractModel != cfg.LLM.PlanModel {
		extractLLM = a.newLLM(cfg.LLM.ExtractModel)
	}

	geocoder, err := a.newGeocoder()
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}

	plannerOpts := []tripper.PlannerOption{
		tripper.WithGeocoder(geocoder),
		tripper.WithExtractionLLM(extractLLM),
		tripper.WithMaxDistanceKm(cfg.Map.MaxDistanceKm),
		tripper.WithMapZoom(cfg.Map.Zoom),
	}
	if cfg.LLM.StructuredExtraction {
		plannerOpts = append(plannerOpts, tripper.WithStructuredExtraction())
	}
	if cfg.Map.Timezones {
		finder, err := tzf.NewDefaultFinder()
		if err != nil {
			logger.Warn("timezone finder unavailable", "error", err)
		} else {
			plannerOpts = append(plannerOpts, tripper.WithTimezoneFinder(finder))
		}
	}
	a.Planner = tripper.NewPlanner(planLLM, plannerOpts...)

	assistantOpts := []tripper.AssistantOption{
		tripper.WithContextDepth(cfg.Chat.ContextDepth),
		tripper.WithChatSampling(cfg.Chat.Temperature, cfg.Chat.TopP, cfg.Chat.MaxTokens),
		tripper.WithPersona(cfg.Chat.Persona),
	}
	if cfg.Speech.DeepgramAPIKey != "" {
		var ttsOpts []deepgramtts.ClientOption
		if cfg.Speech.VoiceModel != "" {
			ttsOpts = append(ttsOpts, deepgramtts.WithOptions(texttospeech.WithDefaultVoice(cfg.Speech.VoiceModel)))
		}
		synthesizer, err := deepgramtts.NewTextToSpeechClient(cfg.Speech.DeepgramAPIKey, ttsOpts...)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("failed to create synthesizer: %w", err), a.Close())
		}
		if a.Store, err = a.newStore(ctx); err != nil {
			return nil, errors.Join(err, a.Close())
		}
		assistantOpts = append(assistantOpts, tripper.WithVoice(synthesizer, a.Store))
	} else {
		logger.Info("no deepgram api key, voice replies disabled")
	}
	a.Assistant = tripper.NewAssistant(chatLLM, assistantOpts...)

	if a.Transcriber, err = a.newTranscriber(ctx); err != nil {
		logger.Warn("transcription disabled", "error", err)
	}

	return a, nil
}

// Close releases clients opened by New.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) newLLM(model string) llm {
	cfg := a.Config.LLM
	if cfg.Provider == "openai" {
		var opts []openai.ClientOption
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.NewClient(cfg.OpenAIAPIKey, model, opts...)
	}

	var opts []groq.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, groq.WithURL(strings.TrimRight(cfg.BaseURL, "/")+"/chat/completions"))
	}
	return groq.NewClient(cfg.GroqAPIKey, model, opts...)
}

func (a *App) newGeocoder() (geocoding.Geocoder, error) {
	cfg := a.Config.Geocoder
	client := nominatim.NewClient(
		nominatim.WithBaseURL(cfg.BaseURL),
		nominatim.WithUserAgent(cfg.UserAgent),
	)
	if cfg.CacheTTL <= 0 {
		return client, nil
	}

	var cache geocoding.Cache
	if cfg.RedisURL != "" {
		rdb, err := newRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb.Close)
		cache = geocoding.NewRedisCache(rdb)
	} else {
		cache = geocoding.NewMemoryCache(cfg.CacheTTL, 10*time.Minute)
	}
	return geocoding.NewCached(client, cache, cfg.CacheTTL), nil
}

func newRedisClient(addr string) (*redis.Client, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

func (a *App) newStore(ctx context.Context) (storage.Store, error) {
	cfg := a.Config.Storage
	if cfg.Provider == "gcs" {
		store, err := storage.NewGCSStore(ctx, cfg.Bucket, storage.WithObjectPrefix(cfg.Prefix), storage.WithPublicRead())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	}

	store, err := storage.NewLocalStore(cfg.Dir, AudioURLPrefix)
	if err != nil {
		return nil, err
	}
	a.AudioDir = store.Dir()
	return store, nil
}

func (a *App) newTranscriber(ctx context.Context) (speechtotext.Transcriber, error) {
	cfg := a.Config.Speech
	if cfg.Transcriber == "google" {
		client, err := google.NewGoogleSpeech(ctx)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return client, nil
	}

	if cfg.DeepgramAPIKey == "" {
		return nil, errors.New("no deepgram api key")
	}
	client, err := deepgramstt.NewTranscriptionClient(cfg.DeepgramAPIKey, deepgramstt.WithModel(cfg.TranscribeModel))
	if err != nil {
		return nil, err
	}
	return client, nil
}
