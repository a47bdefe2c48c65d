package config

import "time"

const (
	defaultProvider     = "groq"
	defaultChatModel    = "llama-3.3-70b-versatile"
	defaultPlanModel    = "llama3-70b-8192"
	defaultContextDepth = 3
	defaultTemperature  = 0.7
	defaultTopP         = 0.9
	defaultMaxTokens    = 5000

	defaultMaxDistanceKm = 500
	defaultZoom          = 12

	defaultGeocoderURL       = "https://nominatim.openstreetmap.org"
	defaultGeocoderUserAgent = "trip-planner"
	defaultGeocoderCacheTTL  = 24 * time.Hour

	defaultTranscriber     = "deepgram"
	defaultTranscribeModel = "nova-2"

	defaultStorageProvider = "local"
	defaultStorageDir      = "audio"

	defaultListen     = ":8080"
	defaultSessionTTL = 2 * time.Hour
)

// NewDefaultConfig returns a Config with defaults for all fields.
func NewDefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:     defaultProvider,
			ChatModel:    defaultChatModel,
			PlanModel:    defaultPlanModel,
			ExtractModel: defaultPlanModel,
		},
		Chat: ChatConfig{
			ContextDepth: defaultContextDepth,
			Temperature:  defaultTemperature,
			TopP:         defaultTopP,
			MaxTokens:    defaultMaxTokens,
		},
		Map: MapConfig{
			MaxDistanceKm: defaultMaxDistanceKm,
			Zoom:          defaultZoom,
			Timezones:     true,
		},
		Geocoder: GeocoderConfig{
			BaseURL:   defaultGeocoderURL,
			UserAgent: defaultGeocoderUserAgent,
			CacheTTL:  defaultGeocoderCacheTTL,
		},
		Speech: SpeechConfig{
			Transcriber:     defaultTranscriber,
			TranscribeModel: defaultTranscribeModel,
		},
		Storage: StorageConfig{
			Provider: defaultStorageProvider,
			Dir:      defaultStorageDir,
		},
		Server: ServerConfig{
			Listen:     defaultListen,
			SessionTTL: defaultSessionTTL,
		},
	}
}
