// Package config loads tripper settings from defaults, an optional
// tripper.toml, a .env file and TRIPPER_ environment variables.
package config

import (
	"time"
)

type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Map      MapConfig      `mapstructure:"map"`
	Geocoder GeocoderConfig `mapstructure:"geocoder"`
	Speech   SpeechConfig   `mapstructure:"speech"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Server   ServerConfig   `mapstructure:"server"`
}

// LLMConfig selects the completion service. Provider is "groq" or "openai".
type LLMConfig struct {
	Provider     string `mapstructure:"provider"`
	BaseURL      string `mapstructure:"base_url"`
	ChatModel    string `mapstructure:"chat_model"`
	PlanModel    string `mapstructure:"plan_model"`
	ExtractModel string `mapstructure:"extract_model"`
	// StructuredExtraction asks for places as a JSON list
	StructuredExtraction bool `mapstructure:"structured_extraction"`

	GroqAPIKey   string `mapstructure:"groq_api_key"`
	OpenAIAPIKey string `mapstructure:"openai_api_key"`
}

type ChatConfig struct {
	ContextDepth int     `mapstructure:"context_depth"`
	Temperature  float64 `mapstructure:"temperature"`
	TopP         float64 `mapstructure:"top_p"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	// Persona replaces the built-in travel guide prompt when set
	Persona string `mapstructure:"persona"`
}

type MapConfig struct {
	MaxDistanceKm float64 `mapstructure:"max_distance_km"`
	Zoom          int     `mapstructure:"zoom"`
	// Timezones annotates the map anchor with its timezone
	Timezones bool `mapstructure:"timezones"`
	// LeafletURL and TileURL override the assets of rendered map pages
	LeafletURL string `mapstructure:"leaflet_url"`
	TileURL    string `mapstructure:"tile_url"`
}

type GeocoderConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	// RedisURL switches the geocode cache from memory to redis
	RedisURL string `mapstructure:"redis_url"`
}

// SpeechConfig selects voice backends. Transcriber is "deepgram" or "google".
type SpeechConfig struct {
	Transcriber     string `mapstructure:"transcriber"`
	TranscribeModel string `mapstructure:"transcribe_model"`
	VoiceModel      string `mapstructure:"voice_model"`

	DeepgramAPIKey string `mapstructure:"deepgram_api_key"`
}

// StorageConfig selects where synthesized replies are kept. Provider is
// "local" or "gcs".
type StorageConfig struct {
	Provider string `mapstructure:"provider"`
	Dir      string `mapstructure:"dir"`
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen"`
	// SessionTTL is how long an idle chat session is kept
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}
