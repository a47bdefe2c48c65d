package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "TRIPPER"

// apiKeyEnv binds the conventional provider variables next to the prefixed
// ones.
var apiKeyEnv = map[string]string{
	"llm.groq_api_key":        "GROQ_API_KEY",
	"llm.openai_api_key":      "OPENAI_API_KEY",
	"speech.deepgram_api_key": "DEEPGRAM_API_KEY",
}

// InitViper returns a viper instance with defaults registered, the config
// file read when present and environment variables bound.
//
// Precedence, highest first: flags bound by the caller, TRIPPER_* variables,
// the config file, defaults. A .env file in the working directory is loaded
// into the environment first and never overrides variables already set.
func InitViper(configFile string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setViperDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("tripper")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range apiKeyEnv {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	return v, nil
}

// Load reads the configuration using InitViper.
func Load(configFile string) (*Config, error) {
	v, err := InitViper(configFile)
	if err != nil {
		return nil, err
	}
	return Decode(v)
}

// Decode unmarshals v into a Config and checks it.
func Decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "groq", "openai":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	switch c.Speech.Transcriber {
	case "deepgram", "google":
	default:
		return fmt.Errorf("unknown transcriber %q", c.Speech.Transcriber)
	}
	switch c.Storage.Provider {
	case "local":
	case "gcs":
		if c.Storage.Bucket == "" {
			return errors.New("storage.bucket is required for gcs storage")
		}
	default:
		return fmt.Errorf("unknown storage provider %q", c.Storage.Provider)
	}
	if c.Chat.ContextDepth < 1 {
		return fmt.Errorf("chat.context_depth must be positive, got %d", c.Chat.ContextDepth)
	}
	if c.Map.MaxDistanceKm <= 0 {
		return fmt.Errorf("map.max_distance_km must be positive, got %v", c.Map.MaxDistanceKm)
	}
	return nil
}

// APIKey returns the key for the configured completion provider.
func (c LLMConfig) APIKey() string {
	if c.Provider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.GroqAPIKey
}

func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.chat_model", d.LLM.ChatModel)
	v.SetDefault("llm.plan_model", d.LLM.PlanModel)
	v.SetDefault("llm.extract_model", d.LLM.ExtractModel)
	v.SetDefault("llm.structured_extraction", d.LLM.StructuredExtraction)
	v.SetDefault("llm.groq_api_key", "")
	v.SetDefault("llm.openai_api_key", "")

	v.SetDefault("chat.context_depth", d.Chat.ContextDepth)
	v.SetDefault("chat.temperature", d.Chat.Temperature)
	v.SetDefault("chat.top_p", d.Chat.TopP)
	v.SetDefault("chat.max_tokens", d.Chat.MaxTokens)
	v.SetDefault("chat.persona", d.Chat.Persona)

	v.SetDefault("map.max_distance_km", d.Map.MaxDistanceKm)
	v.SetDefault("map.zoom", d.Map.Zoom)
	v.SetDefault("map.timezones", d.Map.Timezones)
	v.SetDefault("map.leaflet_url", d.Map.LeafletURL)
	v.SetDefault("map.tile_url", d.Map.TileURL)

	v.SetDefault("geocoder.base_url", d.Geocoder.BaseURL)
	v.SetDefault("geocoder.user_agent", d.Geocoder.UserAgent)
	v.SetDefault("geocoder.cache_ttl", d.Geocoder.CacheTTL)
	v.SetDefault("geocoder.redis_url", d.Geocoder.RedisURL)

	v.SetDefault("speech.transcriber", d.Speech.Transcriber)
	v.SetDefault("speech.transcribe_model", d.Speech.TranscribeModel)
	v.SetDefault("speech.voice_model", d.Speech.VoiceModel)
	v.SetDefault("speech.deepgram_api_key", "")

	v.SetDefault("storage.provider", d.Storage.Provider)
	v.SetDefault("storage.dir", d.Storage.Dir)
	v.SetDefault("storage.bucket", d.Storage.Bucket)
	v.SetDefault("storage.prefix", d.Storage.Prefix)

	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.session_ttl", d.Server.SessionTTL)
}
