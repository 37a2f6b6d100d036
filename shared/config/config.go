package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	AI       AIConfig       `yaml:"ai"`
	Search   SearchConfig   `yaml:"search"`
	Sessions SessionsConfig `yaml:"sessions"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr" env:"LISTEN_ADDR"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type YouTubeConfig struct {
	APIKey string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	// TokenFile is an OAuth2 token used instead of the API key when no key is set.
	TokenFile    string `yaml:"token_file"`
	ClientID     string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	Endpoint     string `yaml:"endpoint"`
}

type AIConfig struct {
	Provider      string `yaml:"provider"`
	GeminiAPIKey  string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	OpenAIAPIKey  string `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`
	GeminiBaseURL string `yaml:"gemini_base_url" env:"GEMINI_BASE_URL"`
	Model         string `yaml:"model"`
}

type SearchConfig struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"api_key" env:"GOOGLE_SEARCH_API_KEY"`
	EngineID   string `yaml:"engine_id" env:"GOOGLE_SEARCH_ENGINE_ID"`
	Endpoint   string `yaml:"endpoint"`
	MaxResults int    `yaml:"max_results"`
}

type SessionsConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepSchedule string        `yaml:"sweep_schedule"`
}

const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	SearchGoogle       = "google"
	SearchDuckDuckGo   = "duckduckgo"
	SearchDisabled     = "none"
	defaultConfigFile  = "config.yaml"
	defaultGeminiModel = "gemini-2.5-flash"
	defaultOpenAIModel = "gpt-4o-mini"
)

// Load reads config.yaml (or CONFIG_FILE) and .env, then applies environment
// overrides and defaults. A missing default config file is not an error; a
// missing CONFIG_FILE is. Missing credentials are left for the providers to
// report on first use.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	explicit := configFile != ""
	if !explicit {
		configFile = defaultConfigFile
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnv fills every empty string field tagged env:"NAME" from the
// environment. Values from the config file win.
func (c *Config) applyEnv() {
	applyEnvTags(reflect.ValueOf(c).Elem())
}

func applyEnvTags(v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		switch field.Kind() {
		case reflect.Struct:
			applyEnvTags(field)
		case reflect.String:
			key := t.Field(i).Tag.Get("env")
			if key != "" && field.String() == "" {
				field.SetString(strings.TrimSpace(os.Getenv(key)))
			}
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 2 * time.Minute
	}

	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	if c.AI.Provider == "" {
		c.AI.Provider = ProviderGemini
	}
	if c.AI.Model == "" {
		switch c.AI.Provider {
		case ProviderOpenAI:
			c.AI.Model = defaultOpenAIModel
		default:
			c.AI.Model = defaultGeminiModel
		}
	}

	c.Search.Provider = strings.ToLower(strings.TrimSpace(c.Search.Provider))
	if c.Search.Provider == "" {
		c.Search.Provider = SearchGoogle
	}
	if c.Search.MaxResults == 0 {
		c.Search.MaxResults = 5
	}

	if c.Sessions.IdleTimeout == 0 {
		c.Sessions.IdleTimeout = 30 * time.Minute
	}
	if c.Sessions.SweepSchedule == "" {
		c.Sessions.SweepSchedule = "@every 5m"
	}
}

func (c *Config) validate() error {
	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown AI provider %q (want %s or %s)", c.AI.Provider, ProviderGemini, ProviderOpenAI)
	}
	switch c.Search.Provider {
	case SearchGoogle, SearchDuckDuckGo, SearchDisabled:
	default:
		return fmt.Errorf("unknown search provider %q (want %s, %s or %s)", c.Search.Provider, SearchGoogle, SearchDuckDuckGo, SearchDisabled)
	}
	if c.Search.MaxResults < 1 || c.Search.MaxResults > 10 {
		return fmt.Errorf("search.max_results must be between 1 and 10, got %d", c.Search.MaxResults)
	}
	if c.Sessions.IdleTimeout < 0 {
		return fmt.Errorf("sessions.idle_timeout must not be negative")
	}
	if _, err := cron.ParseStandard(c.Sessions.SweepSchedule); err != nil {
		return fmt.Errorf("invalid sessions.sweep_schedule %q: %w", c.Sessions.SweepSchedule, err)
	}
	return nil
}
