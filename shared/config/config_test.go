package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LISTEN_ADDR", "YOUTUBE_API_KEY", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET",
		"GEMINI_API_KEY", "GEMINI_BASE_URL", "OPENAI_API_KEY", "OPENAI_BASE_URL",
		"GOOGLE_SEARCH_API_KEY", "GOOGLE_SEARCH_ENGINE_ID",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", writeConfig(t, "{}\n"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %s, want :8080", cfg.Server.Addr)
	}
	if cfg.AI.Provider != ProviderGemini {
		t.Errorf("AI.Provider = %s, want %s", cfg.AI.Provider, ProviderGemini)
	}
	if cfg.AI.Model != defaultGeminiModel {
		t.Errorf("AI.Model = %s, want %s", cfg.AI.Model, defaultGeminiModel)
	}
	if cfg.Search.Provider != SearchGoogle {
		t.Errorf("Search.Provider = %s, want %s", cfg.Search.Provider, SearchGoogle)
	}
	if cfg.Search.MaxResults != 5 {
		t.Errorf("Search.MaxResults = %d, want 5", cfg.Search.MaxResults)
	}
	if cfg.Sessions.IdleTimeout != 30*time.Minute {
		t.Errorf("Sessions.IdleTimeout = %v, want 30m", cfg.Sessions.IdleTimeout)
	}
}

func TestLoadMissingCredentialsIsNotAnError(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", writeConfig(t, "ai:\n  provider: gemini\n"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not fail without credentials: %v", err)
	}
	if cfg.AI.GeminiAPIKey != "" || cfg.YouTube.APIKey != "" {
		t.Error("Expected empty credentials")
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", writeConfig(t, `
server:
  addr: ":9000"
youtube:
  api_key: file-key
ai:
  provider: OpenAI
search:
  provider: duckduckgo
  max_results: 3
sessions:
  idle_timeout: 10m
  sweep_schedule: "*/2 * * * *"
`))
	t.Setenv("OPENAI_API_KEY", "env-openai")
	t.Setenv("YOUTUBE_API_KEY", "env-youtube")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %s, want :9000", cfg.Server.Addr)
	}
	if cfg.YouTube.APIKey != "file-key" {
		t.Errorf("file value should win over env, got %s", cfg.YouTube.APIKey)
	}
	if cfg.AI.OpenAIAPIKey != "env-openai" {
		t.Errorf("AI.OpenAIAPIKey = %s, want env-openai", cfg.AI.OpenAIAPIKey)
	}
	if cfg.AI.Provider != ProviderOpenAI {
		t.Errorf("AI.Provider = %s, want %s", cfg.AI.Provider, ProviderOpenAI)
	}
	if cfg.AI.Model != defaultOpenAIModel {
		t.Errorf("AI.Model = %s, want %s", cfg.AI.Model, defaultOpenAIModel)
	}
	if cfg.Search.MaxResults != 3 {
		t.Errorf("Search.MaxResults = %d, want 3", cfg.Search.MaxResults)
	}
	if cfg.Sessions.IdleTimeout != 10*time.Minute {
		t.Errorf("Sessions.IdleTimeout = %v, want 10m", cfg.Sessions.IdleTimeout)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"Unknown AI provider", "ai:\n  provider: llama-local\n", "unknown AI provider"},
		{"Unknown search provider", "search:\n  provider: bing\n", "unknown search provider"},
		{"Too many results", "search:\n  max_results: 50\n", "max_results"},
		{"Bad schedule", "sessions:\n  sweep_schedule: \"every now and then\"\n", "sweep_schedule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("CONFIG_FILE", writeConfig(t, tt.body))

			_, err := Load()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}

func TestLoadAppliesEveryEnvTag(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", writeConfig(t, "{}\n"))

	var tagged []string
	var collect func(reflect.Type)
	collect = func(typ reflect.Type) {
		for i := 0; i < typ.NumField(); i++ {
			field := typ.Field(i)
			if field.Type.Kind() == reflect.Struct {
				collect(field.Type)
				continue
			}
			if key := field.Tag.Get("env"); key != "" {
				tagged = append(tagged, key)
				t.Setenv(key, "env-"+key)
			}
		}
	}
	collect(reflect.TypeOf(Config{}))
	if len(tagged) == 0 {
		t.Fatal("Expected env-tagged fields")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := map[string]string{}
	var read func(reflect.Value)
	read = func(v reflect.Value) {
		for i := 0; i < v.NumField(); i++ {
			if v.Field(i).Kind() == reflect.Struct {
				read(v.Field(i))
				continue
			}
			if key := v.Type().Field(i).Tag.Get("env"); key != "" {
				got[key] = v.Field(i).String()
			}
		}
	}
	read(reflect.ValueOf(*cfg))

	for _, key := range tagged {
		if got[key] != "env-"+key {
			t.Errorf("%s not applied, field = %q", key, got[key])
		}
	}
}
