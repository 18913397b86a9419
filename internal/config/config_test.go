package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range Keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SECRET_KEY", "s3cret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8000 || cfg.Host != "0.0.0.0" {
		t.Errorf("listener = %s:%d", cfg.Host, cfg.Port)
	}
	if cfg.FrontendURL != "http://localhost:3000" {
		t.Errorf("FrontendURL = %q", cfg.FrontendURL)
	}
	if cfg.Algorithm != "HS256" || cfg.TokenTTL() != 30*time.Minute {
		t.Errorf("token settings = %s %v", cfg.Algorithm, cfg.TokenTTL())
	}
	if cfg.Storage != StorageMemory || cfg.LLMProvider != ProviderOpenAI {
		t.Errorf("storage/provider = %s/%s", cfg.Storage, cfg.LLMProvider)
	}
	if cfg.Addr() != "0.0.0.0:8000" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := strings.Join([]string{
		"OPENAI_API_KEY=sk-file",
		"DEBUG=False",
		"HOST=127.0.0.1",
		"PORT=9001",
		"FRONTEND_URL=https://app.example.com",
		"ALGORITHM=HS512",
		"ACCESS_TOKEN_EXPIRE_MINUTES=120",
		"SECRET_KEY=from-file",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenAIAPIKey != "sk-file" || cfg.Debug {
		t.Errorf("key/debug = %q/%v", cfg.OpenAIAPIKey, cfg.Debug)
	}
	if cfg.Addr() != "127.0.0.1:9001" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
	if cfg.TokenTTL() != 2*time.Hour {
		t.Errorf("TokenTTL = %v", cfg.TokenTTL())
	}
	if cfg.SecretKey != "from-file" {
		t.Errorf("SecretKey = %q", cfg.SecretKey)
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadMissingSecretKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err == nil || !strings.Contains(err.Error(), "SECRET_KEY") {
		t.Fatalf("err = %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		OpenAIAPIKey:             "sk",
		Host:                     "0.0.0.0",
		Port:                     8000,
		FrontendURL:              "http://localhost:3000",
		MongoDBURL:               "mongodb://localhost:27017",
		DatabaseName:             "db",
		SecretKey:                "s3cret",
		Algorithm:                "HS256",
		AccessTokenExpireMinutes: 30,
		LLMProvider:              ProviderOpenAI,
		LLMMaxRetries:            3,
		Storage:                  StorageMemory,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("base config invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Port = 70000 }, "PORT"},
		{"frontend", func(c *Config) { c.FrontendURL = "localhost" }, "FRONTEND_URL"},
		{"secret key", func(c *Config) { c.SecretKey = "  " }, "SECRET_KEY"},
		{"algorithm", func(c *Config) { c.Algorithm = "ROT13" }, "ALGORITHM"},
		{"expiry", func(c *Config) { c.AccessTokenExpireMinutes = 0 }, "ACCESS_TOKEN_EXPIRE_MINUTES"},
		{"provider", func(c *Config) { c.LLMProvider = "claude" }, "LLM_PROVIDER"},
		{"gemini key", func(c *Config) { c.LLMProvider = ProviderGemini }, "GEMINI_API_KEY"},
		{"storage", func(c *Config) { c.Storage = "redis" }, "STORAGE"},
		{"mongo url", func(c *Config) { c.Storage = StorageMongo; c.MongoDBURL = "postgres://x" }, "MONGODB_URL"},
		{"retries", func(c *Config) { c.LLMMaxRetries = 0 }, "LLM_MAX_RETRIES"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want mention of %s", err, tt.want)
			}
		})
	}
}
