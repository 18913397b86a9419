package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

type Config struct {
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	Debug        bool   `envconfig:"DEBUG" default:"false"`
	Host         string `envconfig:"HOST" default:"0.0.0.0"`
	Port         int    `envconfig:"PORT" default:"8000"`
	FrontendURL  string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
	MongoDBURL   string `envconfig:"MONGODB_URL" default:"mongodb://localhost:27017"`
	DatabaseName string `envconfig:"DATABASE_NAME" default:"project_scheduling"`

	SecretKey                string `envconfig:"SECRET_KEY"`
	Algorithm                string `envconfig:"ALGORITHM" default:"HS256"`
	AccessTokenExpireMinutes int    `envconfig:"ACCESS_TOKEN_EXPIRE_MINUTES" default:"30"`

	LLMProvider   string        `envconfig:"LLM_PROVIDER" default:"openai"`
	OpenAIModel   string        `envconfig:"OPENAI_MODEL" default:"gpt-4-turbo"`
	OpenAIBaseURL string        `envconfig:"OPENAI_BASE_URL"`
	GeminiAPIKey  string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel   string        `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	LLMMaxRetries int           `envconfig:"LLM_MAX_RETRIES" default:"3"`
	LLMTimeout    time.Duration `envconfig:"LLM_TIMEOUT" default:"2m"`

	Storage  string `envconfig:"STORAGE" default:"memory"`
	LogFile  string `envconfig:"LOG_FILE"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Keys lists every environment key the service reads.
var Keys = []string{
	"OPENAI_API_KEY", "DEBUG", "HOST", "PORT", "FRONTEND_URL",
	"MONGODB_URL", "DATABASE_NAME", "SECRET_KEY", "ALGORITHM",
	"ACCESS_TOKEN_EXPIRE_MINUTES", "LLM_PROVIDER", "OPENAI_MODEL",
	"OPENAI_BASE_URL", "GEMINI_API_KEY", "GEMINI_MODEL", "LLM_MAX_RETRIES",
	"LLM_TIMEOUT", "STORAGE", "LOG_FILE", "LOG_LEVEL",
}

// Load reads .env when present, then the process environment.
func Load(envFiles ...string) (Config, error) {
	_ = godotenv.Load(envFiles...)
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if strings.TrimSpace(c.Host) == "" {
		errs = append(errs, errors.New("HOST is empty"))
	}
	if u, err := url.Parse(c.FrontendURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("FRONTEND_URL is not an absolute URL: %q", c.FrontendURL))
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		errs = append(errs, errors.New("SECRET_KEY is empty"))
	}
	if jwt.GetSigningMethod(c.Algorithm) == nil {
		errs = append(errs, fmt.Errorf("ALGORITHM is not a known signing method: %q", c.Algorithm))
	}
	if c.AccessTokenExpireMinutes <= 0 {
		errs = append(errs, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive: %d", c.AccessTokenExpireMinutes))
	}

	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY environment variable is required"))
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY environment variable is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be %q or %q: %q", ProviderOpenAI, ProviderGemini, c.LLMProvider))
	}
	if c.LLMMaxRetries < 1 {
		errs = append(errs, fmt.Errorf("LLM_MAX_RETRIES must be at least 1: %d", c.LLMMaxRetries))
	}

	switch c.Storage {
	case StorageMemory:
	case StorageMongo:
		if !strings.HasPrefix(c.MongoDBURL, "mongodb://") && !strings.HasPrefix(c.MongoDBURL, "mongodb+srv://") {
			errs = append(errs, fmt.Errorf("MONGODB_URL is not a mongodb URI: %q", c.MongoDBURL))
		}
		if c.DatabaseName == "" {
			errs = append(errs, errors.New("DATABASE_NAME is empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE must be %q or %q: %q", StorageMemory, StorageMongo, c.Storage))
	}

	return errors.Join(errs...)
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}
