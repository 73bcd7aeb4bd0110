package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every setting the generation pipeline reads. It is loaded
// once at startup and passed down explicitly; no package reads the
// environment after this point.
type Config struct {
	AppEnv string
	Port   string

	// Provider settings.
	OpenAIAPIKey  string
	OpenAIBaseURL string
	Model         string
	APIMode       string // auto | chat | responses
	GPT5Images    bool

	// Prompt and sampling settings.
	SystemPrompt     string
	MaxTokens        int
	Temperature      float64
	TopP             float64
	PresencePenalty  float64
	FrequencyPenalty float64
	StopSequences    []string

	// Image resolution.
	UploadBaseURL string
	UploadDir     string

	// Job store and workers.
	JobTTL     time.Duration
	JobWorkers int

	// Timeouts. The provider timeout must tolerate multi-minute
	// generations; it is deliberately in a different league from the
	// server-side read/write timeouts.
	ProviderTimeout  time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// AuthToken guards the generation endpoints. Empty disables the check
	// (local development).
	AuthToken string

	// AllowedOrigins lists the editor origins permitted to call the API
	// from a browser. Empty disables CORS handling entirely.
	AllowedOrigins []string

	DefaultLocale string
}

// LoadConfig reads configuration from the environment, with .env files as
// an optional convenience.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env", ".env.local")

	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		Model:            getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		APIMode:          normalizeAPIMode(os.Getenv("OPENAI_API_MODE")),
		GPT5Images:       getEnvBool("OPENAI_GPT5_IMAGES", false),
		SystemPrompt:     os.Getenv("SYSTEM_PROMPT"),
		MaxTokens:        clampInt(getEnvInt("MAX_TOKENS", 16000), 1, 200000),
		Temperature:      clampFloat(getEnvFloat("TEMPERATURE", 0.7), 0, 2),
		TopP:             clampFloat(getEnvFloat("TOP_P", 1.0), 0, 1),
		PresencePenalty:  clampFloat(getEnvFloat("PRESENCE_PENALTY", 0), -2, 2),
		FrequencyPenalty: clampFloat(getEnvFloat("FREQUENCY_PENALTY", 0), -2, 2),
		StopSequences:    splitStopSequences(os.Getenv("STOP_SEQUENCES")),
		UploadBaseURL:    os.Getenv("UPLOAD_BASE_URL"),
		UploadDir:        os.Getenv("UPLOAD_DIR"),
		JobTTL:           time.Second * time.Duration(getEnvInt("JOB_TTL_SECONDS", 3600)),
		JobWorkers:       getEnvInt("JOB_WORKERS", 2),
		ProviderTimeout:  time.Minute * time.Duration(getEnvInt("PROVIDER_TIMEOUT_MINUTES", 5)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 600)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		AuthToken:        os.Getenv("AUTH_TOKEN"),
		AllowedOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		DefaultLocale:    getEnv("DEFAULT_LOCALE", "en"),
	}

	if cfg.JobWorkers < 1 {
		cfg.JobWorkers = 1
	}
	if cfg.ProviderTimeout < time.Minute {
		return nil, fmt.Errorf("PROVIDER_TIMEOUT_MINUTES must be at least 1")
	}

	return cfg, nil
}

func normalizeAPIMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "chat":
		return "chat"
	case "responses":
		return "responses"
	}
	return "auto"
}

// splitStopSequences parses the comma-separated stop list. The provider
// accepts at most four sequences.
func splitStopSequences(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
		if len(out) == 4 {
			break
		}
	}
	return out
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
