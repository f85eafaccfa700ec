package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/gsarma/judgepad/internal/assist"
	"github.com/gsarma/judgepad/internal/backend"
	"github.com/gsarma/judgepad/internal/code"
	"github.com/gsarma/judgepad/internal/language"
)

type Config struct {
	Port        string
	Mode        string
	Environment string

	DatabaseURL       string
	RootEncryptionKey string
	NatsURL           string
	WorkerConcurrency int

	Backend            backend.Config
	AdditionalFilesURL string
	PollMaxAttempts    int
	PollInterval       time.Duration

	Assistant assist.ModelConfig
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	b := backend.DefaultConfig()
	ce := b.Endpoints[language.CE]
	extra := b.Endpoints[language.ExtraCE]
	ce.AuthBase = getEnv("JUDGE0_CE_URL", ce.AuthBase)
	ce.UnauthBase = getEnv("JUDGE0_CE_PUBLIC_URL", ce.UnauthBase)
	extra.AuthBase = getEnv("JUDGE0_EXTRA_CE_URL", extra.AuthBase)
	extra.UnauthBase = getEnv("JUDGE0_EXTRA_CE_PUBLIC_URL", extra.UnauthBase)
	b.Endpoints[language.CE] = ce
	b.Endpoints[language.ExtraCE] = extra
	b.Credential = getEnv("JUDGE0_API_KEY", "")

	m := assist.DefaultModelConfig()
	m.APIKey = getEnv("GROQ_API_KEY", "")
	m.BaseURL = getEnv("GROQ_BASE_URL", m.BaseURL)
	m.ModelName = getEnv("ASSISTANT_MODEL", m.ModelName)
	m.Temperature = float32(getEnvFloat("ASSISTANT_TEMPERATURE", float64(m.Temperature)))
	m.MaxTokens = getEnvInt("ASSISTANT_MAX_TOKENS", m.MaxTokens)

	return Config{
		Port:        getEnv("PORT", "8080"),
		Mode:        getEnv("MODE", ""),
		Environment: getEnv("ENVIRONMENT", "production"),

		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RootEncryptionKey: getEnv("ROOT_ENCRYPTION_KEY", ""),
		NatsURL:           getEnv("NATS_URL", ""),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 5),

		Backend:            b,
		AdditionalFilesURL: getEnv("ADDITIONAL_FILES_URL", "./data/additional_files_zip_base64.txt"),
		PollMaxAttempts:    getEnvInt("POLL_MAX_ATTEMPTS", code.DefaultMaxAttempts),
		PollInterval:       time.Duration(getEnvInt("POLL_INTERVAL_MS", 100)) * time.Millisecond,

		Assistant: m,
	}
}

// Poller returns the polling settings.
func (c Config) Poller() code.PollerConfig {
	return code.PollerConfig{
		MaxAttempts: c.PollMaxAttempts,
		Backoff:     code.ConstantBackoff(c.PollInterval),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
