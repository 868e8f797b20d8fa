package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone names resolve on images without system tzdata

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	RedisURL    string
	Environment string

	SessionTTL      time.Duration
	JanitorInterval time.Duration
	RevealDelay     time.Duration
	Timezone        string
	location        *time.Location

	AnalysisURL     string
	AnalysisTimeout time.Duration

	CORSOrigins []string

	Events   EventConfig
	Advisory AdvisoryConfig
}

// LoadConfig reads .env when present and falls back to process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		RedisURL:    getEnv("REDIS_URL", ""),
		Environment: getEnv("ENVIRONMENT", "development"),

		SessionTTL:      getDuration("SESSION_TTL", 2*time.Hour),
		JanitorInterval: getDuration("SESSION_JANITOR_INTERVAL", time.Minute),
		RevealDelay:     getDuration("MEMORY_REVEAL_DELAY", 800*time.Millisecond),
		Timezone:        getEnv("SCREENING_TIMEZONE", "Asia/Almaty"),

		AnalysisURL:     getEnv("ANALYSIS_URL", ""),
		AnalysisTimeout: getDuration("ANALYSIS_TIMEOUT", 60*time.Second),

		CORSOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		Events: EventConfig{
			Enabled:        getBool("EVENTS_ENABLED", false),
			Publisher:      getEnv("EVENTS_PUBLISHER", "mock"),
			KafkaBrokers:   getEnv("KAFKA_BROKERS", "localhost:9092"),
			ScreeningTopic: getEnv("SCREENING_TOPIC", "screenings"),
			ConsumerGroup:  getEnv("EVENTS_CONSUMER_GROUP", "screening-audit"),
		},
		Advisory: AdvisoryConfig{
			Provider: getEnv("ADVISORY_PROVIDER", "none"),
			APIKey:   getEnv("GEMINI_API_KEY", ""),
			Model:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Timeout:  getDuration("ADVISORY_TIMEOUT", 20*time.Second),
			CacheTTL: getDuration("ADVISORY_CACHE_TTL", 24*time.Hour),
		},
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid SCREENING_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.location = loc

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Location is the timezone used for the weekday question, resolved by
// LoadConfig. A Config built by hand gets UTC.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}

func getList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
