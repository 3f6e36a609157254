package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/nimafallahian/catalog-sync/internal/domain"
)

// Index backends understood by INDEX_BACKEND.
const (
	BackendAlgolia       = "algolia"
	BackendElasticsearch = "elasticsearch"
)

// Config holds the runtime configuration for the sync service.
type Config struct {
	HTTPAddr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"5m"`
	WebhookRateLimit int           `env:"WEBHOOK_RATE_LIMIT" envDefault:"100"`

	ChecAPIURL    string `env:"CHEC_API_URL" envDefault:"https://api.chec.io"`
	ChecSecretKey string `env:"CHEC_SECRET_KEY,notEmpty"`

	IndexBackend    string   `env:"INDEX_BACKEND" envDefault:"algolia"`
	AlgoliaHost     string   `env:"ALGOLIA_HOST"`
	ElasticURLs     []string `env:"ELASTIC_URLS" envSeparator:","`
	IndexWriteRate  float64  `env:"INDEX_WRITE_RATE" envDefault:"0"`
	IndexWriteBurst int      `env:"INDEX_WRITE_BURST" envDefault:"10"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"catalog-webhooks"`
	KafkaGroupID string   `env:"KAFKA_GROUP_ID" envDefault:"catalog-sync"`
	WorkerCount  int      `env:"WORKER_COUNT" envDefault:"1"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`
}

// Integration holds the per-invocation index settings. Credentials are not
// required here; the dispatcher answers 503 when they are missing.
type Integration struct {
	ApplicationID   string `env:"APPLICATION_ID"`
	AdminAPIKey     string `env:"ADMIN_API_KEY"`
	ProductsIndex   string `env:"PRODUCTS_INDEX" envDefault:"products"`
	CategoriesIndex string `env:"CATEGORIES_INDEX" envDefault:"categories"`
}

// LoadDotEnv loads a .env file from the working directory if present.
// Variables already set in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	cfg.IndexBackend = strings.ToLower(strings.TrimSpace(cfg.IndexBackend))
	switch cfg.IndexBackend {
	case BackendAlgolia:
	case BackendElasticsearch:
		if len(cfg.ElasticURLs) == 0 {
			return nil, fmt.Errorf("ELASTIC_URLS is required when INDEX_BACKEND=%s", BackendElasticsearch)
		}
	default:
		return nil, fmt.Errorf("unknown INDEX_BACKEND %q", cfg.IndexBackend)
	}
	return &cfg, nil
}

// LoadIntegration reads the integration settings from the environment. It is
// called for every event so credential changes apply without a restart.
func LoadIntegration() (domain.IntegrationConfig, error) {
	var in Integration
	if err := env.Parse(&in); err != nil {
		return domain.IntegrationConfig{}, fmt.Errorf("parse integration config: %w", err)
	}
	return domain.IntegrationConfig{
		ApplicationID:   strings.TrimSpace(in.ApplicationID),
		AdminAPIKey:     strings.TrimSpace(in.AdminAPIKey),
		ProductsIndex:   in.ProductsIndex,
		CategoriesIndex: in.CategoriesIndex,
	}.WithDefaults(), nil
}

// KafkaEnabled reports whether the Kafka inbound path is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to INFO.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
