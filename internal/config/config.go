package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Apify      ApifyConfig      `yaml:"apify" mapstructure:"apify"`
	Hunter     HunterConfig     `yaml:"hunter" mapstructure:"hunter"`
	Instantly  InstantlyConfig  `yaml:"instantly" mapstructure:"instantly"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Scrape     ScrapeConfig     `yaml:"scrape" mapstructure:"scrape"`
	Ingest     IngestConfig     `yaml:"ingest" mapstructure:"ingest"`
	Enrich     EnrichConfig     `yaml:"enrich" mapstructure:"enrich"`
	Outreach   OutreachConfig   `yaml:"outreach" mapstructure:"outreach"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
}

// StoreConfig configures the lead store backend.
type StoreConfig struct {
	// Driver is one of notion, sqlite, postgres.
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// NotionConfig holds Notion API credentials and the leads database ID.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// ApifyConfig holds Apify API settings and actor overrides.
type ApifyConfig struct {
	Token            string `yaml:"token" mapstructure:"token"`
	BaseURL          string `yaml:"base_url" mapstructure:"base_url"`
	GoogleActorID    string `yaml:"google_actor_id" mapstructure:"google_actor_id"`
	InstagramActorID string `yaml:"instagram_actor_id" mapstructure:"instagram_actor_id"`
}

// HunterConfig holds Hunter.io API settings.
type HunterConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// InstantlyConfig holds Instantly API settings.
type InstantlyConfig struct {
	Key      string `yaml:"key" mapstructure:"key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Campaign string `yaml:"campaign" mapstructure:"campaign"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ScrapeConfig configures scrape runs.
type ScrapeConfig struct {
	City       string   `yaml:"city" mapstructure:"city"`
	Terms      []string `yaml:"terms" mapstructure:"terms"`
	MaxResults int      `yaml:"max_results" mapstructure:"max_results"`
}

// IngestConfig configures the ingestion coordinator.
type IngestConfig struct {
	SnapshotCap int `yaml:"snapshot_cap" mapstructure:"snapshot_cap"`
	MaxErrors   int `yaml:"max_errors" mapstructure:"max_errors"`
}

// EnrichConfig configures email enrichment passes.
type EnrichConfig struct {
	ScanLimit int `yaml:"scan_limit" mapstructure:"scan_limit"`
}

// OutreachConfig configures outreach passes.
type OutreachConfig struct {
	MaxLeads  int `yaml:"max_leads" mapstructure:"max_leads"`
	ScanLimit int `yaml:"scan_limit" mapstructure:"scan_limit"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MonitoringConfig configures the run-summary webhook.
type MonitoringConfig struct {
	WebhookURL           string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
}

// Validate checks that the fields a given mode depends on are set.
// Mode is one of scrape, enrich, outreach, serve.
func (c *Config) Validate(mode string) error {
	var problems []string

	storeProblems := func() {
		switch c.Store.Driver {
		case "notion":
			if c.Notion.Token == "" {
				problems = append(problems, "notion.token is required")
			}
			if c.Notion.LeadDB == "" {
				problems = append(problems, "notion.lead_db is required")
			}
		case "sqlite", "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required")
			}
		default:
			problems = append(problems, "store.driver must be one of notion, sqlite, postgres")
		}
	}

	switch mode {
	case "scrape":
		storeProblems()
		if c.Apify.Token == "" {
			problems = append(problems, "apify.token is required")
		}
	case "enrich":
		storeProblems()
		if c.Hunter.Key == "" {
			problems = append(problems, "hunter.key is required")
		}
	case "outreach":
		storeProblems()
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required")
		}
		if c.Instantly.Key == "" {
			problems = append(problems, "instantly.key is required")
		}
		if c.Instantly.Campaign == "" {
			problems = append(problems, "instantly.campaign is required")
		}
	case "serve":
		storeProblems()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "notion")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("apify.base_url", "https://api.apify.com/v2")
	v.SetDefault("apify.google_actor_id", "compass~crawler-google-places")
	v.SetDefault("apify.instagram_actor_id", "apify~instagram-scraper")
	v.SetDefault("hunter.base_url", "https://api.hunter.io/v2")
	v.SetDefault("instantly.base_url", "https://api.instantly.ai/api/v2")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("scrape.max_results", 100)
	v.SetDefault("ingest.snapshot_cap", 5000)
	v.SetDefault("ingest.max_errors", 10)
	v.SetDefault("enrich.scan_limit", 1000)
	v.SetDefault("outreach.scan_limit", 1000)
	v.SetDefault("monitoring.failure_rate_threshold", 0.25)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
