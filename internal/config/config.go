// Package config loads application configuration and wires the global
// logger.
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
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Retrieval RetrievalConfig `yaml:"retrieval" mapstructure:"retrieval"`
	Render    RenderConfig    `yaml:"render" mapstructure:"render"`
	Notion    NotionConfig    `yaml:"notion" mapstructure:"notion"`
	Catalog   CatalogConfig   `yaml:"catalog" mapstructure:"catalog"`
	Triage    TriageConfig    `yaml:"triage" mapstructure:"triage"`
	Ingest    IngestConfig    `yaml:"ingest" mapstructure:"ingest"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the decision store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds completion-service settings.
type AnthropicConfig struct {
	Key            string  `yaml:"key" mapstructure:"key"`
	Model          string  `yaml:"model" mapstructure:"model"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// RetrievalConfig holds document-retrieval service settings.
type RetrievalConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Key     string `yaml:"key" mapstructure:"key"`
}

// RenderConfig holds report-rendering service settings.
type RenderConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// NotionConfig holds the optional decision-log publisher settings.
type NotionConfig struct {
	Token      string `yaml:"token" mapstructure:"token"`
	DecisionDB string `yaml:"decision_db" mapstructure:"decision_db"`
}

// CatalogConfig points at the hazardous-substance catalog file. When Path
// is empty the built-in catalog is used.
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// TriageConfig bounds a single triage request.
type TriageConfig struct {
	RequestTimeoutSecs int `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
}

// IngestConfig configures the corpus ingest command.
type IngestConfig struct {
	FTPURL      string `yaml:"ftp_url" mapstructure:"ftp_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ServerConfig configures the triage HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PERMIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "permit.db")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("retrieval.key", "")
	v.SetDefault("notion.token", "")
	v.SetDefault("notion.decision_db", "")
	v.SetDefault("catalog.path", "")
	v.SetDefault("ingest.ftp_url", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.requests_per_sec", 5)
	v.SetDefault("retrieval.base_url", "http://localhost:7700")
	v.SetDefault("render.base_url", "http://localhost:7800")
	v.SetDefault("triage.request_timeout_secs", 120)
	v.SetDefault("ingest.timeout_secs", 30)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
