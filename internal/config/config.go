// Package config loads application configuration from config.yaml and
// SITECOACH_* environment variables, and initializes the global logger.
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
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Analyze   AnalyzeConfig   `yaml:"analyze" mapstructure:"analyze"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings. DefaultModel is used for
// judgment-heavy analyses (SEO, UX, competitors, planning); CheapModel for
// mechanical per-task enrichment.
type AnthropicConfig struct {
	Key          string `yaml:"key" mapstructure:"key"`
	DefaultModel string `yaml:"default_model" mapstructure:"default_model"`
	CheapModel   string `yaml:"cheap_model" mapstructure:"cheap_model"`
	MaxRetries   int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// FetchConfig configures HTML fetching. Preview hosts (slow cold-starting
// developer previews) get the longer timeout.
type FetchConfig struct {
	TimeoutSecs        int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	PreviewTimeoutSecs int `yaml:"preview_timeout_secs" mapstructure:"preview_timeout_secs"`
	MaxAttempts        int `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// AnalyzeConfig configures the analysis layer.
type AnalyzeConfig struct {
	HTMLLimit      int `yaml:"html_limit" mapstructure:"html_limit"`
	MaxCompetitors int `yaml:"max_competitors" mapstructure:"max_competitors"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SITECOACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.default_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.cheap_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_retries", 3)
	v.SetDefault("fetch.timeout_secs", 20)
	v.SetDefault("fetch.preview_timeout_secs", 45)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("analyze.html_limit", 8000)
	v.SetDefault("analyze.max_competitors", 2)

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
