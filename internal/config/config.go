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
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Match  MatchConfig  `yaml:"match" mapstructure:"match"`
	Intake IntakeConfig `yaml:"intake" mapstructure:"intake"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// MatchConfig configures candidate ranking.
type MatchConfig struct {
	// AutoSuggestThreshold is the minimum 0-100 score at which the top
	// ranked candidate is auto-suggested. The ranker itself is threshold-free.
	AutoSuggestThreshold int  `yaml:"auto_suggest_threshold" mapstructure:"auto_suggest_threshold"`
	ScreenWorkflow       bool `yaml:"screen_workflow" mapstructure:"screen_workflow"`
}

// IntakeConfig configures report intake.
type IntakeConfig struct {
	PanelRulesPath       string `yaml:"panel_rules_path" mapstructure:"panel_rules_path"`
	MaxConcurrentReports int    `yaml:"max_concurrent_reports" mapstructure:"max_concurrent_reports"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port          int `yaml:"port" mapstructure:"port"`
	RatePerMinute int `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
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
	v.SetEnvPrefix("SCREENING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "screening.db")
	v.SetDefault("match.auto_suggest_threshold", 60)
	v.SetDefault("match.screen_workflow", true)
	v.SetDefault("intake.max_concurrent_reports", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_per_minute", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
