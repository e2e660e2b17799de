package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds process-level configuration: server, Redis and logging.
// Detection thresholds live in their own versioned config (internal/aml).
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Collaborators CollaboratorsConfig `mapstructure:"collaborators"`
	LogLevel      string              `mapstructure:"log_level"`
	Detection     string              `mapstructure:"detection_config"` // path to detection YAML; empty = defaults
}

// CollaboratorsConfig holds base URLs of the external services the engine
// calls into. Empty isolation_url delegates isolation upstream; empty
// fraud_url disables cross-service correlation.
type CollaboratorsConfig struct {
	IsolationURL string `mapstructure:"isolation_url"`
	HistoryURL   string `mapstructure:"history_url"`
	FraudURL     string `mapstructure:"fraud_url"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoadConfig reads configuration from amlengine.yaml (working dir or
// ./configs) with environment variable overrides (AMLENGINE_*).
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("amlengine")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetDefault("server.addr", ":8084")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("collaborators.isolation_url", "")
	v.SetDefault("collaborators.history_url", "http://localhost:8085")
	v.SetDefault("collaborators.fraud_url", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("detection_config", "")

	v.SetEnvPrefix("AMLENGINE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read configuration: %w", err)
		}
		// Missing file is fine; defaults and env apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return &cfg, nil
}
