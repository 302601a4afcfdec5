// Package config defines all configuration structures for the VeriType
// detection service.  No I/O or parsing logic lives here — only plain data
// types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/veritype/veritype/pkg/types/detection"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RedisConfig holds connection parameters for the optional result cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds producer parameters for the optional detection event
// stream.
type KafkaConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	Brokers         []string `mapstructure:"brokers"`
	ProducerRetries int      `mapstructure:"producer_retries"`
	BatchSize       int      `mapstructure:"batch_size"`
	TimeoutMS       int      `mapstructure:"timeout_ms"`
	RequiredAcks    int      `mapstructure:"required_acks"`
}

// OracleConfig holds parameters for the optional secondary-opinion oracle.
// Disabled by default; enabling requires credentials for the provider.
type OracleConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Provider   string        `mapstructure:"provider"` // "gemini"
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// DetectorConfig holds detection-pipeline tunables. Weights and Bias override
// the built-in reference weighting when set; unknown weight keys are rejected
// by Validate.
type DetectorConfig struct {
	Weights          map[string]float64 `mapstructure:"weights"`
	Bias             *float64           `mapstructure:"bias"`
	MaxTextChars     int                `mapstructure:"max_text_chars"`
	MaxBatchSize     int                `mapstructure:"max_batch_size"`
	BatchConcurrency int                `mapstructure:"batch_concurrency"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string `mapstructure:"format"` // "json" | "text"
	Output           string `mapstructure:"output"`
	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the service.  Every
// infrastructure component and application service reads its settings from
// the relevant sub-struct.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Oracle   OracleConfig   `mapstructure:"oracle"`
	Detector DetectorConfig `mapstructure:"detector"`
	Log      LogConfig      `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Redis
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis.enabled is true")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// Kafka
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address when kafka.enabled is true")
	}

	// Oracle
	if c.Oracle.Enabled {
		if c.Oracle.Provider != "gemini" {
			return fmt.Errorf("config: oracle.provider %q is invalid; expected gemini", c.Oracle.Provider)
		}
		if c.Oracle.APIKey == "" {
			return fmt.Errorf("config: oracle.api_key is required when oracle.enabled is true")
		}
	}

	// Detector
	for name := range c.Detector.Weights {
		if !isKnownFeature(name) {
			return fmt.Errorf("config: detector.weights contains unknown feature %q", name)
		}
	}
	if c.Detector.MaxTextChars < 1 {
		return fmt.Errorf("config: detector.max_text_chars must be ≥ 1, got %d", c.Detector.MaxTextChars)
	}
	if c.Detector.MaxBatchSize < 1 {
		return fmt.Errorf("config: detector.max_batch_size must be ≥ 1, got %d", c.Detector.MaxBatchSize)
	}
	if c.Detector.BatchConcurrency < 1 {
		return fmt.Errorf("config: detector.batch_concurrency must be ≥ 1, got %d", c.Detector.BatchConcurrency)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|text", c.Log.Format)
	}

	return nil
}

func isKnownFeature(name string) bool {
	for _, f := range detection.FeatureNames() {
		if f == name {
			return true
		}
	}
	return false
}
