// Package config provides configuration loading, defaults, and validation for
// the VeriType detection service.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "veritype"
	DefaultRedisTTL       = 15 * time.Minute

	DefaultKafkaBroker = "localhost:9092"

	DefaultOracleProvider = "gemini"
	DefaultOracleModel    = "gemini-2.0-flash"
	DefaultOracleTimeout  = 20 * time.Second
	DefaultOracleRetries  = 3

	DefaultMaxTextChars     = 200_000
	DefaultMaxBatchSize     = 1000
	DefaultBatchConcurrency = 8

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the service default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  It must be called
// after unmarshalling raw config data and before Validate() so that
// optional-but-defaulted fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	// DB is an int; 0 is a valid explicit value so we cannot distinguish "not
	// set" from "set to 0".  We leave it as-is (0 is also the default).

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.ProducerRetries == 0 {
		cfg.Kafka.ProducerRetries = 3
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = 100
	}

	// ── Oracle ────────────────────────────────────────────────────────────────
	if cfg.Oracle.Provider == "" {
		cfg.Oracle.Provider = DefaultOracleProvider
	}
	if cfg.Oracle.Model == "" {
		cfg.Oracle.Model = DefaultOracleModel
	}
	if cfg.Oracle.Timeout == 0 {
		cfg.Oracle.Timeout = DefaultOracleTimeout
	}
	if cfg.Oracle.MaxRetries == 0 {
		cfg.Oracle.MaxRetries = DefaultOracleRetries
	}

	// ── Detector ──────────────────────────────────────────────────────────────
	if cfg.Detector.MaxTextChars == 0 {
		cfg.Detector.MaxTextChars = DefaultMaxTextChars
	}
	if cfg.Detector.MaxBatchSize == 0 {
		cfg.Detector.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.Detector.BatchConcurrency == 0 {
		cfg.Detector.BatchConcurrency = DefaultBatchConcurrency
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
