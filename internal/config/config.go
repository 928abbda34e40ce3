package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Dispatcher DispatcherConfig `yaml:"dispatcher"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// PipelineConfig holds content pipeline housekeeping settings.
type PipelineConfig struct {
	// HardDeleteRetentionDays is how long soft-deleted transcripts are kept
	// before cmd/cleanup purges them permanently.
	HardDeleteRetentionDays int `yaml:"hard_delete_retention_days" env:"PIPELINE_HARD_DELETE_RETENTION_DAYS" env-default:"30"`
}

// DispatcherConfig holds settings for the schedule dispatcher binary.
type DispatcherConfig struct {
	// BatchSize caps how many due schedules one dispatcher pass claims.
	BatchSize int `yaml:"batch_size" env:"DISPATCHER_BATCH_SIZE" env-default:"50"`

	// Lookahead widens the due horizon: a pass at T dispatches schedules
	// with publish_at <= T+Lookahead. Zero means dispatch strictly due rows.
	Lookahead time.Duration `yaml:"lookahead" env:"DISPATCHER_LOOKAHEAD" env-default:"0s"`
}
