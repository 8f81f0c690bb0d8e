// Package config loads the server and analysis settings.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Analysis AnalysisConfig `mapstructure:"analysis" validate:"required"`
}

type ServerConfig struct {
	Addr      string `mapstructure:"addr" validate:"required"`
	LogLevel  string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=json text"`
	// StaticDir is served at / when set.
	StaticDir   string   `mapstructure:"static_dir"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
}

// AnalysisConfig bounds the estimation workload.
type AnalysisConfig struct {
	Workers        int     `mapstructure:"workers" validate:"gte=1,lte=256"`
	QueueSize      int     `mapstructure:"queue_size" validate:"gte=1"`
	MaxIterations  int     `mapstructure:"max_iterations" validate:"gte=1,lte=10000"`
	Convergence    float64 `mapstructure:"convergence" validate:"gt=0,lt=1"`
	SubmitRate     float64 `mapstructure:"submit_rate" validate:"gte=0"`
	SubmitBurst    int     `mapstructure:"submit_burst" validate:"gte=1"`
	MaxUploadBytes int64   `mapstructure:"max_upload_bytes" validate:"gte=1024"`
}
