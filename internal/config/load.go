package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. RASCH_SERVER_ADDR.
const EnvPrefix = "RASCH"

// DevJWTSecret is the default signing secret; replace it outside development.
const DevJWTSecret = "rasch-dev-secret-change-me"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("auth.jwt_secret", DevJWTSecret)
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("analysis.workers", 2)
	v.SetDefault("analysis.queue_size", 64)
	v.SetDefault("analysis.max_iterations", 100)
	v.SetDefault("analysis.convergence", 0.001)
	v.SetDefault("analysis.submit_rate", 1.0)
	v.SetDefault("analysis.submit_burst", 5)
	v.SetDefault("analysis.max_upload_bytes", 8<<20)
}

// Load reads defaults, then the optional YAML file at path, then RASCH_*
// environment variables. Later sources win.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
