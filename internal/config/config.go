package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DeletePolicy controls what happens to chores when their child or task is deleted.
type DeletePolicy string

const (
	DeleteRestrict DeletePolicy = "restrict"
	DeleteCascade  DeletePolicy = "cascade"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig    `mapstructure:"server" validate:"required"`
	Database     DatabaseConfig  `mapstructure:"database" validate:"required"`
	Log          LogConfig       `mapstructure:"log" validate:"required"`
	Token        TokenConfig     `mapstructure:"token" validate:"required"`
	Bootstrap    BootstrapConfig `mapstructure:"bootstrap"`
	DeletePolicy DeletePolicy    `mapstructure:"delete_policy" validate:"required,oneof=restrict cascade"`
	Timezone     string          `mapstructure:"timezone" validate:"required"`
}

type ServerConfig struct {
	Port int `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	// TrustProxy keys the /token rate limit on X-Real-IP / X-Forwarded-For
	// instead of the connection address. Enable only behind a proxy that sets them.
	TrustProxy bool `mapstructure:"trust_proxy"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// TokenConfig limits how often a single client may call GET /token.
type TokenConfig struct {
	RateLimit  int           `mapstructure:"rate_limit" validate:"min=1"`
	RateWindow time.Duration `mapstructure:"rate_window" validate:"gt=0"`
}

// BootstrapConfig names the first user created when the users table is empty.
type BootstrapConfig struct {
	Email    string `mapstructure:"email" validate:"required_with=Password,omitempty,email"`
	Password string `mapstructure:"password" validate:"required_with=Email,omitempty,min=8"`
}

const envPrefix = "CHORES"

// Load reads configuration from defaults, an optional YAML file and CHORES_* environment
// variables, in increasing order of precedence.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.trust_proxy", false)
	v.SetDefault("database.path", "choretracker.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("token.rate_limit", 10)
	v.SetDefault("token.rate_window", time.Minute)
	v.SetDefault("delete_policy", string(DeleteRestrict))
	v.SetDefault("timezone", "Local")
	v.SetDefault("bootstrap.email", "")
	v.SetDefault("bootstrap.password", "")

	v.SetConfigType("yaml")
	if path := os.Getenv(envPrefix + "_CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and that the timezone can be loaded.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config validation failed: timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured time zone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
