package config

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultSecretKey = "it's a secret"

// Config holds all configuration for Warbler
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	Port        int    `mapstructure:"PORT"`
	SecretKey   string `mapstructure:"SECRET_KEY"`

	// Connection string, postgres:// / postgresql:// or sqlite://<path>
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	Log struct {
		Level  string `mapstructure:"LOG_LEVEL"`
		File   string `mapstructure:"LOG_FILE"`
		Format string `mapstructure:"LOG_FORMAT"`
	} `mapstructure:",squash"`

	SlowRequestThreshold time.Duration `mapstructure:"SLOW_REQUEST_THRESHOLD"`
}

// Load reads an optional .env file, then environment variables, and
// returns the resulting Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configFile := v.GetString("CONFIG_FILE"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.IsProduction() && cfg.SecretKey == defaultSecretKey {
		return nil, errors.New("SECRET_KEY must be set in production")
	}

	return &cfg, nil
}

// CSRFKey derives the 32 byte form token key from the secret key
func (c *Config) CSRFKey() []byte {
	sum := sha256.Sum256([]byte("csrf:" + c.SecretKey))
	return sum[:]
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("PORT", 5000)
	v.SetDefault("SECRET_KEY", defaultSecretKey)
	v.SetDefault("CONFIG_FILE", "")

	v.SetDefault("DATABASE_URL", "postgresql:///warbler")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SLOW_REQUEST_THRESHOLD", "2s")
}
