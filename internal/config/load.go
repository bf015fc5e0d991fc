package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("auth.token_lifetime_minutes", 30*24*60)
	v.SetDefault("auth.bcrypt_cost", 0)
	v.SetDefault("storage.container_name", "uploads")
	v.SetDefault("storage.uploads_dir", "uploads")

	// Optional config file in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables: TODOX_SERVER_PORT, TODOX_DATABASE_URL, etc.
	v.SetEnvPrefix("TODOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so keys
	// without a default (database.url, auth.jwt_secret, storage.*) must be
	// bound explicitly or Unmarshal never sees their env values.
	for _, key := range []string{
		"server.port",
		"server.log_level",
		"server.env",
		"server.allowed_origins",
		"database.url",
		"auth.jwt_secret",
		"auth.token_lifetime_minutes",
		"auth.bcrypt_cost",
		"storage.account_name",
		"storage.connection_string",
		"storage.container_name",
		"storage.uploads_dir",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment key %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
