package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// Env is the deployment mode. In "production" the Azure backend
	// authenticates with a managed identity instead of a connection string.
	Env string `mapstructure:"env" validate:"required,oneof=development production"`

	// AllowedOrigins is the CORS allow-list for browser clients.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetimeMinutes is the bearer token validity window.
	// Defaults to 30 days.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	BcryptCost int `mapstructure:"bcrypt_cost" validate:"gte=0,lte=31"`
}

// StorageConfig selects and configures the binary storage backend.
// When neither AccountName (production) nor ConnectionString (development)
// is set, binary assets fall back to the local uploads directory.
type StorageConfig struct {
	AccountName      string `mapstructure:"account_name"`
	ConnectionString string `mapstructure:"connection_string"`
	ContainerName    string `mapstructure:"container_name"`
	UploadsDir       string `mapstructure:"uploads_dir"`
}
