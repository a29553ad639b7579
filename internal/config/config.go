package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Search   SearchConfig   `mapstructure:"search" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gt=0"`
	// QueryTimeout bounds every store call; exceeding it surfaces as a
	// retryable store-unavailable error.
	QueryTimeout time.Duration `mapstructure:"query_timeout" validate:"gt=0"`
	AutoMigrate  bool          `mapstructure:"auto_migrate"`
}

// Auth modes.
const (
	// AuthModeGateway trusts a verified identity header injected by the gateway.
	AuthModeGateway = "gateway"
	// AuthModeToken verifies a bearer token in-process.
	AuthModeToken = "token"
)

// AuthConfig describes how the external identity reaches the service.
type AuthConfig struct {
	Mode           string `mapstructure:"mode" validate:"required,oneof=gateway token"`
	IdentityHeader string `mapstructure:"identity_header" validate:"required_if=Mode gateway"`
	TokenSecret    string `mapstructure:"token_secret" validate:"required_if=Mode token,omitempty,min=32"`
	TokenIssuer    string `mapstructure:"token_issuer"`
}

// SearchConfig holds paging defaults for list and search endpoints.
type SearchConfig struct {
	DefaultLimit int `mapstructure:"default_limit" validate:"gte=1,lte=100"`
}
