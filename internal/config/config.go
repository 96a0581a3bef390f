package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Redis   RedisConfig
	Payment PaymentConfig
	Relay   RelayConfig
	Wheel   WheelConfig
	Log     LogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
// In production, always set DB_PASSWORD via environment variable.
// In production, set DB_SSLMODE to "require" or "verify-full".
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name     string `envconfig:"DB_NAME" default:"storefront_db"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"` // Use "require" in production
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"5"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.MaxConns, c.MinConns)
}

// RedisConfig holds the price-cache configuration. PriceTTL is in
// seconds; the cache is a performance optimization only, checkout
// always reads the database.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	PriceTTL int    `envconfig:"REDIS_PRICE_TTL" default:"300"`
}

// PaymentConfig holds the payment-provider configuration. MinCharge is
// the provider's fixed minimum chargeable amount in the shop currency.
type PaymentConfig struct {
	BaseURL   string `envconfig:"PAYMENT_BASE_URL" default:"https://pay.example.com"`
	APIKey    string `envconfig:"PAYMENT_API_KEY" default:""`
	MinCharge string `envconfig:"PAYMENT_MIN_CHARGE" default:"0.50"`
	TimeoutS  int    `envconfig:"PAYMENT_TIMEOUT" default:"15"` // seconds
}

// RelayConfig holds the relay-point lookup API configuration.
type RelayConfig struct {
	BaseURL  string `envconfig:"RELAY_BASE_URL" default:"https://relay.example.com"`
	APIKey   string `envconfig:"RELAY_API_KEY" default:""`
	TimeoutS int    `envconfig:"RELAY_TIMEOUT" default:"10"` // seconds
}

// WheelConfig holds the wheel-gift maintenance timers, in seconds.
// SweepInterval drives the expired-gift sweep; PollInterval drives the
// settings-change poll.
type WheelConfig struct {
	SweepInterval int `envconfig:"WHEEL_SWEEP_INTERVAL" default:"1"`
	PollInterval  int `envconfig:"WHEEL_POLL_INTERVAL" default:"5"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// Load parses environment variables into the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
