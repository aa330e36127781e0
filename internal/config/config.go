package config

import (
	"fmt"
	"os"
	"time"

	"github.com/tzekovic/OX-Project/internal/validator"
)

// DevJWTSecret signs room tokens when OX_JWT_SECRET is unset.
// Note: In a real deployment, this should be loaded from a secure configuration.
const DevJWTSecret = "dev-only-insecure-room-secret"

// Config holds the server settings read from the environment.
type Config struct {
	HTTPAddr        string        `validate:"required"`
	RedisConnString string        // empty selects the in-memory store
	RoomTTL         time.Duration `validate:"gt=0"`
	AIDelay         time.Duration `validate:"gte=0"`
	JWTSecret       string        `validate:"required,min=16"`
	TokenTTL        time.Duration `validate:"gt=0"`
	LogLevel        string        `validate:"oneof=debug info warn error"`
	OtelExporter    string        `validate:"oneof=none stdout otlp"`
	OtelEndpoint    string        `validate:"required_if=OtelExporter otlp"`
	WebDir          string
	ServiceVersion  string
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom reads the configuration through lookup, applying defaults for
// unset variables.
func LoadFrom(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return def
	}
	duration := func(key, def string) (time.Duration, error) {
		raw := get(key, def)
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
		}
		return d, nil
	}

	cfg := &Config{
		HTTPAddr:        get("OX_HTTP_ADDR", ":8080"),
		RedisConnString: get("REDIS_CONNSTRING", ""),
		JWTSecret:       get("OX_JWT_SECRET", DevJWTSecret),
		LogLevel:        get("OX_LOG_LEVEL", "info"),
		OtelExporter:    get("OX_OTEL_EXPORTER", "none"),
		OtelEndpoint:    get("OX_OTEL_ENDPOINT", "otel-collector:4317"),
		WebDir:          get("OX_WEB_DIR", "./web"),
		ServiceVersion:  get("OX_VERSION", "v0.1.0"),
	}

	var err error
	if cfg.RoomTTL, err = duration("OX_ROOM_TTL", "30m"); err != nil {
		return nil, err
	}
	if cfg.AIDelay, err = duration("OX_AI_DELAY", "500ms"); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = duration("OX_TOKEN_TTL", "24h"); err != nil {
		return nil, err
	}

	if err := validator.GetValidator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
