package config

import (
	"time"

	"github.com/miyabiro/kotoba-backend/internal/domain"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Lookup   LookupConfig   `yaml:"lookup"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LookupConfig holds lookup pipeline settings: the match strategy applied
// when a request does not name one, and the dictionaries the server
// searches by default.
type LookupConfig struct {
	DefaultStrategy string            `yaml:"default_strategy" env:"LOOKUP_DEFAULT_STRATEGY" env-default:"exact"`
	Dictionaries    []DictionaryEntry `yaml:"dictionaries"`
}

// DictionaryEntry configures one dictionary. A missing priority disables
// the dictionary without removing the rest of its options.
type DictionaryEntry struct {
	Title                  string `yaml:"title"`
	Priority               *int   `yaml:"priority"`
	Alias                  string `yaml:"alias"`
	AllowSecondarySearches bool   `yaml:"allow_secondary_searches"`
	PartsOfSpeechFilter    bool   `yaml:"parts_of_speech_filter"`
	UseDeinflections       bool   `yaml:"use_deinflections"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// MatchType returns the configured default strategy as a domain value,
// coerced to exact when the string is not a known strategy.
func (l LookupConfig) MatchType() domain.MatchType {
	return domain.MatchType(l.DefaultStrategy).Normalized()
}

// DictionaryConfig converts the configured entries into the immutable
// domain value passed into lookup calls.
func (l LookupConfig) DictionaryConfig() domain.DictionaryConfig {
	cfg := make(domain.DictionaryConfig, len(l.Dictionaries))
	for _, d := range l.Dictionaries {
		opts := domain.DictionaryOptions{
			AllowSecondarySearches: d.AllowSecondarySearches,
			PartsOfSpeechFilter:    d.PartsOfSpeechFilter,
			UseDeinflections:       d.UseDeinflections,
		}
		if d.Priority != nil {
			p := *d.Priority
			opts.PriorityIndex = &p
		}
		if d.Alias != "" {
			a := d.Alias
			opts.DisplayAlias = &a
		}
		cfg[d.Title] = opts
	}
	return cfg
}
