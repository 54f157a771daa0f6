package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/FranksOps/namevet/internal/places"
	"github.com/FranksOps/namevet/internal/rdap"
)

// Config holds all application configuration.
type Config struct {
	RDAP     RDAPConfig     `mapstructure:"rdap"`
	Places   PlacesConfig   `mapstructure:"places"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Validate ValidateConfig `mapstructure:"validate"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

// RDAPConfig holds registry lookup configuration.
type RDAPConfig struct {
	// Servers maps suffix to RDAP base URL.
	Servers map[string]string `mapstructure:"servers"`
	Primary string            `mapstructure:"primary"`
	Timeout time.Duration     `mapstructure:"timeout"`
}

// PlacesConfig holds business directory configuration.
type PlacesConfig struct {
	// APIKey is usually set via NAMEVET_PLACES_API_KEY. Without it, directory
	// searches are skipped.
	APIKey     string        `mapstructure:"api_key"`
	Endpoint   string        `mapstructure:"endpoint"`
	Language   string        `mapstructure:"language"`
	Joiner     string        `mapstructure:"locality_joiner"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// HTTPConfig holds settings shared by every outbound request.
type HTTPConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	UserAgents []string      `mapstructure:"user_agents"`
	// TLSProfile is one of go, chrome, firefox, safari, random.
	TLSProfile string   `mapstructure:"tls_profile"`
	Proxies    []string `mapstructure:"proxies"`
	ProxyFile  string   `mapstructure:"proxy_file"`
	// RPS limits requests per second per host; 0 disables throttling.
	RPS    float64 `mapstructure:"rps"`
	Jitter float64 `mapstructure:"jitter"`
}

// ValidateConfig holds validation and convergence settings.
type ValidateConfig struct {
	// Concurrency caps candidates in flight per phase; 0 means no cap.
	Concurrency    int `mapstructure:"concurrency"`
	MaxEscalations int `mapstructure:"max_escalations"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds the Prometheus endpoint configuration.
type MetricsConfig struct {
	// Port for /metrics; 0 disables the server.
	Port int `mapstructure:"port"`
}

// StorageConfig selects where finished runs are exported.
type StorageConfig struct {
	// Backend is one of none, sqlite, postgres, json, csv.
	Backend string `mapstructure:"backend"`
	// DSN is a file path for sqlite, json and csv, or a connection string
	// for postgres.
	DSN string `mapstructure:"dsn"`
}

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("rdap.servers", rdap.DefaultServers)
	v.SetDefault("rdap.primary", rdap.DefaultPrimary)
	v.SetDefault("rdap.timeout", rdap.DefaultTimeout.String())

	v.SetDefault("places.api_key", "")
	v.SetDefault("places.endpoint", places.DefaultEndpoint)
	v.SetDefault("places.language", places.DefaultLanguage)
	v.SetDefault("places.locality_joiner", places.DefaultJoiner)
	v.SetDefault("places.max_results", places.DefaultMaxResults)
	v.SetDefault("places.timeout", places.DefaultTimeout.String())

	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.user_agents", []string{})
	v.SetDefault("http.tls_profile", "go")
	v.SetDefault("http.proxies", []string{})
	v.SetDefault("http.proxy_file", "")
	v.SetDefault("http.rps", 0)
	v.SetDefault("http.jitter", 0)

	v.SetDefault("validate.concurrency", 0)
	v.SetDefault("validate.max_escalations", 1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.port", 0)
	v.SetDefault("storage.backend", "none")
	v.SetDefault("storage.dsn", "")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("NAMEVET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// SetupLogger creates a logger with the configured level and format. Logs go
// to w so they never mix with report output on stdout.
func SetupLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
