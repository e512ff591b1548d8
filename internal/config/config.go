package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ErrMissingGraphURI is returned by RequireGraph when no connection URI is configured.
var ErrMissingGraphURI = errors.New("GRAPH_URI (or AURA_URI) is required")

// Config aggregates application configuration values.
type Config struct {
	HTTP       HTTPConfig
	Graph      GraphConfig
	Logging    LoggingConfig
	Navigation NavigationConfig
	Notify     NotifyConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MetricsEnabled    bool
	AllowedOriginsCSV string
}

// GraphConfig describes connectivity to the Neo4j graph store.
type GraphConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
	QueryTimeout   time.Duration
	ConnectRetries int
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	Colored       bool
	IncludeCaller bool
}

// NavigationConfig controls the area catalog and the read path.
type NavigationConfig struct {
	AreasFile      string
	AreasFromGraph bool
	AreaCacheTTL   time.Duration
	APIVersion     string
}

// NotifyConfig configures operational notifications.
type NotifyConfig struct {
	DiscordWebhookURL string
	Source            string
}

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultGraphMaxSessions = 10
	defaultQueryTimeout     = 5 * time.Second
	defaultConnectRetries   = 3
	defaultNotifySource     = "navigator"
)

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Host:              valueOrDefault("SERVER_HOST", defaultHost),
			MetricsEnabled:    parseBoolWithDefault("SERVER_METRICS_ENABLED", false),
			AllowedOriginsCSV: os.Getenv("SERVER_ALLOWED_ORIGINS"),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			Colored:       parseBoolWithDefault("LOG_COLOR", false),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
		Graph: GraphConfig{
			URI:            firstNonEmpty("GRAPH_URI", "AURA_URI"),
			Database:       valueOrDefault("GRAPH_DATABASE", ""),
			Username:       firstNonEmpty("GRAPH_USERNAME", "AURA_USERNAME"),
			Password:       firstNonEmpty("GRAPH_PASSWORD", "AURA_PASSWORD"),
			MaxConnections: parseIntWithDefault("GRAPH_MAX_CONNECTIONS", defaultGraphMaxSessions),
			ConnectRetries: parseIntWithDefault("GRAPH_CONNECT_RETRIES", defaultConnectRetries),
		},
		Navigation: NavigationConfig{
			AreasFile:      os.Getenv("NAV_AREAS_FILE"),
			AreasFromGraph: parseBoolWithDefault("NAV_AREAS_FROM_GRAPH", true),
			APIVersion:     os.Getenv("API_VERSION"),
		},
		Notify: NotifyConfig{
			DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
			Source:            valueOrDefault("NOTIFY_SOURCE", defaultNotifySource),
		},
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key      string
		target   *time.Duration
		fallback time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout, defaultReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout, defaultWriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout, defaultIdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout, defaultShutdownTimeout},
		{"GRAPH_QUERY_TIMEOUT", &cfg.Graph.QueryTimeout, defaultQueryTimeout},
		{"NAV_AREA_CACHE_TTL", &cfg.Navigation.AreaCacheTTL, 0},
	}
	for _, d := range durations {
		val, err := parseDuration(d.key, d.fallback)
		if err != nil {
			return Config{}, err
		}
		*d.target = val
	}

	return cfg, nil
}

// RequireGraph reports a configuration error when the graph cannot be reached.
func (c Config) RequireGraph() error {
	if c.Graph.URI == "" {
		return ErrMissingGraphURI
	}
	return nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: negative duration %s", key, d)
	}
	return d, nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
