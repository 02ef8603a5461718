package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"pdf-viewer/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort     string
	MaxFileSize    int64
	LogLevel       string
	LogFile        string
	SearchDebounce time.Duration
	SessionTTL     time.Duration
	RenderDPI      float64
	FetchTimeout   time.Duration
	AllowPrivate   bool
	AllowedOrigins []string
	SupabaseURL    string
	SupabaseKey    string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:     getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		MaxFileSize:    getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024), // 50MB default
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:        getEnvOrDefault("LOG_FILE", ""),
		SearchDebounce: time.Duration(getEnvInt64OrDefault("SEARCH_DEBOUNCE_MS", 300)) * time.Millisecond,
		SessionTTL:     time.Duration(getEnvInt64OrDefault("SESSION_TTL_MINUTES", 60)) * time.Minute,
		RenderDPI:      getEnvFloatOrDefault("RENDER_DPI", 72),
		FetchTimeout:   time.Duration(getEnvInt64OrDefault("FETCH_TIMEOUT_SECONDS", 30)) * time.Second,
		AllowPrivate:   getEnvBoolOrDefault("FETCH_ALLOW_PRIVATE_HOSTS", false),
		AllowedOrigins: getEnvListOrDefault("ALLOWED_ORIGINS", nil),
		SupabaseURL:    getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:    getEnvOrDefault("SUPABASE_ANON_KEY", ""),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetMaxFileSize returns the maximum allowed file size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetLogFile returns the rotating log file path, empty for console only
func (c *AppConfig) GetLogFile() string {
	return c.LogFile
}

// GetSearchDebounce returns the delay between the last keystroke and a search
func (c *AppConfig) GetSearchDebounce() time.Duration {
	return c.SearchDebounce
}

// GetSessionTTL returns how long an idle viewer session is kept
func (c *AppConfig) GetSessionTTL() time.Duration {
	return c.SessionTTL
}

// GetAllowPrivateFetch reports whether document URLs may point at loopback
// or private network addresses
func (c *AppConfig) GetAllowPrivateFetch() bool {
	return c.AllowPrivate
}

// GetRenderDPI returns the page resolution at scale 1
func (c *AppConfig) GetRenderDPI() float64 {
	return c.RenderDPI
}

// GetFetchTimeout returns the timeout for documents loaded by URL
func (c *AppConfig) GetFetchTimeout() time.Duration {
	return c.FetchTimeout
}

// GetAllowedOrigins returns the CORS origins; nil selects the dev defaults
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil && floatValue > 0 {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
