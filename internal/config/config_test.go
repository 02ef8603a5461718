package config

import (
	"testing"
	"time"
)

const defaultMaxFileSize int64 = 50 * 1024 * 1024

var envKeys = []string{
	"PORT", "SERVER_PORT", "MAX_FILE_SIZE", "LOG_LEVEL", "LOG_FILE",
	"SEARCH_DEBOUNCE_MS", "SESSION_TTL_MINUTES", "RENDER_DPI",
	"FETCH_TIMEOUT_SECONDS", "FETCH_ALLOW_PRIVATE_HOSTS", "ALLOWED_ORIGINS", "SUPABASE_URL", "SUPABASE_ANON_KEY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := NewConfig()

	if cfg.GetServerPort() != "8080" {
		t.Fatalf("expected default server port 8080, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxFileSize() != defaultMaxFileSize {
		t.Fatalf("expected default max file size %d, got %d", defaultMaxFileSize, cfg.GetMaxFileSize())
	}
	if cfg.GetLogLevel() != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.GetLogLevel())
	}
	if cfg.GetLogFile() != "" {
		t.Fatalf("expected no log file, got %s", cfg.GetLogFile())
	}
	if cfg.GetSearchDebounce() != 300*time.Millisecond {
		t.Fatalf("expected default debounce 300ms, got %v", cfg.GetSearchDebounce())
	}
	if cfg.GetSessionTTL() != time.Hour {
		t.Fatalf("expected default session ttl 1h, got %v", cfg.GetSessionTTL())
	}
	if cfg.GetRenderDPI() != 72 {
		t.Fatalf("expected default dpi 72, got %v", cfg.GetRenderDPI())
	}
	if cfg.GetFetchTimeout() != 30*time.Second {
		t.Fatalf("expected default fetch timeout 30s, got %v", cfg.GetFetchTimeout())
	}
	if cfg.GetAllowPrivateFetch() {
		t.Fatal("expected private hosts to be refused by default")
	}
	if cfg.GetAllowedOrigins() != nil {
		t.Fatalf("expected no configured origins, got %v", cfg.GetAllowedOrigins())
	}
	if cfg.GetSupabaseURL() != "" {
		t.Fatalf("expected default supabase url empty, got %s", cfg.GetSupabaseURL())
	}
	if cfg.GetSupabaseKey() != "" {
		t.Fatalf("expected default supabase key empty, got %s", cfg.GetSupabaseKey())
	}
}

func TestNewConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("MAX_FILE_SIZE", "12345")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", "/tmp/viewer.log")
	t.Setenv("SEARCH_DEBOUNCE_MS", "150")
	t.Setenv("SESSION_TTL_MINUTES", "5")
	t.Setenv("RENDER_DPI", "144")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "3")
	t.Setenv("FETCH_ALLOW_PRIVATE_HOSTS", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("SUPABASE_URL", "http://localhost:54321")
	t.Setenv("SUPABASE_ANON_KEY", "test-key")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9090" {
		t.Fatalf("expected server port 9090, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxFileSize() != 12345 {
		t.Fatalf("expected max file size 12345, got %d", cfg.GetMaxFileSize())
	}
	if cfg.GetLogLevel() != "debug" {
		t.Fatalf("expected log level debug, got %s", cfg.GetLogLevel())
	}
	if cfg.GetLogFile() != "/tmp/viewer.log" {
		t.Fatalf("expected log file /tmp/viewer.log, got %s", cfg.GetLogFile())
	}
	if cfg.GetSearchDebounce() != 150*time.Millisecond {
		t.Fatalf("expected debounce 150ms, got %v", cfg.GetSearchDebounce())
	}
	if cfg.GetSessionTTL() != 5*time.Minute {
		t.Fatalf("expected session ttl 5m, got %v", cfg.GetSessionTTL())
	}
	if cfg.GetRenderDPI() != 144 {
		t.Fatalf("expected dpi 144, got %v", cfg.GetRenderDPI())
	}
	if cfg.GetFetchTimeout() != 3*time.Second {
		t.Fatalf("expected fetch timeout 3s, got %v", cfg.GetFetchTimeout())
	}
	if !cfg.GetAllowPrivateFetch() {
		t.Fatal("expected private hosts to be allowed")
	}
	origins := cfg.GetAllowedOrigins()
	if len(origins) != 2 || origins[0] != "https://a.example.com" || origins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins: %v", origins)
	}
	if cfg.GetSupabaseURL() != "http://localhost:54321" {
		t.Fatalf("expected supabase url http://localhost:54321, got %s", cfg.GetSupabaseURL())
	}
	if cfg.GetSupabaseKey() != "test-key" {
		t.Fatalf("expected supabase key test-key, got %s", cfg.GetSupabaseKey())
	}
}

func TestNewConfig_Fallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9091")
	t.Setenv("MAX_FILE_SIZE", "not-a-number")
	t.Setenv("SEARCH_DEBOUNCE_MS", "-5")
	t.Setenv("RENDER_DPI", "zero")
	t.Setenv("ALLOWED_ORIGINS", " , ")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9091" {
		t.Fatalf("expected server port 9091, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxFileSize() != defaultMaxFileSize {
		t.Fatalf("expected default max file size %d, got %d", defaultMaxFileSize, cfg.GetMaxFileSize())
	}
	if cfg.GetSearchDebounce() != 300*time.Millisecond {
		t.Fatalf("expected default debounce for negative value, got %v", cfg.GetSearchDebounce())
	}
	if cfg.GetRenderDPI() != 72 {
		t.Fatalf("expected default dpi, got %v", cfg.GetRenderDPI())
	}
	if cfg.GetAllowedOrigins() != nil {
		t.Fatalf("expected no origins for blank list, got %v", cfg.GetAllowedOrigins())
	}
}
