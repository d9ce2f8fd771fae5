package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("GinMode = %q", cfg.GinMode)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.DBPath != "messaging.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Messaging.PingInterval != 30*time.Second {
		t.Fatalf("PingInterval = %v", cfg.Messaging.PingInterval)
	}
	if cfg.Messaging.MaxBodyRunes != 4000 || cfg.Messaging.CatchUpLimit != 50 {
		t.Fatalf("messaging limits: %+v", cfg.Messaging)
	}
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate limits: rps=%v burst=%d", cfg.RateRPS, cfg.RateBurst)
	}
	if cfg.OTEL.Enabled {
		t.Fatal("OTEL enabled by default")
	}
	if len(cfg.CORS.AllowedOrigins) != 0 {
		t.Fatalf("CORS origins: %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("GIN_MODE", "test")
	t.Setenv("WS_PING_INTERVAL", "15s")
	t.Setenv("MESSAGE_MAX_RUNES", "100")
	t.Setenv("MESSAGE_CATCHUP_LIMIT", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9999" || cfg.LogLevel != "debug" || cfg.GinMode != "test" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Messaging.PingInterval != 15*time.Second || cfg.Messaging.MaxBodyRunes != 100 || cfg.Messaging.CatchUpLimit != 5 {
		t.Fatalf("messaging overrides: %+v", cfg.Messaging)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("CSV parsing: %v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.SampleRatio != 0.25 {
		t.Fatalf("OTEL overrides: %+v", cfg.OTEL)
	}
}

func TestLoad_NormalizesWarning(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warning")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoad_InvalidGinModeFallsBack(t *testing.T) {
	t.Setenv("GIN_MODE", "experimental")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("GinMode = %q", cfg.GinMode)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"zero ping interval", "WS_PING_INTERVAL", "0s"},
		{"zero max runes", "MESSAGE_MAX_RUNES", "0"},
		{"zero catchup", "MESSAGE_CATCHUP_LIMIT", "0"},
		{"negative rps", "RATE_RPS", "-1"},
		{"zero burst", "RATE_BURST", "0"},
		{"bad sample ratio", "OTEL_TRACES_SAMPLER_ARG", "1.5"},
		{"negative timeout", "READ_TIMEOUT", "-5s"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestMustLoad_PanicsOnInvalid(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustLoad()
}
