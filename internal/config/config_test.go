package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"APP_ENV", "LOG_LEVEL", "HTTP_ADDR", "DEFAULT_LOCATION",
	"FORECAST_API_URL", "FORECAST_TIMEOUT", "FORECAST_MAX_RETRIES", "FORECAST_RETRY_DELAY",
	"FORECAST_BREAKER_TIMEOUT", "FORECAST_RATE_LIMIT", "FORECAST_RATE_BURST",
	"MQTT_BROKER", "MQTT_PORT", "MQTT_CLIENT_ID", "MQTT_TOPIC_PREFIX",
	"BRIEFING_SCHEDULE", "BRIEFING_LOCATIONS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}

	if got.AppEnv != "dev" {
		t.Errorf("AppEnv = %q, want %q", got.AppEnv, "dev")
	}
	if got.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", got.LogLevel, slog.LevelInfo)
	}
	if got.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", got.HTTPAddr, ":8080")
	}
	if got.DefaultLocation != "Linköping" {
		t.Errorf("DefaultLocation = %q, want Linköping", got.DefaultLocation)
	}
	if got.ForecastAPIURL != "https://weather.lexlink.se" {
		t.Errorf("ForecastAPIURL = %q", got.ForecastAPIURL)
	}
	if got.ForecastTimeout != 10*time.Second {
		t.Errorf("ForecastTimeout = %v, want 10s", got.ForecastTimeout)
	}
	if got.ForecastMaxRetries != 2 {
		t.Errorf("ForecastMaxRetries = %d, want 2", got.ForecastMaxRetries)
	}
	if got.ForecastRetryDelay != 500*time.Millisecond {
		t.Errorf("ForecastRetryDelay = %v, want 500ms", got.ForecastRetryDelay)
	}
	if got.ForecastBreakerTimeout != 30*time.Second {
		t.Errorf("ForecastBreakerTimeout = %v, want 30s", got.ForecastBreakerTimeout)
	}
	if got.ForecastRateLimit != 5 || got.ForecastRateBurst != 5 {
		t.Errorf("rate = %v/%d, want 5/5", got.ForecastRateLimit, got.ForecastRateBurst)
	}
	if got.MQTTEnabled() {
		t.Error("MQTTEnabled() = true, want false without MQTT_BROKER")
	}
	if got.MQTTPort != 1883 || got.MQTTClientID != "bearing-weather" || got.MQTTTopicPrefix != "bearing/locations" {
		t.Errorf("mqtt = %d %q %q", got.MQTTPort, got.MQTTClientID, got.MQTTTopicPrefix)
	}
	if got.BriefingSchedule != "" {
		t.Errorf("BriefingSchedule = %q, want empty", got.BriefingSchedule)
	}
	if len(got.BriefingLocations) != 1 || got.BriefingLocations[0] != "Linköping" {
		t.Errorf("BriefingLocations = %v, want [Linköping]", got.BriefingLocations)
	}
}

func TestLoadFromEnv_AppEnv_Valid(t *testing.T) {
	tests := []struct {
		name   string
		appEnv string
		want   string
	}{
		{name: "dev", appEnv: "dev", want: "dev"},
		{name: "prod", appEnv: "prod", want: "prod"},
		{name: "prod with whitespace", appEnv: "\nprod\t", want: "prod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", tt.appEnv)

			got, err := LoadFromEnv()
			if err != nil {
				t.Fatalf("LoadFromEnv() error = %v, want nil", err)
			}
			if got.AppEnv != tt.want {
				t.Errorf("AppEnv = %q, want %q", got.AppEnv, tt.want)
			}
		})
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("DEFAULT_LOCATION", " Oslo ")
	t.Setenv("FORECAST_API_URL", "http://localhost:9000")
	t.Setenv("FORECAST_MAX_RETRIES", "0")
	t.Setenv("FORECAST_RETRY_DELAY", "0s")
	t.Setenv("FORECAST_RATE_LIMIT", "0.5")
	t.Setenv("MQTT_BROKER", "broker.local")
	t.Setenv("MQTT_PORT", "8883")
	t.Setenv("MQTT_TOPIC_PREFIX", "/weather/")
	t.Setenv("BRIEFING_SCHEDULE", "@every 30m")
	t.Setenv("BRIEFING_LOCATIONS", "Oslo, , Bergen ,Tromsø,")

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}
	if got.LogLevel != slog.LevelWarn {
		t.Errorf("LogLevel = %v, want warn", got.LogLevel)
	}
	if got.DefaultLocation != "Oslo" {
		t.Errorf("DefaultLocation = %q, want Oslo", got.DefaultLocation)
	}
	if got.ForecastAPIURL != "http://localhost:9000" {
		t.Errorf("ForecastAPIURL = %q", got.ForecastAPIURL)
	}
	if got.ForecastMaxRetries != 0 || got.ForecastRetryDelay != 0 {
		t.Errorf("retries = %d/%v, want 0/0", got.ForecastMaxRetries, got.ForecastRetryDelay)
	}
	if got.ForecastRateLimit != 0.5 {
		t.Errorf("ForecastRateLimit = %v, want 0.5", got.ForecastRateLimit)
	}
	if !got.MQTTEnabled() || got.MQTTBroker != "broker.local" || got.MQTTPort != 8883 {
		t.Errorf("mqtt = %v %q %d", got.MQTTEnabled(), got.MQTTBroker, got.MQTTPort)
	}
	if got.MQTTTopicPrefix != "weather" {
		t.Errorf("MQTTTopicPrefix = %q, want weather", got.MQTTTopicPrefix)
	}
	if got.BriefingSchedule != "@every 30m" {
		t.Errorf("BriefingSchedule = %q", got.BriefingSchedule)
	}
	want := []string{"Oslo", "Bergen", "Tromsø"}
	if strings.Join(got.BriefingLocations, "|") != strings.Join(want, "|") {
		t.Errorf("BriefingLocations = %v, want %v", got.BriefingLocations, want)
	}
}

func TestLoadFromEnv_BriefingLocationsFollowDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_LOCATION", "Umeå")

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}
	if len(got.BriefingLocations) != 1 || got.BriefingLocations[0] != "Umeå" {
		t.Errorf("BriefingLocations = %v, want [Umeå]", got.BriefingLocations)
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantSub string
	}{
		{"APP_ENV", "staging", "APP_ENV"},
		{"LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"FORECAST_API_URL", "weather.lexlink.se", "FORECAST_API_URL"},
		{"FORECAST_API_URL", "ftp://weather.lexlink.se", "FORECAST_API_URL"},
		{"FORECAST_API_URL", "http://", "FORECAST_API_URL"},
		{"FORECAST_TIMEOUT", "soon", "FORECAST_TIMEOUT"},
		{"FORECAST_TIMEOUT", "0s", "FORECAST_TIMEOUT"},
		{"FORECAST_MAX_RETRIES", "-1", "FORECAST_MAX_RETRIES"},
		{"FORECAST_MAX_RETRIES", "two", "FORECAST_MAX_RETRIES"},
		{"FORECAST_RETRY_DELAY", "-1s", "FORECAST_RETRY_DELAY"},
		{"FORECAST_BREAKER_TIMEOUT", "0", "FORECAST_BREAKER_TIMEOUT"},
		{"FORECAST_RATE_LIMIT", "0", "FORECAST_RATE_LIMIT"},
		{"FORECAST_RATE_LIMIT", "fast", "FORECAST_RATE_LIMIT"},
		{"FORECAST_RATE_BURST", "0", "FORECAST_RATE_BURST"},
		{"MQTT_PORT", "mqtt", "MQTT_PORT"},
		{"BRIEFING_SCHEDULE", "every morning", "BRIEFING_SCHEDULE"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadFromEnv()
			if err == nil {
				t.Fatalf("LoadFromEnv() error = nil, want error for %s=%q", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %q, want it to name %s", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestLoadFromEnv_DotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that is present, even if empty.
	os.Unsetenv("MQTT_CLIENT_ID")

	dir := t.TempDir()
	content := "MQTT_CLIENT_ID=from-dotenv\nHTTP_ADDR=:9999\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Chdir(dir)
	t.Setenv("HTTP_ADDR", ":7070")

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}
	if got.MQTTClientID != "from-dotenv" {
		t.Errorf("MQTTClientID = %q, want from-dotenv", got.MQTTClientID)
	}
	if got.HTTPAddr != ":7070" {
		t.Errorf("HTTPAddr = %q, want the real environment to win", got.HTTPAddr)
	}
}
