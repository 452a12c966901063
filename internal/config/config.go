package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// DefaultLocation is searched when the dashboard is opened without ?location=.
	DefaultLocation string

	ForecastAPIURL         string
	ForecastTimeout        time.Duration
	ForecastMaxRetries     int
	ForecastRetryDelay     time.Duration
	ForecastBreakerTimeout time.Duration
	ForecastRateLimit      float64
	ForecastRateBurst      int

	// MQTTBroker empty disables insight publishing.
	MQTTBroker      string
	MQTTPort        int
	MQTTClientID    string
	MQTTTopicPrefix string

	// BriefingSchedule empty disables the scheduler.
	BriefingSchedule  string
	BriefingLocations []string
}

// LoadFromEnv reads configuration from the environment. A .env file in the
// working directory is loaded first; variables already set take precedence.
func LoadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	forecastURL := envOr("FORECAST_API_URL", "https://weather.lexlink.se")
	u, err := url.Parse(forecastURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Config{}, fmt.Errorf("invalid FORECAST_API_URL %q (expected absolute http(s) URL)", forecastURL)
	}

	timeout, err := durationEnv("FORECAST_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	if timeout <= 0 {
		return Config{}, fmt.Errorf("invalid FORECAST_TIMEOUT %q: must be > 0", timeout)
	}

	maxRetries, err := intEnv("FORECAST_MAX_RETRIES", "2")
	if err != nil {
		return Config{}, err
	}
	if maxRetries < 0 {
		return Config{}, fmt.Errorf("invalid FORECAST_MAX_RETRIES %d: must be >= 0", maxRetries)
	}

	retryDelay, err := durationEnv("FORECAST_RETRY_DELAY", "500ms")
	if err != nil {
		return Config{}, err
	}
	if retryDelay < 0 {
		return Config{}, fmt.Errorf("invalid FORECAST_RETRY_DELAY %q: must be >= 0", retryDelay)
	}

	breakerTimeout, err := durationEnv("FORECAST_BREAKER_TIMEOUT", "30s")
	if err != nil {
		return Config{}, err
	}
	if breakerTimeout <= 0 {
		return Config{}, fmt.Errorf("invalid FORECAST_BREAKER_TIMEOUT %q: must be > 0", breakerTimeout)
	}

	rateLimitStr := envOr("FORECAST_RATE_LIMIT", "5")
	rateLimit, err := strconv.ParseFloat(rateLimitStr, 64)
	if err != nil || rateLimit <= 0 {
		return Config{}, fmt.Errorf("invalid FORECAST_RATE_LIMIT %q (expected number > 0)", rateLimitStr)
	}

	rateBurst, err := intEnv("FORECAST_RATE_BURST", "5")
	if err != nil {
		return Config{}, err
	}
	if rateBurst <= 0 {
		return Config{}, fmt.Errorf("invalid FORECAST_RATE_BURST %d: must be > 0", rateBurst)
	}

	mqttPort, err := intEnv("MQTT_PORT", "1883")
	if err != nil {
		return Config{}, err
	}

	schedule := strings.TrimSpace(os.Getenv("BRIEFING_SCHEDULE"))
	if schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return Config{}, fmt.Errorf("invalid BRIEFING_SCHEDULE %q: %w", schedule, err)
		}
	}

	defaultLocation := envOr("DEFAULT_LOCATION", "Linköping")

	return Config{
		AppEnv:                 appEnv,
		LogLevel:               level,
		HTTPAddr:               envOr("HTTP_ADDR", ":8080"),
		DefaultLocation:        defaultLocation,
		ForecastAPIURL:         forecastURL,
		ForecastTimeout:        timeout,
		ForecastMaxRetries:     maxRetries,
		ForecastRetryDelay:     retryDelay,
		ForecastBreakerTimeout: breakerTimeout,
		ForecastRateLimit:      rateLimit,
		ForecastRateBurst:      rateBurst,
		MQTTBroker:             strings.TrimSpace(os.Getenv("MQTT_BROKER")),
		MQTTPort:               mqttPort,
		MQTTClientID:           envOr("MQTT_CLIENT_ID", "bearing-weather"),
		MQTTTopicPrefix:        strings.Trim(envOr("MQTT_TOPIC_PREFIX", "bearing/locations"), "/"),
		BriefingSchedule:       schedule,
		BriefingLocations:      splitList(envOr("BRIEFING_LOCATIONS", defaultLocation)),
	}, nil
}

// MQTTEnabled reports whether a broker is configured.
func (c Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key, fallback string) (int, error) {
	s := envOr(key, fallback)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func durationEnv(key, fallback string) (time.Duration, error) {
	s := envOr(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
