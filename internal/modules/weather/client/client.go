package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"bearing-weather/internal/modules/weather/types"
)

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrFetchFailed      = errors.New("failed to fetch weather data")

	// errRateLimited marks a request the local limiter refused before it
	// reached the upstream.
	errRateLimited = errors.New("rate limit wait")
)

// NotFoundError carries the searched location; it matches ErrLocationNotFound.
type NotFoundError struct {
	Location string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Location %q not found", e.Location)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrLocationNotFound
}

// statusError is a non-2xx upstream response.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.code)
}

func (e *statusError) retryable() bool {
	return e.code >= 500 || e.code == http.StatusTooManyRequests
}

func isNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.code == http.StatusNotFound
}

type Client interface {
	FetchForecast(ctx context.Context, location string) (types.Forecast, error)
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	Multiplier     float64
	BreakerTimeout time.Duration
	RateLimit      float64
	RateBurst      int
}

// APIClient fetches forecasts from the upstream HTTP API.
type APIClient struct {
	baseURL    string
	doer       HTTPDoer
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
	logger     *slog.Logger
	maxRetries int
	retryDelay time.Duration
	multiplier float64
}

// New returns a forecast client backed by net/http. A nil doer uses an
// http.Client with cfg.Timeout.
func New(cfg Config, doer HTTPDoer, logger *slog.Logger) *APIClient {
	if logger == nil {
		logger = slog.Default()
	}
	if doer == nil {
		doer = &http.Client{Timeout: cfg.Timeout}
	}
	multiplier := cfg.Multiplier
	if multiplier < 1 {
		multiplier = 2
	}

	settings := gobreaker.Settings{
		Name:        "forecast-api",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isNotFound(err) || errors.Is(err, context.Canceled) || errors.Is(err, errRateLimited)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &APIClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		doer:       doer,
		breaker:    gobreaker.NewCircuitBreaker(settings),
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		multiplier: multiplier,
	}
}

// BreakerState reports the circuit breaker state for health output.
func (c *APIClient) BreakerState() string {
	return c.breaker.State().String()
}

func (c *APIClient) FetchForecast(ctx context.Context, location string) (types.Forecast, error) {
	endpoint := c.baseURL + "/forecast/location/" + url.PathEscape(location)

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.getWithRetry(ctx, endpoint)
	})
	if err != nil {
		switch {
		case isNotFound(err):
			return types.Forecast{}, &NotFoundError{Location: location}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return types.Forecast{}, err
		default:
			return types.Forecast{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
		}
	}

	var forecast types.Forecast
	if err := json.Unmarshal(out.([]byte), &forecast); err != nil {
		return types.Forecast{}, fmt.Errorf("%w: decode forecast: %w", ErrFetchFailed, err)
	}
	return forecast, nil
}

func (c *APIClient) getWithRetry(ctx context.Context, endpoint string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(c.retryDelay) * math.Pow(c.multiplier, float64(attempt-1)))
			c.logger.Debug("retrying forecast request",
				"url", endpoint,
				"attempt", attempt,
				"delay", delay,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("%w: %w", errRateLimited, ctxErr)
			}
			// The limiter refuses up front when the next token lands past
			// the deadline.
			return nil, fmt.Errorf("%w: %w", errRateLimited, context.DeadlineExceeded)
		}

		body, err := c.get(ctx, endpoint)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err

		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			return nil, err
		}
		c.logger.Warn("forecast request failed",
			"url", endpoint,
			"attempt", attempt,
			"error", err,
		)
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *APIClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("close forecast response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	c.logger.Debug("forecast request successful",
		"url", endpoint,
		"status", resp.StatusCode,
		"body_size", len(body),
	)
	return body, nil
}
