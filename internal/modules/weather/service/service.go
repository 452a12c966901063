package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bearing-weather/internal/modules/weather/client"
	"bearing-weather/internal/modules/weather/insights"
	"bearing-weather/internal/modules/weather/types"
)

var ErrInvalidLocation = errors.New("Invalid location")

// Report is the result of one location search.
type Report struct {
	Forecast  types.Forecast  `json:"forecast"`
	Insights  insights.Result `json:"insights"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Publisher forwards reports to subscribers outside the process.
type Publisher interface {
	Publish(location string, payload any) error
}

type Service struct {
	client    client.Client
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds the search service. publisher may be nil.
func NewService(c client.Client, publisher Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:    c,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Search fetches the forecast for location and derives its insights.
func (s *Service) Search(ctx context.Context, location string) (*Report, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrInvalidLocation
	}

	forecast, err := s.client.FetchForecast(ctx, location)
	if err != nil {
		return nil, err
	}

	result, err := insights.Derive(forecast)
	if err != nil {
		return nil, fmt.Errorf("derive insights for %q: %w", location, err)
	}

	report := &Report{
		Forecast:  forecast,
		Insights:  result,
		FetchedAt: s.now().UTC(),
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(location, report); err != nil {
			s.logger.Warn("publish insights failed",
				"location", location,
				"error", err,
			)
		}
	}

	s.logger.Debug("search completed",
		"location", location,
		"observations", len(forecast.Timeseries),
		"considerations", len(result.CurrentConsiderations),
	)
	return report, nil
}
