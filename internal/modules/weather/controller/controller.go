package controller

import (
	"context"
	"log/slog"
	"net/http"

	"bearing-weather/internal/modules/weather/service"
)

// Searcher is satisfied by *service.Service.
type Searcher interface {
	Search(ctx context.Context, location string) (*service.Report, error)
}

type WeatherController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type weatherControllerImpl struct {
	searcher        Searcher
	defaultLocation string
	logger          *slog.Logger
}

func NewWeatherController(searcher Searcher, defaultLocation string, logger *slog.Logger) WeatherController {
	if logger == nil {
		logger = slog.Default()
	}
	return &weatherControllerImpl{
		searcher:        searcher,
		defaultLocation: defaultLocation,
		logger:          logger,
	}
}

func (c *weatherControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleDashboard)
	mux.HandleFunc("GET /partials/report", c.handleReportPartial)
	mux.HandleFunc("GET /api/v1/forecast/{location}", c.handleForecast)
	mux.HandleFunc("GET /api/v1/insights/{location}", c.handleInsights)
	mux.HandleFunc("POST /api/v1/insights", c.handleDeriveInsights)
}
