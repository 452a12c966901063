package weather

import (
	"log/slog"
	"net/http"

	"bearing-weather/internal/config"
	"bearing-weather/internal/modules/weather/client"
	"bearing-weather/internal/modules/weather/controller"
	"bearing-weather/internal/modules/weather/service"
)

// Feature exposes the pieces other subsystems depend on.
type Feature struct {
	Client  *client.APIClient
	Service *service.Service
}

// RegisterFeature wires the forecast client, the search service and the
// weather routes. publisher may be nil.
func RegisterFeature(mux *http.ServeMux, cfg config.Config, publisher service.Publisher, logger *slog.Logger) *Feature {
	forecastClient := client.New(client.Config{
		BaseURL:        cfg.ForecastAPIURL,
		Timeout:        cfg.ForecastTimeout,
		MaxRetries:     cfg.ForecastMaxRetries,
		RetryDelay:     cfg.ForecastRetryDelay,
		BreakerTimeout: cfg.ForecastBreakerTimeout,
		RateLimit:      cfg.ForecastRateLimit,
		RateBurst:      cfg.ForecastRateBurst,
	}, nil, logger)

	weatherService := service.NewService(forecastClient, publisher, logger)
	weatherController := controller.NewWeatherController(weatherService, cfg.DefaultLocation, logger)
	weatherController.RegisterRoutes(mux)

	return &Feature{Client: forecastClient, Service: weatherService}
}
