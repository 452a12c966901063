package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"bearing-weather/internal/config"
	httpapi "bearing-weather/internal/httpapi"
	weather "bearing-weather/internal/modules/weather"
	"bearing-weather/internal/modules/weather/service"
	weatherviews "bearing-weather/internal/modules/weather/views"
	"bearing-weather/internal/mqtt"
	"bearing-weather/internal/scheduler"
)

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"defaultLocation", cfg.DefaultLocation,
		"forecastAPIURL", cfg.ForecastAPIURL,
		"forecastTimeout", cfg.ForecastTimeout,
		"forecastMaxRetries", cfg.ForecastMaxRetries,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopicPrefix", cfg.MQTTTopicPrefix,
		"briefingSchedule", cfg.BriefingSchedule,
		"briefingLocations", cfg.BriefingLocations,
	)

	if err := weatherviews.LoadTemplates(); err != nil {
		return err
	}

	// Interface values stay nil when MQTT is disabled so that health and the
	// service see "no publisher" rather than a nil *Publisher.
	var (
		publisher  *mqtt.Publisher
		servicePub service.Publisher
		mqttStatus httpapi.MQTTStatus
	)
	if cfg.MQTTEnabled() {
		publisher = mqtt.NewPublisher(cfg, logger)
		servicePub = publisher
		mqttStatus = publisher

		// Short timeout so a missing broker does not block startup.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err := publisher.Connect(connectCtx)
		connectCancel()
		if err != nil {
			logger.Warn("mqtt connection failed (continuing, will retry in background)", "error", err)
		}
	} else {
		logger.Info("mqtt disabled: MQTT_BROKER not set")
	}

	mux := http.NewServeMux()
	feature := weather.RegisterFeature(mux, cfg, servicePub, logger)
	httpapi.RegisterHealthcheck(mux, mqttStatus, feature.Client)

	var briefing *scheduler.Briefing
	if cfg.BriefingSchedule != "" {
		var err error
		briefing, err = scheduler.NewBriefing(cfg.BriefingSchedule, cfg.BriefingLocations, feature.Service, logger)
		if err != nil {
			if publisher != nil {
				publisher.Disconnect()
			}
			return err
		}
		briefing.Start()
	}

	srv := httpapi.NewServer(cfg, mux, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	if briefing != nil {
		logger.Info("briefing scheduler stopping")
		briefing.Stop()
	}
	if publisher != nil {
		logger.Info("mqtt disconnecting")
		publisher.Disconnect()
	}

	if serveErr != nil {
		if errors.Is(serveErr, http.ErrServerClosed) {
			return nil
		}
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err := <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
