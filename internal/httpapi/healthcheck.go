package httpapi

import (
	"net/http"

	"bearing-weather/internal/utils"
)

// MQTTStatus is satisfied by *mqtt.Publisher.
type MQTTStatus interface {
	IsConnected() bool
}

// BreakerStatus is satisfied by *client.APIClient.
type BreakerStatus interface {
	BreakerState() string
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	mqtt    MQTTStatus
	breaker BreakerStatus
}

// NewHealthchecker reports process health. mqtt is nil when publishing is
// disabled; breaker may be nil in tests.
func NewHealthchecker(mqtt MQTTStatus, breaker BreakerStatus) healthchecker {
	return &healthcheckerImpl{mqtt: mqtt, breaker: breaker}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}

	switch {
	case h.mqtt == nil:
		body["mqtt"] = "disabled"
	case h.mqtt.IsConnected():
		body["mqtt"] = "connected"
	default:
		body["mqtt"] = "disconnected"
	}

	if h.breaker != nil {
		body["upstream"] = h.breaker.BreakerState()
	}

	utils.WriteJSON(w, http.StatusOK, body)
}

// RegisterHealthcheck mounts GET /healthz on mux.
func RegisterHealthcheck(mux *http.ServeMux, mqtt MQTTStatus, breaker BreakerStatus) {
	healthchecker := NewHealthchecker(mqtt, breaker)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
