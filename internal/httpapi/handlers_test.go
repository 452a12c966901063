package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bearing-weather/internal/config"
)

type fakeMQTT struct{ connected bool }

func (f fakeMQTT) IsConnected() bool { return f.connected }

type fakeBreaker struct{ state string }

func (f fakeBreaker) BreakerState() string { return f.state }

func newTestServer(t *testing.T, mqtt MQTTStatus, breaker BreakerStatus) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	RegisterHealthcheck(mux, mqtt, breaker)
	srv := NewServer(config.Config{HTTPAddr: ":0"}, mux, logger)
	ts := httptest.NewServer(srv.Handler)

	t.Cleanup(ts.Close)
	return ts
}

func mustGetJSON[T any](t *testing.T, client *http.Client, url string, out *T) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}

	t.Cleanup(func() { _ = resp.Body.Close() })

	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(out); err != nil {
		t.Fatalf("decode json: %v", err)
	}

	return resp
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name         string
		mqtt         MQTTStatus
		breaker      BreakerStatus
		wantMQTT     string
		wantUpstream string
	}{
		{name: "mqtt disabled", mqtt: nil, breaker: fakeBreaker{"closed"}, wantMQTT: "disabled", wantUpstream: "closed"},
		{name: "mqtt connected", mqtt: fakeMQTT{connected: true}, breaker: fakeBreaker{"closed"}, wantMQTT: "connected", wantUpstream: "closed"},
		{name: "mqtt down and breaker open", mqtt: fakeMQTT{}, breaker: fakeBreaker{"open"}, wantMQTT: "disconnected", wantUpstream: "open"},
		{name: "no breaker", mqtt: nil, breaker: nil, wantMQTT: "disabled", wantUpstream: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.mqtt, tt.breaker)

			var body map[string]string
			resp := mustGetJSON(t, ts.Client(), ts.URL+"/healthz", &body)

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusOK)
			}
			if body["status"] != "ok" {
				t.Errorf("body.status=%q want=%q", body["status"], "ok")
			}
			if body["mqtt"] != tt.wantMQTT {
				t.Errorf("body.mqtt=%q want=%q", body["mqtt"], tt.wantMQTT)
			}
			if body["upstream"] != tt.wantUpstream {
				t.Errorf("body.upstream=%q want=%q", body["upstream"], tt.wantUpstream)
			}
		})
	}
}

func TestRouting(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	t.Run("unknown route is 404", func(t *testing.T) {
		resp, err := ts.Client().Get(ts.URL + "/nope")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusNotFound)
		}
	})

	t.Run("wrong method is 405", func(t *testing.T) {
		resp, err := ts.Client().Post(ts.URL+"/healthz", "application/json", strings.NewReader("{}"))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Fatalf("status=%d want=%d", resp.StatusCode, http.StatusMethodNotAllowed)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := requestLogger(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/brew", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "http request" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["method"] != "GET" || entry["path"] != "/brew" {
		t.Errorf("method/path = %v %v", entry["method"], entry["path"])
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Errorf("status = %v; want %d", entry["status"], http.StatusTeapot)
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Error("missing duration_ms")
	}
}

func TestRequestLogger_defaultStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := requestLogger(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), `"status":200`) {
		t.Errorf("log = %q; want status 200", buf.String())
	}
}
