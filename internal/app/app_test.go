package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadexport/internal/config"
	"leadexport/internal/exporter"
	"leadexport/internal/middleware"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) *Application {
	t.Helper()
	cfg := config.Default()
	cfg.Export.Timezone = "Europe/Berlin"
	cfg.Export.Locale = "de-DE"
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())

	a, err := NewApplicationWithConfig(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.OTelProviders.Shutdown(context.Background()) })
	return a
}

func serve(a *Application, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func TestApplication_ExportRoute(t *testing.T) {
	a := newTestApp(t, nil)

	body := `{"records":[{"email":"a@x.com","captured_at":"2024-01-15T10:00:00Z"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/captures/export", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := serve(a, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, exporter.MIMETypeCSV, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "email-captures-")
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	lines := strings.Split(w.Body.String(), "\n")
	require.Len(t, lines, 2)
	// 10:00 UTC is 11:00 in Berlin in January, rendered with the German layout
	assert.Equal(t, `a@x.com,,,,,"15.1.2024, 11:00:00",`, lines[1])
}

func TestApplication_HealthAndVersion(t *testing.T) {
	a := newTestApp(t, nil)

	for _, target := range []string{"/api/health", "/api/health/live", "/api/health/ready", "/api/version"} {
		t.Run(target, func(t *testing.T) {
			w := serve(a, httptest.NewRequest(http.MethodGet, target, nil))
			assert.Equal(t, http.StatusOK, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["version"])
		})
	}
}

func TestApplication_NotFoundAndMethodNotAllowed(t *testing.T) {
	a := newTestApp(t, nil)

	w := serve(a, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(a, httptest.NewRequest(http.MethodGet, "/api/captures/export", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestApplication_MetricsEndpoint(t *testing.T) {
	a := newTestApp(t, nil)

	body := `{"records":[{"email":"a@x.com","captured_at":"2024-01-15"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/captures/export", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	require.Equal(t, http.StatusOK, serve(a, req).Code)

	w := serve(a, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "capture_exports_total")
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestApplication_MetricsDisabled(t *testing.T) {
	a := newTestApp(t, func(cfg *config.Config) {
		cfg.Telemetry.MetricExporter = "none"
	})

	w := serve(a, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApplication_RateLimit(t *testing.T) {
	a := newTestApp(t, func(cfg *config.Config) {
		cfg.RateLimit.RPS = 0.001
		cfg.RateLimit.Burst = 1
	})

	assert.Equal(t, http.StatusOK, serve(a, httptest.NewRequest(http.MethodGet, "/api/health", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(a, httptest.NewRequest(http.MethodGet, "/api/health", nil)).Code)
}

func TestApplication_ServeAndShutdown(t *testing.T) {
	a := newTestApp(t, func(cfg *config.Config) {
		cfg.Server.ShutdownTimeout = 2 * time.Second
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/api/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
