package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/SymRxn/internal/application/enumeration"
	"github.com/turtacn/SymRxn/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/SymRxn/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/SymRxn/internal/interfaces/http/handlers"
)

type fakeChecker struct {
	name string
	err  error
}

func (f fakeChecker) Name() string                    { return f.name }
func (f fakeChecker) Check(ctx context.Context) error { return f.err }

func serve(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestRouter_Health(t *testing.T) {
	router := NewRouter(RouterConfig{
		HealthHandler: handlers.NewHealthHandler("v1.2.3", fakeChecker{name: "redis"}),
	})

	w, body := serve(t, router, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", body["status"])
	assert.Equal(t, "v1.2.3", body["version"])

	w, body = serve(t, router, "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", body["status"])
	components := body["components"].(map[string]interface{})
	assert.Equal(t, "healthy", components["redis"].(map[string]interface{})["status"])
}

func TestRouter_ReadinessFailure(t *testing.T) {
	router := NewRouter(RouterConfig{
		HealthHandler: handlers.NewHealthHandler("dev",
			fakeChecker{name: "redis", err: fmt.Errorf("connection refused")},
			fakeChecker{name: "other"}),
	})

	w, body := serve(t, router, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "not_ready", body["status"])
	redis := body["components"].(map[string]interface{})["redis"].(map[string]interface{})
	assert.Equal(t, "unhealthy", redis["status"])
	assert.Equal(t, "connection refused", redis["error"])
}

func TestRouter_NoCheckersIsReady(t *testing.T) {
	router := NewRouter(RouterConfig{HealthHandler: handlers.NewHealthHandler("dev")})
	w, body := serve(t, router, "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", body["status"])
}

func TestRouter_Progress(t *testing.T) {
	progress := handlers.NewProgressHandler()
	router := NewRouter(RouterConfig{ProgressHandler: progress})

	_, body := serve(t, router, "/progress")
	assert.EqualValues(t, 0, body["done"])

	progress.Update(enumeration.Progress{Done: 3, Total: 8, Template: "[C:1]Cl>>[C:1]O", Target: "chloropropane"})
	w, body := serve(t, router, "/progress")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, body["done"])
	assert.EqualValues(t, 8, body["total"])
	assert.Equal(t, "chloropropane", body["target"])
}

func TestRouter_Metrics(t *testing.T) {
	collector, err := prom.NewMetricsCollector(prom.CollectorConfig{Namespace: "symrxn"}, logging.NewNopLogger())
	require.NoError(t, err)
	metrics := prom.NewEngineMetrics(collector)
	metrics.OrbitPasses.WithLabelValues().Inc()

	router := NewRouter(RouterConfig{MetricsCollector: collector})
	w, _ := serve(t, router, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "symrxn_")
}

func TestRouter_UnroutedPaths(t *testing.T) {
	router := NewRouter(RouterConfig{})
	for _, p := range []string{"/healthz", "/progress", "/metrics"} {
		w, _ := serve(t, router, p)
		assert.Equal(t, http.StatusNotFound, w.Code, p)
	}
}

func TestRouter_RequestLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	router := NewRouter(RouterConfig{
		HealthHandler:   handlers.NewHealthHandler("dev"),
		ProgressHandler: handlers.NewProgressHandler(),
		Logger:          logging.NewLoggerFromCore(core),
	})

	serve(t, router, "/healthz")
	assert.Zero(t, logs.Len())

	serve(t, router, "/progress")
	require.Equal(t, 1, logs.FilterMessage("request served").Len())

	serve(t, router, "/missing")
	entry := logs.FilterMessage("request rejected").All()
	require.Len(t, entry, 1)
	assert.EqualValues(t, http.StatusNotFound, entry[0].ContextMap()["status"])
}

func TestServer_StartStop(t *testing.T) {
	srv := NewServer("127.0.0.1:0", NewRouter(RouterConfig{HealthHandler: handlers.NewHealthHandler("dev")}), nil)
	require.NoError(t, srv.Start())

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "alive")

	require.NoError(t, srv.Stop(context.Background()))
	_, err = http.Get("http://" + srv.Addr() + "/healthz")
	assert.Error(t, err)
}

func TestServer_ListenFailure(t *testing.T) {
	first := NewServer("127.0.0.1:0", http.NotFoundHandler(), nil)
	require.NoError(t, first.Start())
	defer first.Stop(context.Background())

	second := NewServer(first.Addr(), http.NotFoundHandler(), nil)
	assert.Error(t, second.Start())
}

//Personal.AI order the ending
