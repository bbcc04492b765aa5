package prometheus

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/SymRxn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SymRxn/internal/testutil"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

// gatheredValue returns the value of the first series of a counter, gauge or
// histogram sample count.
func gatheredValue(t *testing.T, c MetricsCollector, name string) (float64, bool) {
	t.Helper()
	families, err := c.Gatherer().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name || len(mf.GetMetric()) == 0 {
			continue
		}
		m := mf.GetMetric()[0]
		switch {
		case m.GetCounter() != nil:
			return m.GetCounter().GetValue(), true
		case m.GetGauge() != nil:
			return m.GetGauge().GetValue(), true
		case m.GetHistogram() != nil:
			return float64(m.GetHistogram().GetSampleCount()), true
		}
	}
	return 0, false
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{Subsystem: "unit"}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestNewMetricsCollector_WithProcessMetrics(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", EnableProcessMetrics: true}, nil)
	require.NoError(t, err)
	assert.Contains(t, scrapeMetrics(t, c), "process_cpu_seconds_total")
}

func TestRegisterCounter(t *testing.T) {
	c := newTestCollector(t)
	counter := c.RegisterCounter("pairs_total", "pairs", "reason")
	counter.WithLabelValues("ambiguous").Inc()
	counter.WithLabelValues("ambiguous").Add(2)

	v, ok := gatheredValue(t, c, "test_unit_pairs_total")
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
	assert.Contains(t, scrapeMetrics(t, c), `test_unit_pairs_total{reason="ambiguous"} 3`)
}

func TestRegisterCounter_Idempotent(t *testing.T) {
	c := newTestCollector(t)
	first := c.RegisterCounter("runs_total", "runs")
	second := c.RegisterCounter("runs_total", "runs")
	first.WithLabelValues().Inc()
	second.WithLabelValues().Inc()

	v, ok := gatheredValue(t, c, "test_unit_runs_total")
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
}

func TestRegister_TypeMismatchFallsBackToNoop(t *testing.T) {
	log := testutil.NewMockLogger()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test"}, log)
	require.NoError(t, err)

	c.RegisterCounter("things", "things")
	g := c.RegisterGauge("things", "things")
	assert.NotPanics(t, func() { g.WithLabelValues().Set(4) })
	assert.True(t, log.HasMessage("warn", "metric type mismatch"))
}

func TestRegisterGaugeAndHistogram(t *testing.T) {
	c := newTestCollector(t)
	g := c.RegisterGauge("in_progress", "in progress")
	g.WithLabelValues().Inc()
	g.WithLabelValues().Inc()
	g.WithLabelValues().Dec()

	v, ok := gatheredValue(t, c, "test_unit_in_progress")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)

	h := c.RegisterHistogram("duration_seconds", "duration", nil, "mode")
	NewTimer(h.WithLabelValues("sequential")).ObserveDuration()
	v, ok = gatheredValue(t, c, "test_unit_duration_seconds")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func TestRegister_Concurrent(t *testing.T) {
	c := newTestCollector(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RegisterCounter("shared_total", "shared").WithLabelValues().Inc()
		}()
	}
	wg.Wait()
	v, ok := gatheredValue(t, c, "test_unit_shared_total")
	require.True(t, ok)
	assert.Equal(t, 16.0, v)
}

func TestPush(t *testing.T) {
	var hits int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		assert.Contains(t, r.URL.Path, "/metrics/job/symrxn")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestCollector(t)
	c.RegisterCounter("pushed_total", "pushed").WithLabelValues().Inc()
	require.NoError(t, c.Push(srv.URL, "symrxn"))
	assert.Equal(t, 1, hits)

	assert.NoError(t, c.Push("", "symrxn"), "empty url disables push")
}

func TestPush_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestCollector(t)
	c.RegisterCounter("pushed_total", "pushed").WithLabelValues().Inc()
	assert.Error(t, c.Push(srv.URL, "symrxn"))
}

func TestNoopCollector(t *testing.T) {
	c := NewNoopCollector()
	assert.NotPanics(t, func() {
		c.RegisterCounter("a", "a", "x").WithLabelValues("1").Add(3)
		c.RegisterGauge("b", "b").WithLabelValues().Set(1)
		c.RegisterHistogram("c", "c", nil).WithLabelValues().Observe(0.1)
	})
	families, err := c.Gatherer().Gather()
	require.NoError(t, err)
	assert.Empty(t, families)
	assert.NoError(t, c.Push("http://unused", "job"))
}

func TestTimer_NilHistogram(t *testing.T) {
	timer := NewTimer(nil)
	time.Sleep(time.Millisecond)
	assert.Greater(t, timer.ObserveDuration(), time.Duration(0))
}

//Personal.AI order the ending
