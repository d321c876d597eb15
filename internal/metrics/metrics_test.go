package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveAction("eventbrite", "created")
	m.ObserveAction("eventbrite", "created")
	m.ObserveAction("meetup", "unchanged")
	m.ObserveError("meetup")
	m.ObserveInactive("eventbrite", 3)
	m.ObserveCleanup(5)
	m.ObserveRun(250 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.processedTotal.WithLabelValues("eventbrite", "created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.processedTotal.WithLabelValues("meetup", "unchanged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scrapeErrors.WithLabelValues("meetup")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.inactiveTotal.WithLabelValues("eventbrite")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.cleanedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal))
	assert.Greater(t, testutil.ToFloat64(m.lastRunUnixtime), 0.0)
}

func TestMetrics_Exposition(t *testing.T) {
	m := New()
	m.ObserveAction("mock", "created")

	srv := httptest.NewServer(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `eventsync_events_processed_total{action="created",source="mock"} 1`)
}

func TestMetrics_ServeDisabled(t *testing.T) {
	// A blank address means no endpoint; Serve returns immediately.
	assert.NoError(t, New().Serve(context.Background(), ""))
}
