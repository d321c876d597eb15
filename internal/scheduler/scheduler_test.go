package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventsync/internal/adapters"
	"eventsync/internal/config"
	"eventsync/internal/engine"
	"eventsync/internal/orchestrator"
	"eventsync/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScheduler(t *testing.T, cfg config.SchedulerConfig) (*Scheduler, *store.Memory) {
	t.Helper()
	log := testLogger()
	st := store.NewMemory()
	mock := adapters.NewMockAdapter("https://events.invalid", config.CityConfig{Name: "Sydney", State: "NSW", Country: "Australia"}, 1, 4)
	orch := orchestrator.New([]adapters.Adapter{mock}, engine.NewSynchronizer(st, log), st, nil, log)
	return New(orch, cfg, log), st
}

func intervals() config.SchedulerConfig {
	// Long enough that tickers never fire during a test.
	return config.SchedulerConfig{
		ScrapeInterval:  time.Hour,
		CleanupInterval: time.Hour,
		CleanupDays:     30,
		InitialDelay:    5 * time.Millisecond,
	}
}

func TestScheduler_InitialScrapeFires(t *testing.T) {
	s, st := newTestScheduler(t, intervals())
	s.StartAll(context.Background())
	defer s.StopAll()

	require.Eventually(t, func() bool { return st.Len() == 4 },
		2*time.Second, 10*time.Millisecond, "initial delayed scrape should populate the store")
}

func TestScheduler_Status(t *testing.T) {
	s, _ := newTestScheduler(t, intervals())
	assert.Empty(t, s.Status(), "no jobs before start")

	s.StartAll(context.Background())
	defer s.StopAll()

	status := s.Status()
	require.Len(t, status, 2)
	assert.Equal(t, "cleanup", status[0].Name)
	assert.Equal(t, "scrape", status[1].Name)
	assert.Equal(t, time.Hour, status[0].Interval)
	for _, j := range status {
		assert.Equal(t, StateScheduled, j.State, "job %s waits on its ticker after start", j.Name)
	}
}

func TestScheduler_StartAllIdempotent(t *testing.T) {
	s, _ := newTestScheduler(t, intervals())
	ctx := context.Background()

	s.StartAll(ctx)
	s.StartAll(ctx) // second call is a no-op
	defer s.StopAll()

	assert.Len(t, s.Status(), 2)
}

func TestScheduler_StopAll(t *testing.T) {
	s, _ := newTestScheduler(t, intervals())
	s.StartAll(context.Background())

	s.StopAll()
	assert.Empty(t, s.Status(), "registry cleared after stop")

	// Repeated and pre-start stops are harmless.
	s.StopAll()
}

func TestScheduler_RestartAfterStop(t *testing.T) {
	s, st := newTestScheduler(t, intervals())
	ctx := context.Background()

	s.StartAll(ctx)
	s.StopAll()

	s.StartAll(ctx)
	defer s.StopAll()

	assert.Len(t, s.Status(), 2)
	require.Eventually(t, func() bool { return st.Len() == 4 },
		2*time.Second, 10*time.Millisecond)
}

func TestScheduler_ContextCancelStopsJobs(t *testing.T) {
	s, _ := newTestScheduler(t, intervals())
	ctx, cancel := context.WithCancel(context.Background())

	s.StartAll(ctx)
	cancel()

	// StopAll after external cancellation must not hang.
	done := make(chan struct{})
	go func() {
		s.StopAll()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("StopAll did not return after context cancellation")
	}
}
