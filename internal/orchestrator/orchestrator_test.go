package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventsync/internal/adapters"
	"eventsync/internal/engine"
	"eventsync/internal/model"
	"eventsync/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubAdapter returns a fixed batch, or fails, per call.
type stubAdapter struct {
	name    string
	batch   []model.Candidate
	err     error
	calls   int
	block   chan struct{} // when set, Scrape waits until closed
	started chan struct{} // when set, closed on first Scrape entry
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) Scrape(ctx context.Context) ([]model.Candidate, error) {
	a.calls++
	if a.started != nil {
		close(a.started)
		a.started = nil
	}
	if a.block != nil {
		select {
		case <-a.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.batch, nil
}

// stubTitles are pairwise dissimilar so fixture batches never trip the
// fuzzy resolver; the dedup paths have their own tests in internal/engine.
var stubTitles = []string{
	"Harbour Jazz Night",
	"Noodle Market",
	"Bridge Climb at Dawn",
	"Rooftop Film Club",
	"Botanic Garden Walk",
	"Winter Beer Festival",
}

func candidateFor(source string, n int, start time.Time) model.Candidate {
	return model.Candidate{
		Title:     fmt.Sprintf("%s (%s)", stubTitles[(n-1)%len(stubTitles)], source),
		StartDate: start.AddDate(0, 0, 3*(n-1)),
		Venue:     model.Venue{Name: "Town Hall", City: "Sydney"},
		Category:  model.CategoryOther,
		Price:     model.Price{Currency: "AUD", IsFree: true},
		Source: model.Source{
			Name:       source,
			URL:        fmt.Sprintf("https://%s.example/e/%d", source, n),
			ExternalID: fmt.Sprint(n),
		},
	}
}

func batchFor(source string, n int, start time.Time) []model.Candidate {
	out := make([]model.Candidate, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, candidateFor(source, i, start))
	}
	return out
}

func newTestOrchestrator(st store.Store, adapterList ...*stubAdapter) *Orchestrator {
	log := testLogger()
	list := make([]adapters.Adapter, 0, len(adapterList))
	for _, a := range adapterList {
		list = append(list, a)
	}
	return New(list, engine.NewSynchronizer(st, log), st, nil, log)
}

func TestRunAll_AggregatesStats(t *testing.T) {
	st := store.NewMemory()
	start := time.Now().AddDate(0, 0, 7)
	a := &stubAdapter{name: "eventbrite", batch: batchFor("eventbrite", 3, start)}
	b := &stubAdapter{name: "meetup", batch: batchFor("meetup", 2, start.AddDate(0, 0, 5))}

	stats, err := newTestOrchestrator(st, a, b).RunAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, stats.TotalScraped)
	assert.Equal(t, 5, stats.Created)
	assert.Zero(t, stats.Updated)
	assert.Zero(t, stats.Errors)
	assert.Zero(t, stats.Inactive)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestRunAll_SecondPassUnchanged(t *testing.T) {
	st := store.NewMemory()
	start := time.Now().AddDate(0, 0, 7)
	a := &stubAdapter{name: "eventbrite", batch: batchFor("eventbrite", 3, start)}
	orch := newTestOrchestrator(st, a)
	ctx := context.Background()

	_, err := orch.RunAll(ctx)
	require.NoError(t, err)

	stats, err := orch.RunAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Unchanged)
	assert.Zero(t, stats.Created)
	assert.Zero(t, stats.Inactive)
}

func TestRunAll_FetchFailureIsolated(t *testing.T) {
	st := store.NewMemory()
	start := time.Now().AddDate(0, 0, 7)
	good := &stubAdapter{name: "eventbrite", batch: batchFor("eventbrite", 2, start)}
	bad := &stubAdapter{name: "meetup", err: errors.New("connect: refused")}
	also := &stubAdapter{name: "cityguide", batch: batchFor("cityguide", 1, start.AddDate(0, 0, 10))}

	stats, err := newTestOrchestrator(st, good, bad, also).RunAll(context.Background())
	require.NoError(t, err, "a failing source does not fail the pass")

	assert.Equal(t, 3, stats.TotalScraped)
	assert.Equal(t, 3, stats.Created)
	assert.Equal(t, 1, stats.Errors)
}

func TestRunAll_FetchFailureSkipsSweep(t *testing.T) {
	st := store.NewMemory()
	start := time.Now().AddDate(0, 0, 7)
	a := &stubAdapter{name: "meetup", batch: batchFor("meetup", 2, start)}
	orch := newTestOrchestrator(st, a)
	ctx := context.Background()

	_, err := orch.RunAll(ctx)
	require.NoError(t, err)

	// The source goes dark. Its events must stay live, not flip inactive.
	a.err = errors.New("connect: timeout")
	stats, err := orch.RunAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Errors)
	assert.Zero(t, stats.Inactive)

	counts, err := st.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts[model.StatusInactive])
}

func TestRunAll_DisappearedEventSweptInactive(t *testing.T) {
	st := store.NewMemory()
	start := time.Now().AddDate(0, 0, 7)
	a := &stubAdapter{name: "eventbrite", batch: batchFor("eventbrite", 3, start)}
	orch := newTestOrchestrator(st, a)
	ctx := context.Background()

	_, err := orch.RunAll(ctx)
	require.NoError(t, err)

	// Next pass the listing #3 is gone.
	a.batch = a.batch[:2]
	stats, err := orch.RunAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Inactive)
	assert.Equal(t, 2, stats.Unchanged)
	counts, err := st.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[model.StatusInactive])
}

func TestRunAll_EmptyBatchSkipsSweep(t *testing.T) {
	st := store.NewMemory()
	start := time.Now().AddDate(0, 0, 7)
	a := &stubAdapter{name: "eventbrite", batch: batchFor("eventbrite", 2, start)}
	orch := newTestOrchestrator(st, a)
	ctx := context.Background()

	_, err := orch.RunAll(ctx)
	require.NoError(t, err)

	// An empty but successful fetch is treated as suspicious, not as "all
	// events ended".
	a.batch = nil
	stats, err := orch.RunAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Inactive)

	counts, err := st.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts[model.StatusInactive])
}

func TestRunOne(t *testing.T) {
	st := store.NewMemory()
	start := time.Now().AddDate(0, 0, 7)
	a := &stubAdapter{name: "eventbrite", batch: batchFor("eventbrite", 2, start)}
	b := &stubAdapter{name: "meetup", batch: batchFor("meetup", 4, start)}
	orch := newTestOrchestrator(st, a, b)

	stats, err := orch.RunOne(context.Background(), "meetup")
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalScraped)
	assert.Equal(t, 4, stats.Created)
	assert.Zero(t, a.calls, "other sources untouched")
}

func TestRunOne_UnknownSource(t *testing.T) {
	orch := newTestOrchestrator(store.NewMemory())
	_, err := orch.RunOne(context.Background(), "gumtree")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestRunAll_RefusesOverlap(t *testing.T) {
	st := store.NewMemory()
	block := make(chan struct{})
	started := make(chan struct{})
	a := &stubAdapter{name: "eventbrite", block: block, started: started}
	orch := newTestOrchestrator(st, a)

	done := make(chan error, 1)
	go func() {
		_, err := orch.RunAll(context.Background())
		done <- err
	}()

	// Wait for the first pass to hold the lock.
	<-started

	_, err := orch.RunAll(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)
	_, err = orch.RunOne(context.Background(), "eventbrite")
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(block)
	require.NoError(t, <-done)

	// Lock released: the next pass proceeds.
	_, err = orch.RunAll(context.Background())
	assert.NoError(t, err)
}

func TestCleanup_Delegates(t *testing.T) {
	st := store.NewMemory()
	orch := newTestOrchestrator(st)

	n, err := orch.Cleanup(context.Background(), 30)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSources_Order(t *testing.T) {
	orch := newTestOrchestrator(store.NewMemory(),
		&stubAdapter{name: "eventbrite"},
		&stubAdapter{name: "meetup"},
		&stubAdapter{name: "cityguide"})
	assert.Equal(t, []string{"eventbrite", "meetup", "cityguide"}, orch.Sources())
}
