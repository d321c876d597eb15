// Package orchestrator drives one full synchronization pass: every adapter
// in registration order, each followed by its inactive sweep, folded into
// aggregate run statistics.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"eventsync/internal/adapters"
	"eventsync/internal/engine"
	"eventsync/internal/metrics"
	"eventsync/internal/store"
)

// ErrUnknownSource is returned by RunOne for an unregistered source name.
var ErrUnknownSource = errors.New("orchestrator: unknown source")

// ErrRunInProgress is returned when a run trigger fires while a prior pass
// is still active. Overlapping passes would race on the per-source seen-URL
// accounting, so they are refused rather than queued.
var ErrRunInProgress = errors.New("orchestrator: run already in progress")

// Stats aggregates the outcome of a pass. Individual failures surface in
// logs; Errors only counts them.
type Stats struct {
	TotalScraped int           `json:"total_scraped"`
	Created      int           `json:"created"`
	Updated      int           `json:"updated"`
	Unchanged    int           `json:"unchanged"`
	Inactive     int           `json:"inactive"`
	Errors       int           `json:"errors"`
	Duration     time.Duration `json:"duration"`
}

type Orchestrator struct {
	adapters []adapters.Adapter
	syncer   *engine.Synchronizer
	store    store.Store
	metrics  *metrics.Metrics
	log      *slog.Logger

	mu sync.Mutex // run lock: at most one pass at a time
}

func New(adapterList []adapters.Adapter, syncer *engine.Synchronizer, s store.Store, m *metrics.Metrics, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		adapters: adapterList,
		syncer:   syncer,
		store:    s,
		metrics:  m,
		log:      log,
	}
}

// RunAll executes every adapter sequentially. Source order is stable;
// source N's pass, including its sweep, completes before source N+1 begins.
func (o *Orchestrator) RunAll(ctx context.Context) (Stats, error) {
	if !o.mu.TryLock() {
		return Stats{}, ErrRunInProgress
	}
	defer o.mu.Unlock()

	start := time.Now()
	var stats Stats
	o.log.Info("starting scrape pass", "sources", len(o.adapters))

	for _, a := range o.adapters {
		o.runSource(ctx, a, &stats)
	}

	stats.Duration = time.Since(start)
	if o.metrics != nil {
		o.metrics.ObserveRun(stats.Duration)
	}
	o.log.Info("scrape pass complete",
		"duration", stats.Duration.Round(time.Millisecond),
		"scraped", stats.TotalScraped,
		"created", stats.Created,
		"updated", stats.Updated,
		"unchanged", stats.Unchanged,
		"inactive", stats.Inactive,
		"errors", stats.Errors)
	return stats, nil
}

// RunOne executes a single named source's pass.
func (o *Orchestrator) RunOne(ctx context.Context, sourceName string) (Stats, error) {
	var target adapters.Adapter
	for _, a := range o.adapters {
		if a.Name() == sourceName {
			target = a
			break
		}
	}
	if target == nil {
		return Stats{}, fmt.Errorf("%w: %s", ErrUnknownSource, sourceName)
	}

	if !o.mu.TryLock() {
		return Stats{}, ErrRunInProgress
	}
	defer o.mu.Unlock()

	start := time.Now()
	var stats Stats
	o.runSource(ctx, target, &stats)
	stats.Duration = time.Since(start)
	return stats, nil
}

// runSource scrapes one adapter, reconciles its batch candidate by
// candidate, then sweeps the source's missing events to inactive. A failed
// fetch skips the sweep entirely: an unreachable source must never be read
// as "source has zero live events".
func (o *Orchestrator) runSource(ctx context.Context, a adapters.Adapter, stats *Stats) {
	name := a.Name()
	o.log.Info("running source", "source", name)

	batch, err := a.Scrape(ctx)
	if err != nil {
		o.log.Error("scrape failed", "source", name, "err", err)
		stats.Errors++
		if o.metrics != nil {
			o.metrics.ObserveError(name)
		}
		return
	}
	stats.TotalScraped += len(batch)
	if len(batch) == 0 {
		o.log.Warn("no events found", "source", name)
		return
	}

	seenURLs := make([]string, 0, len(batch))
	for i := range batch {
		c := &batch[i]
		res, err := o.syncer.Process(ctx, c, name)
		if err != nil {
			o.log.Error("processing failed", "source", name, "title", c.Title, "err", err)
			stats.Errors++
			if o.metrics != nil {
				o.metrics.ObserveError(name)
			}
			continue
		}
		seenURLs = append(seenURLs, c.Source.URL)
		switch res.Action {
		case engine.ActionCreated:
			stats.Created++
		case engine.ActionUpdated:
			stats.Updated++
		case engine.ActionUnchanged:
			stats.Unchanged++
		}
		if o.metrics != nil {
			o.metrics.ObserveAction(name, res.Action)
		}
	}

	swept, err := o.store.MarkInactive(ctx, name, seenURLs)
	if err != nil {
		o.log.Error("inactive sweep failed", "source", name, "err", err)
		stats.Errors++
		return
	}
	if swept > 0 {
		o.log.Warn("marked events inactive", "source", name, "count", swept)
	}
	stats.Inactive += int(swept)
	if o.metrics != nil {
		o.metrics.ObserveInactive(name, swept)
	}
}

// Cleanup runs the retention sweep: inactive, non-imported, past-dated
// events older than daysOld are deleted.
func (o *Orchestrator) Cleanup(ctx context.Context, daysOld int) (int64, error) {
	n, err := o.store.Cleanup(ctx, daysOld)
	if err != nil {
		return 0, fmt.Errorf("cleanup: %w", err)
	}
	o.log.Info("cleanup complete", "deleted", n, "days_old", daysOld)
	if o.metrics != nil {
		o.metrics.ObserveCleanup(n)
	}
	return n, nil
}

// Sources lists the registered source names, in run order.
func (o *Orchestrator) Sources() []string {
	out := make([]string, 0, len(o.adapters))
	for _, a := range o.adapters {
		out = append(out, a.Name())
	}
	return out
}
