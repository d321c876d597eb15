// Package scheduler runs the recurring scrape and cleanup jobs. Each job is
// a named ticker loop; a failing run is logged and the job stays scheduled
// for its next tick.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"eventsync/internal/config"
	"eventsync/internal/orchestrator"
)

// Job states.
const (
	StateIdle      = "idle"
	StateScheduled = "scheduled"
	StateRunning   = "running"
)

type JobStatus struct {
	Name     string        `json:"name"`
	State    string        `json:"state"`
	Interval time.Duration `json:"interval"`
}

type job struct {
	name     string
	interval time.Duration
	run      func(context.Context)

	mu    sync.Mutex
	state string
}

func (j *job) setState(s string) {
	j.mu.Lock()
	j.state = s
	j.mu.Unlock()
}

func (j *job) getState() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

type Scheduler struct {
	orch *orchestrator.Orchestrator
	cfg  config.SchedulerConfig
	log  *slog.Logger

	mu     sync.Mutex
	jobs   map[string]*job
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(orch *orchestrator.Orchestrator, cfg config.SchedulerConfig, log *slog.Logger) *Scheduler {
	return &Scheduler{
		orch: orch,
		cfg:  cfg,
		log:  log,
		jobs: make(map[string]*job),
	}
}

// StartAll registers the recurring scrape and cleanup jobs and fires one
// initial scrape shortly after startup, independent of the interval timer.
func (s *Scheduler) StartAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return // already started
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.register(runCtx, "scrape", s.cfg.ScrapeInterval, s.runScrape)
	s.register(runCtx, "cleanup", s.cfg.CleanupInterval, s.runCleanup)

	s.log.Info("scheduled jobs started",
		"scrape_interval", s.cfg.ScrapeInterval,
		"cleanup_interval", s.cfg.CleanupInterval)

	// Initial scrape, delayed so the process finishes coming up first.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case <-runCtx.Done():
			return
		case <-time.After(s.cfg.InitialDelay):
		}
		s.log.Info("running initial scrape")
		s.runScrape(runCtx)
	}()
}

// register must be called with s.mu held.
func (s *Scheduler) register(ctx context.Context, name string, interval time.Duration, run func(context.Context)) {
	j := &job{name: name, interval: interval, run: run, state: StateScheduled}
	s.jobs[name] = j

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				j.setState(StateIdle)
				return
			case <-ticker.C:
				s.log.Info("scheduled job triggered", "job", name)
				j.setState(StateRunning)
				run(ctx)
				j.setState(StateScheduled)
			}
		}
	}()
}

func (s *Scheduler) runScrape(ctx context.Context) {
	if _, err := s.orch.RunAll(ctx); err != nil {
		if errors.Is(err, orchestrator.ErrRunInProgress) {
			// A prior pass is still going; skipping is the safe choice since
			// concurrent passes would race on the inactive sweep.
			s.log.Warn("scrape trigger skipped, run already in progress")
			return
		}
		s.log.Error("scheduled scrape failed", "err", err)
	}
}

func (s *Scheduler) runCleanup(ctx context.Context) {
	if _, err := s.orch.Cleanup(ctx, s.cfg.CleanupDays); err != nil {
		s.log.Error("scheduled cleanup failed", "err", err)
	}
}

// StopAll cancels every registered job and clears the registry. Safe to
// call repeatedly, including before StartAll.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()

	s.mu.Lock()
	for name := range s.jobs {
		s.log.Info("stopped job", "job", name)
		delete(s.jobs, name)
	}
	s.mu.Unlock()
}

// Status reports every registered job and its current state.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, JobStatus{Name: j.name, State: j.getState(), Interval: j.interval})
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}
