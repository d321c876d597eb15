package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventsync/internal/model"
	"eventsync/internal/store"
)

// fuzzyThreshold is the minimum title similarity for two listings to be
// treated as the same real-world event.
const fuzzyThreshold = 0.8

// fuzzyWindow is how far a start date may drift between two listings of the
// same event (one day either side).
const fuzzyWindow = 24 * time.Hour

// Resolver decides whether a candidate corresponds to an already-persisted
// event. The source URL is authoritative; fuzzy matching only runs when the
// URL is unknown, to catch the same event listed by a different source.
type Resolver struct {
	store store.Store
	log   *slog.Logger
}

func NewResolver(s store.Store, log *slog.Logger) *Resolver {
	return &Resolver{store: s, log: log}
}

// Resolve returns the persisted event the candidate refers to, or nil when
// the candidate is genuinely new.
func (r *Resolver) Resolve(ctx context.Context, c *model.Candidate) (*model.Event, error) {
	ev, err := r.store.FindByURL(ctx, c.Source.URL)
	if err == nil {
		return ev, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("find by url: %w", err)
	}
	return r.findSimilar(ctx, c)
}

// findSimilar scans events near the candidate's start date in the same city
// and picks the best title match. The first candidate encountered wins ties,
// which is deterministic because the store returns document order.
func (r *Resolver) findSimilar(ctx context.Context, c *model.Candidate) (*model.Event, error) {
	from := c.StartDate.Add(-fuzzyWindow)
	to := c.StartDate.Add(fuzzyWindow)
	candidates, err := r.store.FindFuzzyCandidates(ctx, from, to, c.Venue.City)
	if err != nil {
		return nil, fmt.Errorf("fuzzy candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	var best *model.Event
	bestScore := 0.0
	for _, cand := range candidates {
		score := Similarity(c.Title, cand.Title)
		if score > bestScore {
			best, bestScore = cand, score
		}
	}
	if best == nil || bestScore <= fuzzyThreshold {
		return nil, nil
	}
	r.log.Info("fuzzy match",
		"existing", best.Title,
		"scraped", c.Title,
		"similarity", bestScore)
	return best, nil
}
