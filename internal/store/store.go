// Package store persists canonical events. The Postgres implementation is
// the production store; the memory implementation backs tests and offline
// runs.
package store

import (
	"context"
	"errors"
	"time"

	"eventsync/internal/model"
)

// ErrNotFound is returned by point lookups when no event matches.
var ErrNotFound = errors.New("store: event not found")

// Store is the persistence contract consumed by the synchronizer and
// orchestrator. Writes are scoped to a single record per call; the unique
// constraint on (source name, external id) is the concurrency-safety
// boundary for racing first-sightings.
type Store interface {
	// FindByURL looks an event up by its source URL, the primary lookup key.
	FindByURL(ctx context.Context, url string) (*model.Event, error)

	// FindByID looks an event up by its identity.
	FindByID(ctx context.Context, id string) (*model.Event, error)

	// UpsertByKey inserts the event keyed on (Source.Name, Source.ExternalID)
	// and returns the stored row. If a concurrent insert won the race, the
	// existing row has its scrape metadata refreshed and is returned instead;
	// two records are never created for one key.
	UpsertByKey(ctx context.Context, ev *model.Event) (*model.Event, error)

	// FindFuzzyCandidates returns events whose start date falls in [from, to]
	// and whose venue city equals city, in stable document order (insertion
	// order) so fuzzy tie-breaks are deterministic.
	FindFuzzyCandidates(ctx context.Context, from, to time.Time, city string) ([]*model.Event, error)

	// Save writes the full event row back.
	Save(ctx context.Context, ev *model.Event) error

	// MarkInactive transitions every event of the source whose URL is not in
	// seenURLs and whose status is not already inactive to inactive,
	// refreshing lastScraped. Returns the number of rows changed; repeated
	// calls with the same seenURLs change nothing further.
	MarkInactive(ctx context.Context, sourceName string, seenURLs []string) (int64, error)

	// Cleanup deletes inactive, non-imported events whose start date is older
	// than daysOld days. Returns the number of rows deleted.
	Cleanup(ctx context.Context, daysOld int) (int64, error)

	// CountByStatus reports how many events exist per lifecycle status.
	CountByStatus(ctx context.Context) (map[string]int64, error)

	Close()
}
