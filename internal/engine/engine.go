// Package engine reconciles adapter-produced candidates against the
// canonical event store: content fingerprinting, cross-source duplicate
// resolution, field-level change tracking, and the create/update/no-op
// decision.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"eventsync/internal/model"
	"eventsync/internal/store"
)

// Actions reported by Process.
const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionUnchanged = "unchanged"
)

// Result describes what Process did with a candidate.
type Result struct {
	Action  string
	Event   *model.Event
	Changes []model.ChangeRecord
}

// Synchronizer applies one candidate at a time to the store. All side
// effects are confined to the single resolved or created record.
type Synchronizer struct {
	store    store.Store
	resolver *Resolver
	log      *slog.Logger
	now      func() time.Time
}

func NewSynchronizer(s store.Store, log *slog.Logger) *Synchronizer {
	return &Synchronizer{
		store:    s,
		resolver: NewResolver(s, log),
		log:      log,
		now:      time.Now,
	}
}

// Process reconciles a candidate from the named source. It either creates a
// new event, refreshes an unchanged one, or applies a content update with a
// change-log append.
func (s *Synchronizer) Process(ctx context.Context, c *model.Candidate, sourceName string) (Result, error) {
	hash := Fingerprint(c)

	existing, err := s.resolver.Resolve(ctx, c)
	if err != nil {
		return Result{}, err
	}
	if existing == nil {
		return s.create(ctx, c, sourceName, hash)
	}
	if existing.ContentHash == hash {
		return s.touch(ctx, existing)
	}
	return s.update(ctx, existing, c, hash)
}

func (s *Synchronizer) create(ctx context.Context, c *model.Candidate, sourceName, hash string) (Result, error) {
	now := s.now()
	ev := &model.Event{
		ID:          uuid.NewString(),
		Title:       c.Title,
		Description: c.Description,
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		Timezone:    model.DefaultTimezone,
		Venue:       c.Venue,
		Category:    c.Category,
		Tags:        c.Tags,
		ImageURL:    c.ImageURL,
		Price:       c.Price,
		Source: model.Source{
			Name:       sourceName,
			URL:        c.Source.URL,
			ExternalID: c.Source.ExternalID,
		},
		Status:       model.StatusNew,
		ContentHash:  hash,
		FirstScraped: now,
		LastScraped:  now,
		ScrapedCount: 1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	stored, err := s.store.UpsertByKey(ctx, ev)
	if err != nil {
		return Result{}, fmt.Errorf("create event: %w", err)
	}
	s.log.Info("event created", "title", stored.Title, "source", sourceName)
	return Result{Action: ActionCreated, Event: stored}, nil
}

// touch refreshes scrape metadata for a content-identical sighting.
func (s *Synchronizer) touch(ctx context.Context, ev *model.Event) (Result, error) {
	now := s.now()
	ev.LastScraped = now
	ev.ScrapedCount++
	ev.UpdatedAt = now
	if err := s.store.Save(ctx, ev); err != nil {
		return Result{}, fmt.Errorf("refresh event: %w", err)
	}
	return Result{Action: ActionUnchanged, Event: ev}, nil
}

func (s *Synchronizer) update(ctx context.Context, ev *model.Event, c *model.Candidate, hash string) (Result, error) {
	now := s.now()
	changes := Diff(ev, c, now)

	ev.Title = c.Title
	ev.Description = c.Description
	ev.StartDate = c.StartDate
	ev.EndDate = c.EndDate
	ev.Venue = c.Venue
	ev.Category = c.Category
	ev.Tags = c.Tags
	ev.ImageURL = c.ImageURL
	ev.Price = c.Price
	ev.ContentHash = hash
	ev.ChangeLog = append(ev.ChangeLog, changes...)
	ev.LastScraped = now
	ev.ScrapedCount++
	ev.UpdatedAt = now

	// Manual promotion by the dashboard is sticky: content changes are still
	// recorded, but the status is not knocked back to "updated".
	if !ev.Imported.Status && ev.Status != model.StatusImported {
		ev.Status = model.StatusUpdated
	}

	if err := s.store.Save(ctx, ev); err != nil {
		return Result{}, fmt.Errorf("update event: %w", err)
	}
	s.log.Info("event updated", "title", ev.Title, "changes", len(changes))
	return Result{Action: ActionUpdated, Event: ev, Changes: changes}, nil
}
