package store

import (
	"context"
	"sync"
	"time"

	"eventsync/internal/model"
)

// Memory is an in-process Store used by tests and DSN-less offline runs.
// Events are kept in insertion order so fuzzy-candidate queries are
// deterministic.
type Memory struct {
	mu     sync.Mutex
	events []*model.Event // insertion order
	byID   map[string]*model.Event
	byURL  map[string]*model.Event
	byKey  map[string]*model.Event // source.name + "\x00" + source.externalID
}

func NewMemory() *Memory {
	return &Memory{
		byID:  make(map[string]*model.Event),
		byURL: make(map[string]*model.Event),
		byKey: make(map[string]*model.Event),
	}
}

func sourceKey(name, externalID string) string {
	return name + "\x00" + externalID
}

// clone copies an event so callers can mutate the result without touching
// stored state until Save.
func clone(ev *model.Event) *model.Event {
	cp := *ev
	cp.Tags = append([]string(nil), ev.Tags...)
	cp.Images = append([]string(nil), ev.Images...)
	cp.ChangeLog = append([]model.ChangeRecord(nil), ev.ChangeLog...)
	if ev.EndDate != nil {
		end := *ev.EndDate
		cp.EndDate = &end
	}
	if ev.Venue.Coordinates != nil {
		coords := *ev.Venue.Coordinates
		cp.Venue.Coordinates = &coords
	}
	return &cp
}

func (m *Memory) FindByURL(_ context.Context, url string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev, ok := m.byURL[url]; ok {
		return clone(ev), nil
	}
	return nil, ErrNotFound
}

func (m *Memory) FindByID(_ context.Context, id string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev, ok := m.byID[id]; ok {
		return clone(ev), nil
	}
	return nil, ErrNotFound
}

func (m *Memory) UpsertByKey(_ context.Context, ev *model.Event) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sourceKey(ev.Source.Name, ev.Source.ExternalID)
	if existing, ok := m.byKey[key]; ok {
		// Lost a first-sighting race: refresh metadata on the winner.
		existing.LastScraped = ev.LastScraped
		existing.ScrapedCount++
		existing.UpdatedAt = ev.UpdatedAt
		return clone(existing), nil
	}

	stored := clone(ev)
	m.events = append(m.events, stored)
	m.byID[stored.ID] = stored
	m.byURL[stored.Source.URL] = stored
	m.byKey[key] = stored
	return clone(stored), nil
}

func (m *Memory) FindFuzzyCandidates(_ context.Context, from, to time.Time, city string) ([]*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Event
	for _, ev := range m.events {
		if ev.Venue.City != city {
			continue
		}
		if ev.StartDate.Before(from) || ev.StartDate.After(to) {
			continue
		}
		out = append(out, clone(ev))
	}
	return out, nil
}

func (m *Memory) Save(_ context.Context, ev *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[ev.ID]
	if !ok {
		return ErrNotFound
	}
	delete(m.byURL, existing.Source.URL)
	delete(m.byKey, sourceKey(existing.Source.Name, existing.Source.ExternalID))

	*existing = *clone(ev)
	m.byURL[existing.Source.URL] = existing
	m.byKey[sourceKey(existing.Source.Name, existing.Source.ExternalID)] = existing
	return nil
}

func (m *Memory) MarkInactive(_ context.Context, sourceName string, seenURLs []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{}, len(seenURLs))
	for _, u := range seenURLs {
		seen[u] = struct{}{}
	}

	var n int64
	now := time.Now()
	for _, ev := range m.events {
		if ev.Source.Name != sourceName || ev.Status == model.StatusInactive {
			continue
		}
		if _, ok := seen[ev.Source.URL]; ok {
			continue
		}
		ev.Status = model.StatusInactive
		ev.LastScraped = now
		ev.UpdatedAt = now
		n++
	}
	return n, nil
}

func (m *Memory) Cleanup(_ context.Context, daysOld int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -daysOld)
	var kept []*model.Event
	var n int64
	for _, ev := range m.events {
		stale := ev.StartDate.Before(cutoff) &&
			ev.Status == model.StatusInactive &&
			!ev.Imported.Status
		if stale {
			delete(m.byID, ev.ID)
			delete(m.byURL, ev.Source.URL)
			delete(m.byKey, sourceKey(ev.Source.Name, ev.Source.ExternalID))
			n++
			continue
		}
		kept = append(kept, ev)
	}
	m.events = kept
	return n, nil
}

func (m *Memory) CountByStatus(_ context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[string]int64)
	for _, ev := range m.events {
		counts[ev.Status]++
	}
	return counts, nil
}

func (m *Memory) Close() {}

// Len reports the number of stored events. Test helper.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}
