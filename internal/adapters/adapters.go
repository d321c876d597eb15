// Package adapters contains the pluggable source connectors. Each adapter
// owns its fetch strategy, its field extraction, and the shared
// normalization heuristics that turn raw listing text into candidates.
//
// Adapters never fail the whole batch for a single bad listing; a candidate
// that cannot be normalized is dropped and logged. A failed fetch returns an
// error with an empty batch, which the orchestrator records and isolates.
package adapters

import (
	"context"
	"fmt"
	"log/slog"

	"eventsync/internal/config"
	"eventsync/internal/model"
)

// Adapter is the contract every source connector implements.
type Adapter interface {
	Name() string
	Scrape(ctx context.Context) ([]model.Candidate, error)
}

// New builds an adapter from its source configuration.
func New(sc config.SourceConfig, city config.CityConfig, log *slog.Logger) (Adapter, error) {
	switch sc.Type {
	case "eventbrite":
		return newEventbrite(sc, city, log), nil
	case "meetup":
		return newMeetup(sc, city, log), nil
	case "cityguide":
		return newCityGuide(sc, city, log), nil
	case "mock":
		return newMock(sc, city), nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", sc.Type)
	}
}

// Build constructs the ordered adapter list for a configuration. Order is
// preserved: the orchestrator runs sources strictly in this sequence.
func Build(cfg *config.Config, log *slog.Logger) ([]Adapter, error) {
	out := make([]Adapter, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		a, err := New(sc, cfg.City, log)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
