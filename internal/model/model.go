// Package model holds the shared event record types used across the
// ingestion pipeline: the ephemeral Candidate produced by adapters and the
// durable Event kept in the store.
package model

import "time"

// Event lifecycle statuses.
const (
	StatusNew      = "new"
	StatusUpdated  = "updated"
	StatusInactive = "inactive"
	StatusImported = "imported"
)

// Categories is the fixed category vocabulary. Adapters map free text onto
// one of these; anything unmatched becomes CategoryOther.
var Categories = []string{
	"Music",
	"Arts & Culture",
	"Sports & Fitness",
	"Food & Drink",
	"Community",
	"Business & Professional",
	"Film & Media",
	"Charity & Causes",
	CategoryOther,
}

const CategoryOther = "Other"

// DefaultTimezone applies to newly created events; all supported sources
// list a single metro for now.
const DefaultTimezone = "Australia/Sydney"

// Venue is a parsed event location. City drives fuzzy matching, so adapters
// always fill it (falling back to their configured default city).
type Venue struct {
	Name        string       `json:"name"`
	Address     string       `json:"address"`
	City        string       `json:"city"`
	State       string       `json:"state"`
	Country     string       `json:"country"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Price is a parsed price range. IsFree distinguishes "explicitly free" from
// "no price found" (both have Min == Max == 0).
type Price struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
	IsFree   bool    `json:"is_free"`
}

// Source identifies where a listing came from. (Name, ExternalID) uniquely
// identifies at most one persisted event; URL is the primary lookup key.
type Source struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	ExternalID string `json:"external_id"`
}

// Candidate is an adapter-produced listing that has not yet been reconciled
// with the store. Candidates are rebuilt from scratch on every scrape and are
// never persisted directly.
type Candidate struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     *time.Time
	Venue       Venue
	Category    string
	Tags        []string
	ImageURL    string
	Price       Price
	Source      Source
}

// ChangeRecord is one field-level change observed between two sightings of
// the same event. The change log is append-only.
type ChangeRecord struct {
	Field     string    `json:"field"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	ChangedAt time.Time `json:"changed_at"`
}

// Imported tracks manual promotion by the dashboard. Once Status is true the
// synchronizer treats the event's lifecycle status as sticky.
type Imported struct {
	Status bool       `json:"status"`
	By     string     `json:"by,omitempty"`
	At     *time.Time `json:"at,omitempty"`
	Notes  string     `json:"notes,omitempty"`
}

// Event is the canonical persisted record.
type Event struct {
	ID          string
	Title       string
	Description string
	StartDate   time.Time
	EndDate     *time.Time
	Timezone    string
	Venue       Venue
	Category    string
	Tags        []string
	ImageURL    string
	Images      []string
	Price       Price
	Source      Source

	Status      string
	ContentHash string
	ChangeLog   []ChangeRecord

	FirstScraped time.Time
	LastScraped  time.Time
	ScrapedCount int

	Imported Imported

	// Engagement counters are owned by the public surface; the sync engine
	// only carries them through updates.
	ClickCount        int
	EmailCaptureCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPast reports whether the event's start date is behind us.
func (e *Event) IsPast() bool {
	return e.StartDate.Before(time.Now())
}
