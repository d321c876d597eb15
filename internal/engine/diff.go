package engine

import (
	"time"

	"eventsync/internal/model"
)

// diffFields is the fixed field list compared between an existing event and
// an incoming candidate. Change records are emitted in this order.
var diffFields = []string{
	"title",
	"description",
	"startDate",
	"endDate",
	"venue.name",
	"venue.address",
	"imageUrl",
	"price.min",
	"price.max",
}

// Diff compares the tracked fields of an existing event against a candidate
// and returns one change record per field whose stringified values differ.
// Records within a single call share the same timestamp.
func Diff(existing *model.Event, c *model.Candidate, now time.Time) []model.ChangeRecord {
	var changes []model.ChangeRecord
	for _, field := range diffFields {
		oldVal := eventFieldString(existing, field)
		newVal := candidateFieldString(c, field)
		if oldVal != newVal {
			changes = append(changes, model.ChangeRecord{
				Field:     field,
				OldValue:  oldVal,
				NewValue:  newVal,
				ChangedAt: now,
			})
		}
	}
	return changes
}

func eventFieldString(e *model.Event, field string) string {
	switch field {
	case "title":
		return e.Title
	case "description":
		return e.Description
	case "startDate":
		return canonicalDate(e.StartDate)
	case "endDate":
		return optionalDate(e.EndDate)
	case "venue.name":
		return e.Venue.Name
	case "venue.address":
		return e.Venue.Address
	case "imageUrl":
		return e.ImageURL
	case "price.min":
		return formatPrice(e.Price.Min)
	case "price.max":
		return formatPrice(e.Price.Max)
	}
	return ""
}

func candidateFieldString(c *model.Candidate, field string) string {
	switch field {
	case "title":
		return c.Title
	case "description":
		return c.Description
	case "startDate":
		return canonicalDate(c.StartDate)
	case "endDate":
		return optionalDate(c.EndDate)
	case "venue.name":
		return c.Venue.Name
	case "venue.address":
		return c.Venue.Address
	case "imageUrl":
		return c.ImageURL
	case "price.min":
		return formatPrice(c.Price.Min)
	case "price.max":
		return formatPrice(c.Price.Max)
	}
	return ""
}

func optionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return canonicalDate(*t)
}
