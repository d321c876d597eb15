package adapters

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"eventsync/internal/config"
	"eventsync/internal/model"
)

// Date parsing is deliberately forgiving: a listing with a mangled date is
// still worth keeping, so callers fall back to a source-specific default
// offset instead of rejecting the candidate.

var monthNames = []string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}

var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"Jan 2, 2006",
	"2 Jan 2006",
	"Monday, 2 January 2006",
	"2 January 2006",
}

var dayNumber = regexp.MustCompile(`\b\d{1,2}\b`)

// parseEventDate attempts, in order: ISO-style parsing (accepted only when
// the result is in the future), month-name + day-number extraction assuming
// the current year with a next-year rollover for past dates, and generic
// layout parsing with the same rollover. Returns false when every strategy
// fails.
func parseEventDate(text string, now time.Time) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	if strings.ContainsAny(text, "T-") {
		for _, layout := range genericLayouts[:4] {
			if t, err := time.Parse(layout, text); err == nil && t.After(now) {
				return t, true
			}
		}
	}

	lower := strings.ToLower(text)
	for i, month := range monthNames {
		idx := strings.Index(lower, month)
		if idx < 0 {
			continue
		}
		dayMatch := nearestDay(lower, idx, len(month))
		if dayMatch == "" {
			continue
		}
		day, _ := strconv.Atoi(dayMatch)
		t := time.Date(now.Year(), time.Month(i+1), day, 0, 0, 0, 0, now.Location())
		if t.Before(now) {
			t = t.AddDate(1, 0, 0)
		}
		return t, true
	}

	for _, layout := range genericLayouts {
		t, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		if t.Before(now) {
			t = time.Date(now.Year()+1, t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
		}
		return t, true
	}

	return time.Time{}, false
}

// nearestDay finds the day-of-month digits adjacent to a month name: first
// a standalone 1-2 digit run after the month ("May 10"), else the last one
// before it ("15 June"). The word boundaries in dayNumber keep years
// ("2026") and clock times ("7pm") from being read as days.
func nearestDay(text string, monthIdx, monthLen int) string {
	if m := dayNumber.FindString(text[monthIdx+monthLen:]); m != "" {
		return m
	}
	before := dayNumber.FindAllString(text[:monthIdx], -1)
	if len(before) > 0 {
		return before[len(before)-1]
	}
	return ""
}

// defaultStart is the completeness-over-precision fallback when no date
// could be parsed at all.
func defaultStart(now time.Time, offsetDays int) time.Time {
	return now.AddDate(0, 0, offsetDays)
}

var venueSeparators = regexp.MustCompile(`[•·,|]`)
var whitespace = regexp.MustCompile(`\s+`)

// parseVenue splits a free-text location on common delimiters: the first
// segment names the venue, the rest is the address. Unresolvable text yields
// the TBA sentinel in the configured default city.
func parseVenue(text string, city config.CityConfig) model.Venue {
	base := model.Venue{
		Name:    "TBA",
		City:    city.Name,
		State:   city.State,
		Country: city.Country,
	}
	cleaned := strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
	if len(cleaned) < 2 {
		return base
	}

	var parts []string
	for _, p := range venueSeparators.Split(cleaned, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return base
	}
	base.Name = parts[0]
	base.Address = strings.Join(parts[1:], ", ")
	return base
}

var priceNumber = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// parsePrice extracts a price range from free text. Any mention of "free"
// wins; otherwise every numeric substring contributes to the min/max range.
// Text with no numbers produces a zero, non-free price, distinguished from
// an explicitly free one by the IsFree flag.
func parsePrice(text, currency string) model.Price {
	p := model.Price{Currency: currency}
	if strings.Contains(strings.ToLower(text), "free") {
		p.IsFree = true
		return p
	}
	nums := priceNumber.FindAllString(text, -1)
	if len(nums) == 0 {
		return p
	}
	p.Min = parseAmount(nums[0])
	p.Max = p.Min
	for _, n := range nums[1:] {
		v := parseAmount(n)
		if v < p.Min {
			p.Min = v
		}
		if v > p.Max {
			p.Max = v
		}
	}
	return p
}

func parseAmount(s string) float64 {
	v, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return v
}

// categoryKeywords maps categories to trigger words. Order matters: the
// first category with any keyword present in the text wins.
var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"Music", []string{"concert", "music", "band", "dj", "festival", "gig", "live music", "performance"}},
	{"Arts & Culture", []string{"art", "gallery", "museum", "theatre", "theater", "culture", "exhibition", "show"}},
	{"Food & Drink", []string{"food", "wine", "beer", "dining", "restaurant", "tasting", "cooking", "chef"}},
	{"Sports & Fitness", []string{"sport", "fitness", "yoga", "run", "marathon", "gym", "workout", "training"}},
	{"Business & Professional", []string{"business", "networking", "conference", "seminar", "workshop", "professional", "career"}},
	{"Community", []string{"community", "meetup", "social", "charity", "volunteer", "fundraiser"}},
}

func detectCategory(text string) string {
	lower := strings.ToLower(text)
	for _, entry := range categoryKeywords {
		for _, w := range entry.words {
			if strings.Contains(lower, w) {
				return entry.category
			}
		}
	}
	return model.CategoryOther
}

var tagKeywords = []string{
	"music", "art", "food", "sport", "tech", "business",
	"family", "outdoor", "indoor", "free", "weekend",
}

// extractTags returns the base tag set for the configured city plus every
// tag keyword present in the text, without duplicates.
func extractTags(text string, city config.CityConfig) []string {
	tags := []string{strings.ToLower(city.Name), "event", strings.ToLower(city.Country)}
	seen := make(map[string]struct{}, len(tags)+len(tagKeywords))
	for _, t := range tags {
		seen[t] = struct{}{}
	}
	lower := strings.ToLower(text)
	for _, kw := range tagKeywords {
		if _, dup := seen[kw]; dup {
			continue
		}
		if strings.Contains(lower, kw) {
			tags = append(tags, kw)
			seen[kw] = struct{}{}
		}
	}
	return tags
}
