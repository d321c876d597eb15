package adapters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventsync/internal/config"
	"eventsync/internal/model"
)

var sydney = config.CityConfig{Name: "Sydney", State: "NSW", Country: "Australia"}

func TestParseEventDate_ISOFuture(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got, ok := parseEventDate("2026-06-15T19:00:00Z", now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 6, 15, 19, 0, 0, 0, time.UTC), got)
}

func TestParseEventDate_MonthNameCurrentYear(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got, ok := parseEventDate("Saturday 15 June", now)
	require.True(t, ok)
	assert.Equal(t, time.June, got.Month())
	assert.Equal(t, 15, got.Day())
	assert.Equal(t, 2026, got.Year())
}

func TestParseEventDate_MonthNameRollsOver(t *testing.T) {
	// A January listing scraped in March belongs to next January.
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got, ok := parseEventDate("Jan 10", now)
	require.True(t, ok)
	assert.Equal(t, 2027, got.Year())
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 10, got.Day())
}

func TestParseEventDate_GenericLayoutRollsOver(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got, ok := parseEventDate("2026-01-10", now)
	require.True(t, ok)
	assert.Equal(t, 2027, got.Year(), "past date shifted to next year")
	assert.Equal(t, time.January, got.Month())
	assert.Equal(t, 10, got.Day())
}

func TestParseEventDate_DayFollowsMonth(t *testing.T) {
	// The leading clock time must not be read as the day of month.
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got, ok := parseEventDate("7pm May 10", now)
	require.True(t, ok)
	assert.Equal(t, time.May, got.Month())
	assert.Equal(t, 10, got.Day())
}

func TestParseEventDate_YearIsNotADay(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	_, ok := parseEventDate("June 2026", now)
	assert.False(t, ok, "a month with no day number does not parse")
}

func TestParseEventDate_Unparseable(t *testing.T) {
	now := time.Now()
	for _, text := range []string{"", "   ", "see website", "every day"} {
		_, ok := parseEventDate(text, now)
		assert.False(t, ok, "text %q should not parse", text)
	}
}

func TestDefaultStart(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.AddDate(0, 0, 7), defaultStart(now, 7))
}

func TestParseVenue_NameAndAddress(t *testing.T) {
	v := parseVenue("The Basement • 7 Macquarie Pl • Circular Quay", sydney)
	assert.Equal(t, "The Basement", v.Name)
	assert.Equal(t, "7 Macquarie Pl, Circular Quay", v.Address)
	assert.Equal(t, "Sydney", v.City)
	assert.Equal(t, "NSW", v.State)
	assert.Equal(t, "Australia", v.Country)
}

func TestParseVenue_CommaSeparated(t *testing.T) {
	v := parseVenue("Town Hall, 483 George St", sydney)
	assert.Equal(t, "Town Hall", v.Name)
	assert.Equal(t, "483 George St", v.Address)
}

func TestParseVenue_Unresolvable(t *testing.T) {
	for _, text := range []string{"", " ", "•"} {
		v := parseVenue(text, sydney)
		assert.Equal(t, "TBA", v.Name, "text %q", text)
		assert.Empty(t, v.Address)
		assert.Equal(t, "Sydney", v.City)
	}
}

func TestParsePrice_Free(t *testing.T) {
	p := parsePrice("FREE entry", "AUD")
	assert.True(t, p.IsFree)
	assert.Zero(t, p.Min)
	assert.Zero(t, p.Max)
}

func TestParsePrice_FreeBeatsNumbers(t *testing.T) {
	p := parsePrice("Free (usually $25)", "AUD")
	assert.True(t, p.IsFree)
	assert.Zero(t, p.Min)
}

func TestParsePrice_Range(t *testing.T) {
	p := parsePrice("From $25 to $49.50", "AUD")
	assert.False(t, p.IsFree)
	assert.Equal(t, 25.0, p.Min)
	assert.Equal(t, 49.5, p.Max)
	assert.Equal(t, "AUD", p.Currency)
}

func TestParsePrice_SingleValue(t *testing.T) {
	p := parsePrice("$30", "AUD")
	assert.Equal(t, 30.0, p.Min)
	assert.Equal(t, 30.0, p.Max)
}

func TestParsePrice_NoNumbers(t *testing.T) {
	p := parsePrice("ticketed", "AUD")
	assert.False(t, p.IsFree, "no price found is not the same as free")
	assert.Zero(t, p.Min)
	assert.Zero(t, p.Max)
}

func TestDetectCategory(t *testing.T) {
	cases := map[string]string{
		"Live music on the pier":      "Music",
		"Contemporary art exhibition": "Arts & Culture",
		"Wine tasting evening":        "Food & Drink",
		"Sunrise yoga in the park":    "Sports & Fitness",
		"Networking breakfast":        "Business & Professional",
		"Volunteer beach cleanup":     "Community",
		"Annual general announcement": model.CategoryOther,
	}
	for text, want := range cases {
		assert.Equal(t, want, detectCategory(text), "text %q", text)
	}
}

func TestDetectCategory_FirstCategoryWins(t *testing.T) {
	// Matches both Music ("festival") and Food & Drink ("food");
	// the earlier category takes precedence.
	assert.Equal(t, "Music", detectCategory("Food festival"))
}

func TestExtractTags_BaseSet(t *testing.T) {
	// Fixture text must not contain any tag keyword, even as a substring.
	tags := extractTags("Monthly planning session", sydney)
	assert.Equal(t, []string{"sydney", "event", "australia"}, tags)
}

func TestExtractTags_KeywordsAppended(t *testing.T) {
	tags := extractTags("Free outdoor music this weekend", sydney)
	assert.Equal(t, []string{"sydney", "event", "australia", "music", "outdoor", "free", "weekend"}, tags)
}

func TestExtractTags_NoDuplicates(t *testing.T) {
	tags := extractTags("music music music", sydney)
	assert.Equal(t, []string{"sydney", "event", "australia", "music"}, tags)
}
