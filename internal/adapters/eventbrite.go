package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"eventsync/internal/config"
	"eventsync/internal/model"
)

// Eventbrite listings arrive as raw text fields (date, location, price) and
// get the full normalization treatment. Listings without a parseable date
// default to a week out rather than being dropped.
type Eventbrite struct {
	baseURL   string
	client    *http.Client
	userAgent string
	city      config.CityConfig
	log       *slog.Logger
	now       func() time.Time
}

const eventbriteDefaultOffsetDays = 7

func newEventbrite(sc config.SourceConfig, city config.CityConfig, log *slog.Logger) *Eventbrite {
	return &Eventbrite{
		baseURL:   strings.TrimRight(sc.BaseURL, "/"),
		client:    &http.Client{Timeout: sc.Timeout},
		userAgent: sc.UserAgent,
		city:      city,
		log:       log,
		now:       time.Now,
	}
}

func (e *Eventbrite) Name() string { return "eventbrite" }

type eventbriteItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	DateText     string `json:"date_text"`
	LocationText string `json:"location_text"`
	PriceText    string `json:"price_text"`
	ImageURL     string `json:"image_url"`
	URL          string `json:"url"`
}

func (e *Eventbrite) Scrape(ctx context.Context) ([]model.Candidate, error) {
	var payload struct {
		Events []eventbriteItem `json:"events"`
	}
	url := fmt.Sprintf("%s/api/events?city=%s", e.baseURL, strings.ToLower(e.city.Name))
	if _, err := getJSON(ctx, e.client, url, e.userAgent, &payload); err != nil {
		return nil, fmt.Errorf("eventbrite fetch: %w", err)
	}

	out := make([]model.Candidate, 0, len(payload.Events))
	for _, item := range payload.Events {
		c, err := e.normalize(item)
		if err != nil {
			e.log.Warn("dropping eventbrite listing", "title", item.Title, "err", err)
			continue
		}
		out = append(out, *c)
	}
	e.log.Info("eventbrite scrape complete", "found", len(payload.Events), "normalized", len(out))
	return out, nil
}

var eventbriteIDPattern = regexp.MustCompile(`/e/([^/?]+)`)

func (e *Eventbrite) normalize(item eventbriteItem) (*model.Candidate, error) {
	title := strings.TrimSpace(item.Title)
	if len(title) < 3 {
		return nil, errors.New("missing or generic title")
	}
	url := strings.TrimSpace(item.URL)
	if url == "" {
		return nil, errors.New("missing listing url")
	}

	now := e.now()
	start, ok := parseEventDate(item.DateText, now)
	if !ok || start.Before(now) {
		start = defaultStart(now, eventbriteDefaultOffsetDays)
	}

	venue := parseVenue(item.LocationText, e.city)
	text := title + " " + item.Description

	description := strings.TrimSpace(item.Description)
	if description == "" {
		description = fmt.Sprintf("Exciting event in %s. Check the source listing for full details.", venue.City)
	}

	return &model.Candidate{
		Title:       title,
		Description: description,
		StartDate:   start,
		Venue:       venue,
		Category:    detectCategory(text),
		Tags:        extractTags(text, e.city),
		ImageURL:    strings.TrimSpace(item.ImageURL),
		Price:       parsePrice(item.PriceText, "AUD"),
		Source: model.Source{
			Name:       e.Name(),
			URL:        url,
			ExternalID: e.externalID(url, item.ID),
		},
	}, nil
}

func (e *Eventbrite) externalID(url, fallback string) string {
	if m := eventbriteIDPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	if fallback != "" {
		return fallback
	}
	parts := strings.Split(strings.SplitN(url, "?", 2)[0], "/")
	return parts[len(parts)-1]
}
