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

// Meetup publishes proper ISO start times, so there is no default-date
// fallback here: a listing with an unparseable or past start time is
// dropped. Community events are free.
type Meetup struct {
	baseURL   string
	client    *http.Client
	userAgent string
	city      config.CityConfig
	log       *slog.Logger
	now       func() time.Time
}

func newMeetup(sc config.SourceConfig, city config.CityConfig, log *slog.Logger) *Meetup {
	return &Meetup{
		baseURL:   strings.TrimRight(sc.BaseURL, "/"),
		client:    &http.Client{Timeout: sc.Timeout},
		userAgent: sc.UserAgent,
		city:      city,
		log:       log,
		now:       time.Now,
	}
}

func (m *Meetup) Name() string { return "meetup" }

type meetupItem struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	GroupName     string `json:"group_name"`
	AttendeesText string `json:"attendees_text"`
	StartTime     string `json:"start_time"`
	VenueText     string `json:"venue_text"`
	ImageURL      string `json:"image_url"`
	URL           string `json:"url"`
}

func (m *Meetup) Scrape(ctx context.Context) ([]model.Candidate, error) {
	var payload struct {
		Events []meetupItem `json:"events"`
	}
	url := fmt.Sprintf("%s/api/search?location=%s", m.baseURL, strings.ToLower(m.city.Name))
	if _, err := getJSON(ctx, m.client, url, m.userAgent, &payload); err != nil {
		return nil, fmt.Errorf("meetup fetch: %w", err)
	}

	out := make([]model.Candidate, 0, len(payload.Events))
	for _, item := range payload.Events {
		c, err := m.normalize(item)
		if err != nil {
			m.log.Warn("dropping meetup listing", "title", item.Title, "err", err)
			continue
		}
		out = append(out, *c)
	}
	m.log.Info("meetup scrape complete", "found", len(payload.Events), "normalized", len(out))
	return out, nil
}

var meetupIDPattern = regexp.MustCompile(`/events/(\d+)`)

func (m *Meetup) normalize(item meetupItem) (*model.Candidate, error) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil, errors.New("missing title")
	}
	url := strings.TrimSpace(item.URL)
	if url == "" {
		return nil, errors.New("missing listing url")
	}

	start, err := time.Parse(time.RFC3339, strings.TrimSpace(item.StartTime))
	if err != nil {
		return nil, fmt.Errorf("bad start time %q", item.StartTime)
	}
	if start.Before(m.now()) {
		return nil, errors.New("event already started")
	}

	group := strings.TrimSpace(item.GroupName)
	if group == "" {
		group = "Meetup Group"
	}
	description := strings.TrimSpace(fmt.Sprintf("Hosted by %s. %s", group, strings.TrimSpace(item.AttendeesText)))

	venue := parseVenue(item.VenueText, m.city)
	if venue.Name == "TBA" {
		venue.Name = "Online Event"
	}

	return &model.Candidate{
		Title:       title,
		Description: description,
		StartDate:   start,
		Venue:       venue,
		Category:    "Community",
		Tags:        []string{"meetup", "community", strings.ToLower(m.city.Name)},
		ImageURL:    strings.TrimSpace(item.ImageURL),
		Price:       model.Price{Currency: "AUD", IsFree: true},
		Source: model.Source{
			Name:       m.Name(),
			URL:        url,
			ExternalID: m.externalID(url, item.ID),
		},
	}, nil
}

func (m *Meetup) externalID(url, fallback string) string {
	if match := meetupIDPattern.FindStringSubmatch(url); match != nil {
		return match[1]
	}
	if fallback != "" {
		return fallback
	}
	return url
}
