package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventsync/internal/config"
	"eventsync/internal/model"
)

// CityGuide covers editorial "what's on this week" listings. These rarely
// carry a concrete date, so candidates default to a few days out, and
// pricing is unknown rather than free.
type CityGuide struct {
	baseURL   string
	client    *http.Client
	userAgent string
	city      config.CityConfig
	log       *slog.Logger
	now       func() time.Time
}

const cityGuideDefaultOffsetDays = 3

func newCityGuide(sc config.SourceConfig, city config.CityConfig, log *slog.Logger) *CityGuide {
	return &CityGuide{
		baseURL:   strings.TrimRight(sc.BaseURL, "/"),
		client:    &http.Client{Timeout: sc.Timeout},
		userAgent: sc.UserAgent,
		city:      city,
		log:       log,
		now:       time.Now,
	}
}

func (g *CityGuide) Name() string { return "cityguide" }

type cityGuideItem struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	ImageURL string `json:"image_url"`
	URL      string `json:"url"`
}

func (g *CityGuide) Scrape(ctx context.Context) ([]model.Candidate, error) {
	var payload struct {
		Articles []cityGuideItem `json:"articles"`
	}
	url := g.baseURL + "/api/articles"
	if _, err := getJSON(ctx, g.client, url, g.userAgent, &payload); err != nil {
		return nil, fmt.Errorf("cityguide fetch: %w", err)
	}

	out := make([]model.Candidate, 0, len(payload.Articles))
	for _, item := range payload.Articles {
		c, err := g.normalize(item)
		if err != nil {
			g.log.Warn("dropping cityguide listing", "title", item.Title, "err", err)
			continue
		}
		out = append(out, *c)
	}
	g.log.Info("cityguide scrape complete", "found", len(payload.Articles), "normalized", len(out))
	return out, nil
}

func (g *CityGuide) normalize(item cityGuideItem) (*model.Candidate, error) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil, errors.New("missing title")
	}
	url := strings.TrimSpace(item.URL)
	if url == "" {
		return nil, errors.New("missing listing url")
	}

	description := strings.TrimSpace(item.Summary)
	if description == "" {
		description = fmt.Sprintf("Check the %s city guide for full details.", g.city.Name)
	}

	text := title + " " + description

	return &model.Candidate{
		Title:       title,
		Description: description,
		StartDate:   defaultStart(g.now(), cityGuideDefaultOffsetDays),
		Venue: model.Venue{
			Name:    "Various Locations",
			Address: g.city.Name,
			City:    g.city.Name,
			State:   g.city.State,
			Country: g.city.Country,
		},
		Category: detectCategory(text),
		Tags:     []string{"cityguide", strings.ToLower(g.city.Name), "featured"},
		ImageURL: strings.TrimSpace(item.ImageURL),
		Price:    model.Price{Currency: "AUD"},
		Source: model.Source{
			Name:       g.Name(),
			URL:        url,
			ExternalID: g.externalID(url, item.Slug),
		},
	}, nil
}

func (g *CityGuide) externalID(url, slug string) string {
	if slug != "" {
		return slug
	}
	parts := strings.Split(strings.TrimRight(url, "/"), "/")
	return parts[len(parts)-1]
}
