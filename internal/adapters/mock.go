package adapters

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"eventsync/internal/config"
	"eventsync/internal/model"
)

// Mock produces synthetic candidates for demos and tests. It is
// deterministic for a given seed and makes no network calls.
type Mock struct {
	baseURL string
	city    config.CityConfig
	seed    int64
	count   int
	now     func() time.Time
}

func newMock(sc config.SourceConfig, city config.CityConfig) *Mock {
	base := strings.TrimRight(sc.BaseURL, "/")
	if base == "" {
		base = "https://events.invalid"
	}
	return &Mock{
		baseURL: base,
		city:    city,
		seed:    1,
		count:   12,
		now:     time.Now,
	}
}

// NewMockAdapter gives tests full control over the generated batch.
func NewMockAdapter(baseURL string, city config.CityConfig, seed int64, count int) *Mock {
	return &Mock{
		baseURL: strings.TrimRight(baseURL, "/"),
		city:    city,
		seed:    seed,
		count:   count,
		now:     time.Now,
	}
}

func (m *Mock) Name() string { return "mock" }

var mockVenues = []string{"Town Hall", "Harbour Pavilion", "The Factory", "Riverside Hall"}
var mockThemes = []string{"Jazz Night", "Food Market", "Art Walk", "Tech Talks", "Fun Run"}

func (m *Mock) Scrape(_ context.Context) ([]model.Candidate, error) {
	r := rand.New(rand.NewSource(m.seed))
	now := m.now()

	out := make([]model.Candidate, 0, m.count)
	for i := 0; i < m.count; i++ {
		theme := mockThemes[i%len(mockThemes)]
		venue := mockVenues[i%len(mockVenues)]
		id := fmt.Sprintf("mock-%04d", i+1)
		title := fmt.Sprintf("%s %s #%d", m.city.Name, theme, i+1)
		text := title

		price := model.Price{Currency: "AUD"}
		if i%3 == 0 {
			price.IsFree = true
		} else {
			price.Min = float64(10 + r.Intn(20))
			price.Max = price.Min + float64(r.Intn(30))
		}

		out = append(out, model.Candidate{
			Title:       title,
			Description: fmt.Sprintf("Synthetic listing for %s at %s.", theme, venue),
			StartDate:   now.AddDate(0, 0, 1+i%14),
			Venue: model.Venue{
				Name:    venue,
				Address: fmt.Sprintf("%d George St", 100+i),
				City:    m.city.Name,
				State:   m.city.State,
				Country: m.city.Country,
			},
			Category: detectCategory(text),
			Tags:     extractTags(text, m.city),
			ImageURL: m.baseURL + "/img/" + id + ".jpg",
			Price:    price,
			Source: model.Source{
				Name:       m.Name(),
				URL:        m.baseURL + "/events/" + id,
				ExternalID: id,
			},
		})
	}
	return out, nil
}
