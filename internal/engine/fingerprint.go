package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"eventsync/internal/model"
)

// Fingerprint computes the content hash for a candidate: a SHA-256 digest
// over the content-bearing fields, joined with a fixed separator and
// lower-cased. Fields outside this set (tags, image, category) never affect
// the hash, so cosmetic re-scrapes are detected as no-ops.
func Fingerprint(c *model.Candidate) string {
	parts := []string{
		c.Title,
		canonicalDate(c.StartDate),
		c.Venue.Name,
		c.Venue.Address,
		c.Description,
		formatPrice(c.Price.Min),
		formatPrice(c.Price.Max),
	}
	content := strings.TrimSpace(strings.ToLower(strings.Join(parts, "|")))
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// canonicalDate renders a start date in a stable form so that equal instants
// always hash equally regardless of the wall-clock zone they were parsed in.
func canonicalDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
