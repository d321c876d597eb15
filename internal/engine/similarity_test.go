package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity_Identical(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Sydney Jazz Festival", "Sydney Jazz Festival"))
	assert.Equal(t, 1.0, Similarity("Sydney Jazz Festival", "sydney jazz festival"), "case-insensitive")
}

func TestSimilarity_Disjoint(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("abcd", "wxyz"))
}

func TestSimilarity_ShortStrings(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("a", "a"), "equal strings match before the bigram length check")
	assert.Equal(t, 0.0, Similarity("a", "b"))
	assert.Equal(t, 0.0, Similarity("", "anything"))
	assert.Equal(t, 0.0, Similarity("", ""))
}

func TestSimilarity_NearMatchAboveThreshold(t *testing.T) {
	// The near-duplicate pair that cross-source dedup must catch.
	got := Similarity("Sydney Jazz Fest", "Sydney Jazz Festival")
	assert.Greater(t, got, 0.8)
}

func TestSimilarity_DifferentEventsBelowThreshold(t *testing.T) {
	got := Similarity("Sydney Food Market", "Sydney Jazz Festival")
	assert.Less(t, got, 0.8)
}

func TestSimilarity_Symmetric(t *testing.T) {
	a, b := "Winter Lights Parade", "Winter Light Parade"
	assert.Equal(t, Similarity(a, b), Similarity(b, a))
}
