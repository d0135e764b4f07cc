package arbor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ═══════════════════════════════════════════════════════════════════════════════
// TOKENIZER TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestTokenize_LowercasesAndSplits(t *testing.T) {
	got := tokenize("Elixir is a dynamic, functional language.")
	assert.Equal(t, []string{"elixir", "is", "a", "dynamic", "functional", "language"}, got)
}

func TestTokenize_SplitsOnPunctuation(t *testing.T) {
	got := tokenize("café-society, user@email.com")
	assert.Equal(t, []string{"café", "society", "user", "email", "com"}, got)
}

func TestTokenize_EmptyInput(t *testing.T) {
	assert.Empty(t, tokenize(""))
	assert.Empty(t, tokenize("   "))
	assert.Empty(t, tokenize("...---..."))
}

func TestTokenize_NoStemmingNoStopwords(t *testing.T) {
	// Non-goal: no stopword removal or stemming beyond case-folding.
	got := tokenize("The running dogs are fast")
	assert.Equal(t, []string{"the", "running", "dogs", "are", "fast"}, got)
}

func TestTermFrequencies_CountsOccurrencesAndUniqueTerms(t *testing.T) {
	freqs, unique := termFrequencies("quick quick brown fox")
	assert.Equal(t, 3, unique)
	assert.Equal(t, map[string]int{"quick": 2, "brown": 1, "fox": 1}, freqs)
}
