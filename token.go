// Package arbor implements an in-memory full-text search index: a radix-tree
// term index, BM25-variant scoring, and an exact/prefix/fuzzy query
// evaluator, all held as an immutable-feeling value threaded through Add
// and Remove.
package arbor

import (
	"strings"
	"unicode"
)

// ═══════════════════════════════════════════════════════════════════════════════
// TOKENIZATION OVERVIEW
// ═══════════════════════════════════════════════════════════════════════════════
// A term is a lowercased token. Splitting happens on whitespace, line and
// paragraph separators, and Unicode punctuation; every other code point is
// a token character. Unlike a stemming pipeline, this is the entire
// normalization step — no stopword removal, no stemming, no accent
// folding. The same function runs on both ingest and query sides, which is
// a correctness property: a query term must normalize identically to the
// way it was indexed, or nothing will ever match.
// ═══════════════════════════════════════════════════════════════════════════════

// tokenize splits text into terms: lowercased, punctuation- and
// whitespace-delimited. Empty tokens are discarded.
//
// Examples:
//
//	tokenize("Elixir is a dynamic, functional language.")
//	  → ["elixir", "is", "a", "dynamic", "functional", "language"]
//	tokenize("café-society")
//	  → ["café", "society"]
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, isDelimiter)
	terms := make([]string, len(fields))
	for i, f := range fields {
		terms[i] = strings.ToLower(f)
	}
	return terms
}

// isDelimiter reports whether r splits tokens: any whitespace (which in
// Unicode's classification covers line and paragraph separators) or any
// punctuation code point. Letters, numbers, and symbols not classified as
// punctuation are token characters.
func isDelimiter(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}

// termFrequencies tokenizes text and counts occurrences of each term,
// returning both the frequency map and the unique-term count (field
// length for BM25 purposes is distinct terms, not total tokens).
func termFrequencies(text string) (freqs map[string]int, uniqueTerms int) {
	terms := tokenize(text)
	freqs = make(map[string]int, len(terms))
	for _, t := range terms {
		if t == "" {
			continue
		}
		freqs[t]++
	}
	return freqs, len(freqs)
}
