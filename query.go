package arbor

import (
	"log/slog"
	"sort"

	"github.com/agnivade/levenshtein"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ═══════════════════════════════════════════════════════════════════════════════
// QUERY EVALUATOR: EXACT → PREFIX → FUZZY
// ═══════════════════════════════════════════════════════════════════════════════
// The query string is tokenized and lowercased identically to ingest —
// that equivalence is what makes an exact-pass lookup ever hit anything.
// Duplicated query terms are not deduplicated (each contributes its own
// pass of lookups), but contributions are deduplicated per
// (document, matched term, field): once an earlier, stronger pass has
// credited a (term, field) pair for a document, a later, weaker pass
// skips it rather than double-counting. "Matched term" here means the
// term actually found in the tree — for the exact pass that's the query
// term itself; for prefix/fuzzy it's the indexed term the query term
// extended or fuzzily matched.
// ═══════════════════════════════════════════════════════════════════════════════

// SearchOptions configures a Search call. The zero value enables only the
// exact pass.
type SearchOptions struct {
	Prefix bool // enable the prefix pass
	Fuzzy  bool // enable the fuzzy pass

	Fuzziness int // maximum edit distance in the fuzzy pass

	PrefixWeight float64 // base prefix-pass attenuation
	FuzzyWeight  float64 // base fuzzy-pass attenuation
}

// DefaultSearchOptions returns the standard search configuration: exact
// matching only, with the fuzzy/prefix weights set to sensible defaults
// should a caller turn either pass on.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Prefix:       false,
		Fuzzy:        false,
		Fuzziness:    2,
		PrefixWeight: 0.375,
		FuzzyWeight:  0.45,
	}
}

// mergeSearchOptions overlays opts onto DefaultSearchOptions, so a caller
// can supply a partial struct literal — &SearchOptions{Prefix: true} — and
// turn on a pass without silently zeroing the weight/fuzziness defaults
// for the fields they didn't set. Prefix and Fuzzy are taken verbatim from
// opts (false is a meaningful, explicit choice for a bool); Fuzziness,
// PrefixWeight, and FuzzyWeight only override the default when non-zero.
func mergeSearchOptions(opts *SearchOptions) SearchOptions {
	options := DefaultSearchOptions()
	if opts == nil {
		return options
	}
	options.Prefix = opts.Prefix
	options.Fuzzy = opts.Fuzzy
	if opts.Fuzziness != 0 {
		options.Fuzziness = opts.Fuzziness
	}
	if opts.PrefixWeight != 0 {
		options.PrefixWeight = opts.PrefixWeight
	}
	if opts.FuzzyWeight != 0 {
		options.FuzzyWeight = opts.FuzzyWeight
	}
	return options
}

// Result is one document's ranked search outcome.
type Result struct {
	ID      string                              // external document id
	Score   float64                             // summed weighted BM25 score
	Terms   []string                            // unique matched terms
	Matches map[string][]string                 // matched term -> unique matched field names
	Fields  *orderedmap.OrderedMap[string, any] // projected return fields
}

// pairKey identifies one (document, matched term, field) contribution for
// deduplication across passes.
type pairKey struct {
	doc   ShortID
	term  string
	field int
}

// docAccumulator tracks one document's running aggregation across passes.
type docAccumulator struct {
	score     float64
	terms     []string                   // insertion-ordered, deduplicated by termSeen
	termSeen  map[string]bool
	matches   map[string][]string        // term -> field names, deduplicated by fieldSeen
	fieldSeen map[string]map[string]bool
}

// Search evaluates query against idx and returns results sorted by score
// descending. An empty query, or a query with no hits in any enabled pass,
// yields an empty (not nil-panicking) result slice.
func Search(idx *Index, query string, opts *SearchOptions) []Result {
	options := mergeSearchOptions(opts)

	queryTerms := tokenize(query)
	if len(queryTerms) == 0 {
		return []Result{}
	}

	slog.Info("arbor: search", slog.String("query", query), slog.Int("terms", len(queryTerms)))

	accum := make(map[ShortID]*docAccumulator)
	seen := make(map[pairKey]bool)

	for _, q := range queryTerms {
		evalExact(idx, q, accum, seen)
	}
	if options.Prefix {
		for _, q := range queryTerms {
			evalPrefix(idx, q, options.PrefixWeight, accum, seen)
		}
	}
	if options.Fuzzy {
		for _, q := range queryTerms {
			evalFuzzy(idx, q, options.Fuzziness, options.FuzzyWeight, accum, seen)
		}
	}

	results := make([]Result, 0, len(accum))
	for shortID, acc := range accum {
		extID, ok := idx.shortIDs[shortID]
		if !ok {
			continue
		}
		terms := append([]string(nil), acc.terms...)
		matches := make(map[string][]string, len(acc.matches))
		for term, fields := range acc.matches {
			matches[term] = append([]string(nil), fields...)
		}
		results = append(results, Result{
			ID:      extID,
			Score:   acc.score,
			Terms:   terms,
			Matches: matches,
			Fields:  idx.returnFieldData[shortID],
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// evalExact runs the exact pass for one query term: an exact tree lookup,
// weight 1.
func evalExact(idx *Index, q string, accum map[ShortID]*docAccumulator, seen map[pairKey]bool) {
	rec, ok := treeGet(idx.tree, q)
	if !ok {
		return
	}
	creditRecord(idx, q, rec, 1.0, accum, seen)
}

// evalPrefix runs the prefix pass for one query term: every indexed term
// strictly extending q contributes with an attenuated weight that favors
// shorter extensions.
//
//	w = prefixWeight * len(t) / (len(t) + 0.3*(len(t)-len(q)))
func evalPrefix(idx *Index, q string, prefixWeight float64, accum map[ShortID]*docAccumulator, seen map[pairKey]bool) {
	treeWalkPrefix(idx.tree, q, func(t string, rec *termRecord) {
		lt := float64(len(t))
		d := lt - float64(len(q))
		w := prefixWeight * lt / (lt + 0.3*d)
		creditRecord(idx, t, rec, w, accum, seen)
	})
}

// evalFuzzy runs the fuzzy pass for one query term: every indexed term
// within fuzziness both in length difference and Levenshtein distance
// contributes with a single, term-level weight (the same weight for every
// candidate of that query term).
//
//	w = fuzzyWeight * len(q) / (len(q) + fuzziness)
func evalFuzzy(idx *Index, q string, fuzziness int, fuzzyWeight float64, accum map[ShortID]*docAccumulator, seen map[pairKey]bool) {
	w := fuzzyWeight * float64(len(q)) / (float64(len(q)) + float64(fuzziness))
	treeWalk(idx.tree, func(t string, rec *termRecord) {
		if abs(len(t)-len(q)) > fuzziness {
			return
		}
		if levenshtein.ComputeDistance(q, t) > fuzziness {
			return
		}
		creditRecord(idx, t, rec, w, accum, seen)
	})
}

// creditRecord applies one matched term's record to the running
// accumulation, skipping any (document, term, field) already credited by
// an earlier, stronger pass.
func creditRecord(idx *Index, matchedTerm string, rec *termRecord, weight float64, accum map[ShortID]*docAccumulator, seen map[pairKey]bool) {
	for fieldID, docs := range rec.fields {
		nt := rec.docCount(fieldID)
		fieldName := idx.fields[fieldID]
		for shortID, freq := range docs {
			if !idx.isLive(shortID) {
				continue
			}
			key := pairKey{shortID, matchedTerm, fieldID}
			if seen[key] {
				continue
			}
			seen[key] = true

			length := idx.fieldLengths[shortID][fieldID]
			avgLength := idx.avgFieldLengths[fieldID]
			raw := bm25Score(idx.DocumentCount(), nt, int(freq), length, avgLength)

			acc, ok := accum[shortID]
			if !ok {
				acc = &docAccumulator{
					termSeen:  make(map[string]bool),
					matches:   make(map[string][]string),
					fieldSeen: make(map[string]map[string]bool),
				}
				accum[shortID] = acc
			}
			acc.score += raw * weight
			if !acc.termSeen[matchedTerm] {
				acc.termSeen[matchedTerm] = true
				acc.terms = append(acc.terms, matchedTerm)
			}
			if acc.fieldSeen[matchedTerm] == nil {
				acc.fieldSeen[matchedTerm] = make(map[string]bool)
			}
			if !acc.fieldSeen[matchedTerm][fieldName] {
				acc.fieldSeen[matchedTerm][fieldName] = true
				acc.matches[matchedTerm] = append(acc.matches[matchedTerm], fieldName)
			}
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
