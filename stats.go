package arbor

// ═══════════════════════════════════════════════════════════════════════════════
// FIELD STATISTICS
// ═══════════════════════════════════════════════════════════════════════════════
// For every (short id, field id) the index stores the unique-term count
// observed at insertion — not the raw token count — because that is what
// the BM25 variant's length normalization is defined over. The running
// average per field is updated incrementally rather than recomputed from
// scratch on every mutation; small drift from floating-point accumulation
// is accepted in exchange for O(1) updates (a reindex would rebuild exact
// averages, but this package does not offer one).
// ═══════════════════════════════════════════════════════════════════════════════

// updateAvgOnAdd applies the add-time incremental average update:
//
//	avg' = (avg * (n - 1) + length) / n
//
// where n is document_count after the mutation.
func updateAvgOnAdd(avg float64, n int, length int) float64 {
	return (avg*float64(n-1) + float64(length)) / float64(n)
}

// updateAvgOnRemove applies the remove-time incremental average update for
// a removal that leaves at least one document live:
//
//	avg' = (avg * (n + 1) - length) / n
//
// where n is document_count after the mutation. Callers must reset the
// average to zero directly when n reaches 0 rather than calling this.
func updateAvgOnRemove(avg float64, n int, length int) float64 {
	return (avg*float64(n+1) - float64(length)) / float64(n)
}
