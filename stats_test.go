package arbor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ═══════════════════════════════════════════════════════════════════════════════
// FIELD STATISTICS TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestUpdateAvgOnAdd_FirstDocument(t *testing.T) {
	got := updateAvgOnAdd(0, 1, 6)
	assert.Equal(t, 6.0, got)
}

func TestUpdateAvgOnAdd_IncrementalMean(t *testing.T) {
	// Three titles of length 1 each: avg stays 1.0 throughout.
	avg := updateAvgOnAdd(0, 1, 1)
	avg = updateAvgOnAdd(avg, 2, 1)
	avg = updateAvgOnAdd(avg, 3, 1)
	assert.InDelta(t, 1.0, avg, 1e-9)
}

func TestUpdateAvgOnAdd_ContentLengths(t *testing.T) {
	// lengths 6, 7, 7 -> mean 20/3
	avg := updateAvgOnAdd(0, 1, 6)
	avg = updateAvgOnAdd(avg, 2, 7)
	avg = updateAvgOnAdd(avg, 3, 7)
	assert.InDelta(t, 20.0/3.0, avg, 1e-9)
}

func TestUpdateAvgOnRemove_MatchesDirectMean(t *testing.T) {
	// Start from the three-document mean (20/3), remove the doc of
	// length 6, leaving [7, 7] with mean 7.0.
	avg := updateAvgOnRemove(20.0/3.0, 2, 6)
	assert.InDelta(t, 7.0, avg, 1e-9)
}
