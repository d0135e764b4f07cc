package arbor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ═══════════════════════════════════════════════════════════════════════════════
// INDEX LIFECYCLE TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestNew_RequiresFields(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestNew_EmptyIndex(t *testing.T) {
	idx, err := New([]string{"title", "content"})
	require.NoError(t, err)
	assert.Equal(t, 0, idx.DocumentCount())
}

func elixirDoc() Document {
	return NewDocument(
		Field{"id", 100},
		Field{"title", "Elixir"},
		Field{"content", "Elixir is a dynamic, functional language."},
		Field{"tag", "lang"},
	)
}

func phoenixDoc() Document {
	return NewDocument(
		Field{"id", 101},
		Field{"title", "Phoenix"},
		Field{"content", "Phoenix is a web framework for Elixir."},
		Field{"tag", "framework"},
	)
}

func nervesDoc() Document {
	return NewDocument(
		Field{"id", 102},
		Field{"title", "Nerves"},
		Field{"content", "Nerves is a framework for embedded systems."},
		Field{"tag", "framework"},
	)
}

func setupIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New([]string{"title", "content"})
	require.NoError(t, err)
	idx, err = AddAll(idx, elixirDoc(), phoenixDoc(), nervesDoc())
	require.NoError(t, err)
	return idx
}

func TestAdd_DuplicateIDFails(t *testing.T) {
	idx := setupIndex(t)
	_, err := Add(idx, elixirDoc())
	assert.ErrorIs(t, err, ErrDocumentExists)
}

func TestAdd_MissingIDFails(t *testing.T) {
	idx, err := New([]string{"title"})
	require.NoError(t, err)
	_, err = Add(idx, NewDocument(Field{"title", "Elixir"}))
	assert.ErrorIs(t, err, ErrDocumentMissingID)
}

func TestAdd_DoesNotMutateThePriorSnapshot(t *testing.T) {
	idx, err := New([]string{"title", "content"})
	require.NoError(t, err)
	before := idx

	after, err := Add(idx, elixirDoc())
	require.NoError(t, err)

	assert.Equal(t, 0, before.DocumentCount())
	assert.Equal(t, 1, after.DocumentCount())
}

func TestRemove_UnknownIDFails(t *testing.T) {
	idx := setupIndex(t)
	_, err := Remove(idx, NewDocument(Field{"id", 999}, Field{"title", "Ghost"}))
	assert.ErrorIs(t, err, ErrDocumentNotExists)
}

func TestRemove_MutatedDocumentFails(t *testing.T) {
	idx := setupIndex(t)
	mutated := NewDocument(
		Field{"id", 100},
		Field{"title", "Unknown"},
		Field{"content", "Elixir is a dynamic, functional language."},
		Field{"tag", "lang"},
	)
	_, err := Remove(idx, mutated)
	assert.ErrorIs(t, err, ErrDocumentMutated)
}

func TestAdd_ThenRemove_RestoresEmptyStateExceptNextID(t *testing.T) {
	idx, err := New([]string{"title", "content"})
	require.NoError(t, err)

	added, err := Add(idx, elixirDoc())
	require.NoError(t, err)
	removed, err := Remove(added, elixirDoc())
	require.NoError(t, err)

	assert.Equal(t, idx.DocumentCount(), removed.DocumentCount())
	assert.Empty(t, removed.ids)
	assert.Empty(t, removed.shortIDs)
	assert.Empty(t, removed.hashes)
	assert.Empty(t, removed.fieldLengths)
	assert.Empty(t, removed.returnFieldData)
	assert.Equal(t, ShortID(1), idx.nextID)
	assert.Equal(t, ShortID(2), removed.nextID)
}

func TestRemove_ToZeroDocuments_ResetsAllStatistics(t *testing.T) {
	idx, err := New([]string{"title", "content"})
	require.NoError(t, err)
	idx, err = Add(idx, elixirDoc())
	require.NoError(t, err)

	idx, err = Remove(idx, elixirDoc())
	require.NoError(t, err)

	assert.Equal(t, 0, idx.DocumentCount())
	assert.Equal(t, []float64{0, 0}, idx.avgFieldLengths)
	_, ok := treeGet(idx.tree, "elixir")
	assert.False(t, ok)
}

func TestAddAll_FailFastIdentifiesOffendingDocument(t *testing.T) {
	idx, err := New([]string{"title"})
	require.NoError(t, err)
	_, err = AddAll(idx,
		NewDocument(Field{"id", 1}, Field{"title", "A"}),
		NewDocument(Field{"title", "Missing id"}),
		NewDocument(Field{"id", 2}, Field{"title", "B"}),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDocumentMissingID)
	assert.Contains(t, err.Error(), "batch index 1")
}

func TestMustAdd_PanicsOnError(t *testing.T) {
	idx := setupIndex(t)
	assert.Panics(t, func() {
		MustAdd(idx, elixirDoc())
	})
}

func TestInvariant_DocumentCountMatchesAllMaps(t *testing.T) {
	idx := setupIndex(t)
	assert.Equal(t, idx.DocumentCount(), len(idx.ids))
	assert.Equal(t, idx.DocumentCount(), len(idx.shortIDs))
	assert.Equal(t, idx.DocumentCount(), len(idx.hashes))
	assert.Equal(t, idx.DocumentCount(), len(idx.fieldLengths))
	assert.Equal(t, idx.DocumentCount(), len(idx.returnFieldData))
	assert.Equal(t, uint64(idx.DocumentCount()), idx.live.GetCardinality())
}

func TestInvariant_LiveBitmapTracksActualMembership(t *testing.T) {
	idx := setupIndex(t)
	for _, shortID := range idx.ids {
		assert.True(t, idx.live.Contains(shortID))
	}

	removed, err := Remove(idx, elixirDoc())
	require.NoError(t, err)
	removedShortID := idx.ids["100"]
	assert.False(t, removed.live.Contains(removedShortID))
	assert.True(t, idx.live.Contains(removedShortID), "removing from the new snapshot must not mutate the old one")
}

func TestInvariant_IDsAndShortIDsAreMutualInverses(t *testing.T) {
	idx := setupIndex(t)
	for extID, shortID := range idx.ids {
		assert.Equal(t, extID, idx.shortIDs[shortID])
	}
}

func TestInvariant_EveryTreeShortIDIsLive(t *testing.T) {
	idx := setupIndex(t)
	treeWalk(idx.tree, func(term string, rec *termRecord) {
		for _, docs := range rec.fields {
			for shortID := range docs {
				_, ok := idx.shortIDs[shortID]
				assert.True(t, ok, "short id %d referenced in tree but not in shortIDs", shortID)
			}
		}
	})
}
