package arbor

import (
	adaptive "github.com/absolutelightning/go-immutable-adaptive-radix"
)

// ═══════════════════════════════════════════════════════════════════════════════
// TERM INDEX: A RADIX TREE OF POSTING RECORDS
// ═══════════════════════════════════════════════════════════════════════════════
// The tree maps each term to a termRecord: field id → short id → term
// frequency. Three operations drive every query pass:
//
//	get         — point lookup, for the exact pass
//	walkPrefix  — strict-extension iteration, for the prefix pass
//	walk        — full traversal, for the fuzzy pass
//
// go-immutable-adaptive-radix is a persistent structure: every Insert or
// Delete returns a new tree value sharing untouched subtrees with the old
// one, rather than mutating in place. That is exactly the "new index value
// per mutation" lifecycle this package's Index type needs, so the term
// index is carried as a genuinely persistent value rather than a
// mutable-plus-clone structure.
// ═══════════════════════════════════════════════════════════════════════════════

// termRecord is the value stored at each term in the radix tree: for every
// field the term appears in, the set of documents it appears in and how
// many times.
type termRecord struct {
	fields map[int]map[ShortID]uint32
}

func newTermRecord() *termRecord {
	return &termRecord{fields: make(map[int]map[ShortID]uint32)}
}

// clone returns a deep copy of r, safe to mutate without affecting any
// tree snapshot that still references the original.
func (r *termRecord) clone() *termRecord {
	out := &termRecord{fields: make(map[int]map[ShortID]uint32, len(r.fields))}
	for fieldID, docs := range r.fields {
		cp := make(map[ShortID]uint32, len(docs))
		for doc, freq := range docs {
			cp[doc] = freq
		}
		out.fields[fieldID] = cp
	}
	return out
}

// docCount returns the number of documents referencing this term within
// the given field — the n_t of the BM25 formula.
func (r *termRecord) docCount(fieldID int) int {
	return len(r.fields[fieldID])
}

// empty reports whether the record references no (field, document) pairs
// at all, meaning it should be pruned from the tree entirely.
func (r *termRecord) empty() bool {
	return len(r.fields) == 0
}

// newTermTree returns an empty persistent radix tree of term records.
func newTermTree() *adaptive.RadixTree[*termRecord] {
	return adaptive.NewRadixTree[*termRecord]()
}

// treeGet performs a point lookup by exact term.
func treeGet(tree *adaptive.RadixTree[*termRecord], term string) (*termRecord, bool) {
	return tree.Get([]byte(term))
}

// treeInsertOccurrence records one (field, document, frequency) posting for
// term, read-modify-write style: fetch the existing record (or a fresh
// one), clone it so the record attached to any older tree snapshot is
// left untouched, mutate the clone, and write it back. Returns the new
// tree.
func treeInsertOccurrence(tree *adaptive.RadixTree[*termRecord], term string, fieldID int, doc ShortID, freq uint32) *adaptive.RadixTree[*termRecord] {
	existing, ok := treeGet(tree, term)
	var rec *termRecord
	if ok {
		rec = existing.clone()
	} else {
		rec = newTermRecord()
	}
	docs, ok := rec.fields[fieldID]
	if !ok {
		docs = make(map[ShortID]uint32, 1)
		rec.fields[fieldID] = docs
	}
	docs[doc] = freq
	newTree, _, _ := tree.Insert([]byte(term), rec)
	return newTree
}

// treeRemoveOccurrence removes document doc's posting for term in field
// fieldID. Deletion of the last document from a field removes that field
// from the record; deletion of the last field removes the term from the
// tree entirely. Returns the new tree.
func treeRemoveOccurrence(tree *adaptive.RadixTree[*termRecord], term string, fieldID int, doc ShortID) *adaptive.RadixTree[*termRecord] {
	existing, ok := treeGet(tree, term)
	if !ok {
		return tree
	}
	if _, ok := existing.fields[fieldID]; !ok {
		return tree
	}
	rec := existing.clone()
	docs := rec.fields[fieldID]
	delete(docs, doc)
	if len(docs) == 0 {
		delete(rec.fields, fieldID)
	}
	if rec.empty() {
		newTree, _, _ := tree.Delete([]byte(term))
		return newTree
	}
	newTree, _, _ := tree.Insert([]byte(term), rec)
	return newTree
}

// treeWalkPrefix iterates every (term, record) pair whose term is a strict
// extension of prefix — the exact match on prefix itself, if present, is
// excluded so the caller can handle it separately (the exact pass) without
// double-counting.
func treeWalkPrefix(tree *adaptive.RadixTree[*termRecord], prefix string, fn func(term string, rec *termRecord)) {
	iter := tree.Root().Iterator()
	iter.SeekPrefix([]byte(prefix))
	for {
		key, rec, ok := iter.Next()
		if !ok {
			return
		}
		term := string(key)
		if term == prefix {
			continue
		}
		fn(term, rec)
	}
}

// treeWalk iterates every (term, record) pair in the tree, in an order the
// caller must not depend on.
func treeWalk(tree *adaptive.RadixTree[*termRecord], fn func(term string, rec *termRecord)) {
	tree.Walk(func(key []byte, rec *termRecord) bool {
		fn(string(key), rec)
		return false
	})
}
