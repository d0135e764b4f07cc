package arbor

import (
	"log/slog"

	adaptive "github.com/absolutelightning/go-immutable-adaptive-radix"
	"github.com/RoaringBitmap/roaring"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ═══════════════════════════════════════════════════════════════════════════════
// INDEX: THE ONE ENTITY THE PACKAGE EXPOSES
// ═══════════════════════════════════════════════════════════════════════════════
// An Index is created once with a fixed field list and then threaded
// through Add/Remove: each mutation returns a new, logically-consistent
// Index value rather than mutating the receiver. Readers holding an older
// *Index see a consistent pre-mutation snapshot, and concurrent read-only
// use of one snapshot from multiple goroutines is safe — nothing in a
// snapshot is ever mutated after it is handed back to the caller.
//
// Internally this is a hybrid of persistence styles: the term tree is a
// genuinely persistent structure shared across versions
// (go-immutable-adaptive-radix), while the small bookkeeping maps (ids,
// shortIDs, hashes, field lengths, return field projections) are
// copy-on-write — cloned and mutated fresh on every Add/Remove, which is
// cheap at the sizes this library targets.
// ═══════════════════════════════════════════════════════════════════════════════

// ShortID is the internal positive integer identifying a document within
// one Index instance. Short ids are never reused, even after the document
// they named is removed.
type ShortID = uint32

// Index is the in-memory search index. Zero value is not useful; build one
// with New.
type Index struct {
	fields     []string       // field id -> field name, fixed at creation
	fieldIndex map[string]int // field name -> field id

	returnFields []string // field names copied back with each search result

	ids      map[string]ShortID // external id -> short id
	shortIDs map[ShortID]string // short id -> external id
	nextID   ShortID

	fieldLengths    map[ShortID][]int // short id -> per-field unique-term count
	avgFieldLengths []float64         // field id -> running mean length

	hashes map[ShortID]uint64 // short id -> content fingerprint

	returnFieldData map[ShortID]*orderedmap.OrderedMap[string, any]

	tree *adaptive.RadixTree[*termRecord]

	live *roaring.Bitmap // bitmap of currently-live short ids
}

// Option configures an Index at construction time.
type Option func(*Index)

// WithReturnFields sets the field names whose raw values are copied back
// with each search result. Defaults to none.
func WithReturnFields(fields ...string) Option {
	return func(idx *Index) {
		idx.returnFields = append([]string(nil), fields...)
	}
}

// New creates an empty Index over a fixed, non-empty field list.
func New(fields []string, opts ...Option) (*Index, error) {
	if len(fields) == 0 {
		return nil, errNewMissingFields
	}

	fieldIndex := make(map[string]int, len(fields))
	for i, f := range fields {
		fieldIndex[f] = i
	}

	idx := &Index{
		fields:          append([]string(nil), fields...),
		fieldIndex:      fieldIndex,
		ids:             make(map[string]ShortID),
		shortIDs:        make(map[ShortID]string),
		nextID:          1,
		fieldLengths:    make(map[ShortID][]int),
		avgFieldLengths: make([]float64, len(fields)),
		hashes:          make(map[ShortID]uint64),
		returnFieldData: make(map[ShortID]*orderedmap.OrderedMap[string, any]),
		tree:            newTermTree(),
		live:            roaring.NewBitmap(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx, nil
}

// DocumentCount returns the number of live documents in the index. The
// live bitmap, not a separately-tracked counter, is the source of truth:
// its cardinality is also what Add/Remove consult when recomputing
// per-field average lengths, so a mismatch between the bitmap and the
// bookkeeping maps would surface here first.
func (idx *Index) DocumentCount() int { return int(idx.live.GetCardinality()) }

// isLive reports whether shortID is a member of the live bitmap. Every
// tree lookup path consults this before crediting a match, so a posting
// left behind by a bug in Add/Remove's cleanup can never surface in
// search results.
func (idx *Index) isLive(shortID ShortID) bool {
	return idx.live.Contains(shortID)
}

// clone returns a shallow copy of idx with freshly-allocated bookkeeping
// maps (the persistent term tree's pointer is copied as-is; Add/Remove
// always reassign it to a new tree value rather than mutating the shared
// one).
func (idx *Index) clone() *Index {
	next := &Index{
		fields:          idx.fields,     // fixed for the index's lifetime
		fieldIndex:      idx.fieldIndex, // fixed for the index's lifetime
		returnFields:    idx.returnFields,
		ids:             make(map[string]ShortID, len(idx.ids)),
		shortIDs:        make(map[ShortID]string, len(idx.shortIDs)),
		nextID:          idx.nextID,
		fieldLengths:    make(map[ShortID][]int, len(idx.fieldLengths)),
		avgFieldLengths: append([]float64(nil), idx.avgFieldLengths...),
		hashes:          make(map[ShortID]uint64, len(idx.hashes)),
		returnFieldData: make(map[ShortID]*orderedmap.OrderedMap[string, any], len(idx.returnFieldData)),
		tree:            idx.tree,
		live:            idx.live.Clone(),
	}
	for k, v := range idx.ids {
		next.ids[k] = v
	}
	for k, v := range idx.shortIDs {
		next.shortIDs[k] = v
	}
	for k, v := range idx.fieldLengths {
		next.fieldLengths[k] = append([]int(nil), v...)
	}
	for k, v := range idx.hashes {
		next.hashes[k] = v
	}
	for k, v := range idx.returnFieldData {
		next.returnFieldData[k] = v
	}
	return next
}

// Add inserts a new document into the index, returning a new Index value.
// The document must carry an "id" field not already present in the index.
func Add(idx *Index, doc Document) (*Index, error) {
	extID, err := documentID(doc)
	if err != nil {
		return nil, err
	}
	if _, exists := idx.ids[extID]; exists {
		return nil, ErrDocumentExists
	}

	fp, err := fingerprint(doc)
	if err != nil {
		return nil, err
	}

	lengths := make([]int, len(idx.fields))
	type posting struct {
		fieldID int
		term    string
		freq    int
	}
	var postings []posting
	for fieldID, name := range idx.fields {
		text, err := fieldText(doc, name)
		if err != nil {
			return nil, err
		}
		freqs, unique := termFrequencies(text)
		lengths[fieldID] = unique
		for term, freq := range freqs {
			postings = append(postings, posting{fieldID, term, freq})
		}
	}

	next := idx.clone()
	shortID := next.nextID
	next.nextID++
	next.live.Add(shortID)
	count := int(next.live.GetCardinality())

	tree := next.tree
	for _, p := range postings {
		tree = treeInsertOccurrence(tree, p.term, p.fieldID, shortID, uint32(p.freq))
	}
	next.tree = tree

	for fieldID, length := range lengths {
		next.avgFieldLengths[fieldID] = updateAvgOnAdd(idx.avgFieldLengths[fieldID], count, length)
	}

	next.ids[extID] = shortID
	next.shortIDs[shortID] = extID
	next.fieldLengths[shortID] = lengths
	next.hashes[shortID] = fp
	next.returnFieldData[shortID] = projectReturnFields(doc, next.returnFields)

	slog.Info("arbor: document added", slog.String("id", extID), slog.Int("document_count", count))
	return next, nil
}

// MustAdd is Add's raising counterpart: it panics on error.
func MustAdd(idx *Index, doc Document) *Index {
	next, err := Add(idx, doc)
	if err != nil {
		panic(err)
	}
	return next
}

// AddAll adds each document in order, equivalent to a left fold of Add. On
// the first failure, processing stops and the error identifies which
// batch element failed.
func AddAll(idx *Index, docs ...Document) (*Index, error) {
	next := idx
	for i, doc := range docs {
		var err error
		next, err = Add(next, doc)
		if err != nil {
			return nil, batchError(i, err)
		}
	}
	return next, nil
}

// MustAddAll is AddAll's raising counterpart.
func MustAddAll(idx *Index, docs ...Document) *Index {
	next, err := AddAll(idx, docs...)
	if err != nil {
		panic(err)
	}
	return next
}

// Remove deletes a document from the index, returning a new Index value.
// The caller must present the original document unchanged: its fingerprint
// is recomputed and compared against the one stored at Add time, and a
// mismatch fails loudly (ErrDocumentMutated) rather than risk a partial
// delete that would corrupt postings.
func Remove(idx *Index, doc Document) (*Index, error) {
	extID, err := documentID(doc)
	if err != nil {
		return nil, err
	}
	shortID, exists := idx.ids[extID]
	if !exists {
		return nil, ErrDocumentNotExists
	}

	fp, err := fingerprint(doc)
	if err != nil {
		return nil, err
	}
	if fp != idx.hashes[shortID] {
		return nil, ErrDocumentMutated
	}

	type posting struct {
		fieldID int
		term    string
	}
	var postings []posting
	for fieldID, name := range idx.fields {
		text, err := fieldText(doc, name)
		if err != nil {
			return nil, err
		}
		freqs, _ := termFrequencies(text)
		for term := range freqs {
			postings = append(postings, posting{fieldID, term})
		}
	}

	next := idx.clone()
	next.live.Remove(shortID)
	count := int(next.live.GetCardinality())

	tree := next.tree
	for _, p := range postings {
		tree = treeRemoveOccurrence(tree, p.term, p.fieldID, shortID)
	}
	next.tree = tree

	lengths := next.fieldLengths[shortID]
	if count == 0 {
		for i := range next.avgFieldLengths {
			next.avgFieldLengths[i] = 0
		}
	} else {
		for fieldID, length := range lengths {
			next.avgFieldLengths[fieldID] = updateAvgOnRemove(idx.avgFieldLengths[fieldID], count, length)
		}
	}

	delete(next.ids, extID)
	delete(next.shortIDs, shortID)
	delete(next.fieldLengths, shortID)
	delete(next.hashes, shortID)
	delete(next.returnFieldData, shortID)

	if count == 0 {
		next.tree = newTermTree()
		next.ids = make(map[string]ShortID)
		next.shortIDs = make(map[ShortID]string)
		next.fieldLengths = make(map[ShortID][]int)
		next.hashes = make(map[ShortID]uint64)
		next.returnFieldData = make(map[ShortID]*orderedmap.OrderedMap[string, any])
		next.live = roaring.NewBitmap()
	}

	slog.Info("arbor: document removed", slog.String("id", extID), slog.Int("document_count", count))
	return next, nil
}

// MustRemove is Remove's raising counterpart.
func MustRemove(idx *Index, doc Document) *Index {
	next, err := Remove(idx, doc)
	if err != nil {
		panic(err)
	}
	return next
}

// RemoveAll removes each document in order, equivalent to a left fold of
// Remove. On the first failure, processing stops and the error identifies
// which batch element failed.
func RemoveAll(idx *Index, docs ...Document) (*Index, error) {
	next := idx
	for i, doc := range docs {
		var err error
		next, err = Remove(next, doc)
		if err != nil {
			return nil, batchError(i, err)
		}
	}
	return next, nil
}

// MustRemoveAll is RemoveAll's raising counterpart.
func MustRemoveAll(idx *Index, docs ...Document) *Index {
	next, err := RemoveAll(idx, docs...)
	if err != nil {
		panic(err)
	}
	return next
}
