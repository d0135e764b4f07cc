package arbor

import (
	"github.com/cespare/xxhash/v2"
	"github.com/spf13/cast"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ═══════════════════════════════════════════════════════════════════════════════
// DOCUMENT: THE HOST'S INPUT SHAPE
// ═══════════════════════════════════════════════════════════════════════════════
// A Document is an ordered mapping from field name to value. One
// distinguished field, "id", holds the caller's unique external
// identifier. Field values that aren't already strings are rendered to
// text on ingest; values with no canonical text rendering fail with
// ErrFieldNotString. Field lookups are string-keyed only.
// ═══════════════════════════════════════════════════════════════════════════════

// idField is the distinguished field name holding a document's external
// identity.
const idField = "id"

// Document is the host-supplied input shape: an ordered field name → value
// mapping. Construct one with NewDocument.
type Document = *orderedmap.OrderedMap[string, any]

// Field is a single name/value pair used to build a Document in order.
type Field struct {
	Name  string
	Value any
}

// NewDocument builds a Document preserving the order fields are given in.
// Order matters for fingerprinting: the same fields in the same order
// always fingerprint identically.
//
// Example:
//
//	d := NewDocument(
//	    Field{"id", 100},
//	    Field{"title", "Elixir"},
//	    Field{"content", "Elixir is a dynamic, functional language."},
//	    Field{"tag", "lang"},
//	)
func NewDocument(fields ...Field) Document {
	m := orderedmap.New[string, any](len(fields))
	for _, f := range fields {
		m.Set(f.Name, f.Value)
	}
	return m
}

// documentID extracts and renders the external id from a document. Absence
// of the id field is ErrDocumentMissingID; an id with no text rendering is
// ErrFieldNotString.
func documentID(doc Document) (string, error) {
	v, ok := doc.Get(idField)
	if !ok {
		return "", ErrDocumentMissingID
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fieldError(idField, err)
	}
	return s, nil
}

// fieldText renders a document field to text for tokenization. A missing
// field renders as empty text (a document need not populate every indexed
// field); a present field with no text rendering is ErrFieldNotString.
func fieldText(doc Document, field string) (string, error) {
	v, ok := doc.Get(field)
	if !ok {
		return "", nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fieldError(field, err)
	}
	return s, nil
}

// fingerprint computes a content fingerprint over the full document
// (including fields not in the index's configured field list), used to
// detect mutation between Add and Remove. Any hash with reasonable
// collision resistance suffices — this is never persisted or exposed, only
// compared for equality.
func fingerprint(doc Document) (uint64, error) {
	h := xxhash.New()
	for pair := doc.Oldest(); pair != nil; pair = pair.Next() {
		s, err := cast.ToStringE(pair.Value)
		if err != nil {
			return 0, fieldError(pair.Key, err)
		}
		_, _ = h.WriteString(pair.Key)
		_, _ = h.Write([]byte{0})
		_, _ = h.WriteString(s)
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64(), nil
}

// projectReturnFields copies out the subset of doc's fields named in
// returnFields, preserving returnFields' order. Values are copied as-is,
// with no normalization or coercion.
func projectReturnFields(doc Document, returnFields []string) *orderedmap.OrderedMap[string, any] {
	out := orderedmap.New[string, any](len(returnFields))
	for _, name := range returnFields {
		if v, ok := doc.Get(name); ok {
			out.Set(name, v)
		}
	}
	return out
}
