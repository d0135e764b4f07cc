package arbor

import (
	"github.com/cockroachdb/errors"
)

// ═══════════════════════════════════════════════════════════════════════════════
// ERROR TAXONOMY
// ═══════════════════════════════════════════════════════════════════════════════
// Five distinct failure kinds, each a package-level sentinel so callers can
// compare with errors.Is. Add/Remove return these directly (an
// ErrFieldNotString failure is wrapped with the offending field's name);
// AddAll/RemoveAll wrap them with the batch index of the failing document.
// The raising surface (MustAdd/MustRemove) panics with the same error.
// ═══════════════════════════════════════════════════════════════════════════════
var (
	// ErrDocumentMissingID is raised when a document has no "id" field.
	ErrDocumentMissingID = errors.New("document is missing an id field")

	// ErrDocumentExists is raised when Add is given an id already present
	// in the index.
	ErrDocumentExists = errors.New("document already exists")

	// ErrDocumentNotExists is raised when Remove is given an id not
	// present in the index.
	ErrDocumentNotExists = errors.New("document does not exist")

	// ErrDocumentMutated is raised when the fingerprint of a document
	// presented to Remove differs from the fingerprint stored at Add
	// time — the caller did not present the original document.
	ErrDocumentMutated = errors.New("document was mutated since it was added")

	// ErrFieldNotString is raised when a field value has no canonical
	// text rendering.
	ErrFieldNotString = errors.New("field value cannot be rendered as text")

	// errNewMissingFields is raised when New is called with no fields.
	errNewMissingFields = errors.New("index requires at least one field")
)

// fieldError marks cause as an ErrFieldNotString failure, naming the
// offending field.
func fieldError(field string, cause error) error {
	return errors.Mark(errors.Wrapf(cause, "field %q", field), ErrFieldNotString)
}

// batchError wraps an error from a batched Add/Remove with the index of
// the document that failed, so callers can see which element of the
// batch stopped processing.
func batchError(index int, err error) error {
	return errors.Wrapf(err, "document at batch index %d", index)
}
