package schema

import (
	"errors"
	"fmt"
	"strings"
)

// LoadReason classifies schema-integrity failures surfaced while loading or
// looking up documents.
type LoadReason string

const (
	// ReasonMalformedSchema indicates a document that does not parse as a
	// well-formed schema tree.
	ReasonMalformedSchema LoadReason = "malformed_schema"

	// ReasonUnknownDocument indicates a lookup of a document name the
	// store does not hold.
	ReasonUnknownDocument LoadReason = "unknown_document"

	// ReasonDanglingReference indicates a reference whose target does not
	// exist in the loaded document set.
	ReasonDanglingReference LoadReason = "dangling_reference"

	// ReasonUnknownFormat indicates a format constraint naming a checker
	// that is not registered with the store.
	ReasonUnknownFormat LoadReason = "unknown_format"
)

// LoadError reports a broken schema set. It is an authoring or environment
// bug: the operation aborts entirely and is never retried.
type LoadError struct {
	// Document is the name of the document involved.
	Document string

	// Path locates the offending node inside the document, when known,
	// as a slash-separated trail such as "schema/properties/clusters".
	Path string

	// Reason classifies the failure.
	Reason LoadReason

	// Message is the human-readable description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// NewLoadError creates a load error for the given document.
func NewLoadError(document string, reason LoadReason, message string, err error) *LoadError {
	return &LoadError{
		Document: document,
		Reason:   reason,
		Message:  message,
		Err:      err,
	}
}

// WithPath adds the offending node's location to the error.
func (e *LoadError) WithPath(path string) *LoadError {
	e.Path = path
	return e
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Reason, e.Message)
	switch {
	case e.Document != "" && e.Path != "":
		fmt.Fprintf(&b, " (document=%s, path=%s)", e.Document, e.Path)
	case e.Document != "":
		fmt.Fprintf(&b, " (document=%s)", e.Document)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %s", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain inspection.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is. Two load errors match
// when they share a reason.
func (e *LoadError) Is(target error) bool {
	t, ok := target.(*LoadError)
	if !ok {
		return false
	}
	return e.Reason == t.Reason
}

// ResolutionReason classifies reference-resolution failures.
type ResolutionReason string

const (
	// ReasonCyclicReference indicates a reference chain that revisits a
	// target already on its own resolution stack.
	ReasonCyclicReference ResolutionReason = "cyclic_reference"

	// ReasonUnresolvableDocument indicates a reference into a document
	// the store does not hold.
	ReasonUnresolvableDocument ResolutionReason = "unresolvable_document"

	// ReasonUnresolvableFragment indicates a reference to a fragment
	// missing from its target document.
	ReasonUnresolvableFragment ResolutionReason = "unresolvable_fragment"
)

// ResolutionError reports a reference that cannot be followed. Like
// LoadError it aborts the whole operation: a schema set with broken
// references produces no partial validation report.
type ResolutionError struct {
	// Ref is the reference that failed.
	Ref Ref

	// Document is the document the reference was followed from.
	Document string

	// Reason classifies the failure.
	Reason ResolutionReason

	// Chain lists the targets visited, in order, ending with the revisited
	// target. Set only for cyclic references.
	Chain []string

	// Message is the human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.Reason == ReasonCyclicReference {
		return fmt.Sprintf("[%s] %s: %s", e.Reason, e.Message, strings.Join(e.Chain, " -> "))
	}
	return fmt.Sprintf("[%s] %s (reference=%s, from document=%s)", e.Reason, e.Message, e.Ref.String(), e.Document)
}

// Is implements error equality checking for errors.Is. Two resolution errors
// match when they share a reason.
func (e *ResolutionError) Is(target error) bool {
	t, ok := target.(*ResolutionError)
	if !ok {
		return false
	}
	return e.Reason == t.Reason
}

// IsMalformedSchema returns true if the error is a malformed-schema load error.
func IsMalformedSchema(err error) bool {
	return loadReason(err) == ReasonMalformedSchema
}

// IsUnknownDocument returns true if the error is an unknown-document load error.
func IsUnknownDocument(err error) bool {
	return loadReason(err) == ReasonUnknownDocument
}

// IsDanglingReference returns true if the error is a dangling-reference load error.
func IsDanglingReference(err error) bool {
	return loadReason(err) == ReasonDanglingReference
}

// IsUnknownFormat returns true if the error is an unknown-format load error.
func IsUnknownFormat(err error) bool {
	return loadReason(err) == ReasonUnknownFormat
}

// IsCyclicReference returns true if the error is a cyclic-reference
// resolution error.
func IsCyclicReference(err error) bool {
	var e *ResolutionError
	if errors.As(err, &e) {
		return e.Reason == ReasonCyclicReference
	}
	return false
}

// loadReason extracts the reason from a load error anywhere in err's chain.
func loadReason(err error) LoadReason {
	var e *LoadError
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
