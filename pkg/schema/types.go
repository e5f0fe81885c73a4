package schema

import (
	"fmt"
	"strings"
)

// Kind identifies the primitive shape a schema node constrains an instance to.
type Kind string

const (
	// KindObject matches string-keyed mappings.
	KindObject Kind = "object"

	// KindArray matches ordered sequences.
	KindArray Kind = "array"

	// KindString matches strings.
	KindString Kind = "string"

	// KindNumber matches any numeric value, integral or not.
	KindNumber Kind = "number"

	// KindInteger matches integral numeric values. A float with a zero
	// fractional part counts as integral.
	KindInteger Kind = "integer"

	// KindBoolean matches booleans.
	KindBoolean Kind = "boolean"
)

// knownKinds maps every accepted type keyword to its Kind.
var knownKinds = map[string]Kind{
	"object":  KindObject,
	"array":   KindArray,
	"string":  KindString,
	"number":  KindNumber,
	"integer": KindInteger,
	"boolean": KindBoolean,
}

// Ref is an unresolved pointer from one schema location to another, possibly
// in a different document. Refs are stored as written and resolved on demand
// by the store.
type Ref struct {
	// Document is the target document name. Empty means the document the
	// reference appears in.
	Document string

	// Fragment addresses a location inside the target document: empty for
	// the document's root schema, "definitions/<name>" or the bare
	// "<name>" shorthand for a named definition. A leading slash is
	// accepted and ignored.
	Fragment string
}

// ParseRef parses a reference string of the form "document#fragment" or
// "#fragment" for same-document references.
func ParseRef(s string) (*Ref, error) {
	i := strings.Index(s, "#")
	if i < 0 {
		return nil, fmt.Errorf("reference %q must contain '#'", s)
	}
	doc, frag := s[:i], s[i+1:]
	if doc == "" && frag == "" {
		return nil, fmt.Errorf("reference %q is empty", s)
	}
	if strings.Contains(frag, "#") {
		return nil, fmt.Errorf("reference %q contains more than one '#'", s)
	}
	return &Ref{Document: doc, Fragment: frag}, nil
}

// String renders the reference in its source form.
func (r *Ref) String() string {
	return r.Document + "#" + r.Fragment
}

// Node is a single schema tree node. A node either carries a reference (Ref
// set, every other field zero) or any combination of constraints; a node with
// several constraint fields set applies all of them to the same instance
// value. A node with no fields set accepts every instance.
type Node struct {
	// Ref, when set, makes this node a reference to another node.
	Ref *Ref

	// Type constrains the instance's primitive shape. Empty means no type
	// constraint.
	Type Kind

	// Object constrains mapping instances.
	Object *ObjectShape

	// Array constrains sequence instances.
	Array *ArrayShape

	// Enum restricts the instance to one of the listed literal values.
	// Nil means no enum constraint.
	Enum []any

	// Bound restricts numeric instances.
	Bound *Bound

	// Format names a registered string-format checker the instance must
	// satisfy. Empty means no format constraint.
	Format string
}

// ObjectShape constrains the keys of a mapping instance.
type ObjectShape struct {
	// Properties maps property names to the schema for their values.
	Properties map[string]*Node

	// Required lists property names that must be present, in schema order.
	// A required name absent from Properties is still checked for
	// presence; its value is accepted without further validation.
	Required []string

	// AdditionalAllowed reports whether keys outside Properties are
	// permitted. Nil means permitted: strictness is opt-in per schema.
	AdditionalAllowed *bool

	// AdditionalSchema, when set, validates the values of keys outside
	// Properties instead of rejecting or ignoring them.
	AdditionalSchema *Node
}

// IsRequired reports whether name is listed in the shape's required set.
func (s *ObjectShape) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// ArrayShape constrains a sequence instance.
type ArrayShape struct {
	// Items is the schema every element must satisfy. Nil leaves elements
	// unconstrained.
	Items *Node

	// MinItems is the minimum element count. Nil means no lower bound.
	MinItems *int

	// MaxItems is the maximum element count. Nil means no upper bound.
	MaxItems *int
}

// Bound constrains a numeric instance value to minimum <= value <= maximum.
//
// A minimum of +Inf is not "unconstrained": it is satisfied only by a value
// that is itself +Inf, so no finite input can pass. Schema authors use it to
// mark a field as reserved. See the package documentation.
type Bound struct {
	// Minimum is the inclusive lower bound. Nil means unconstrained below.
	Minimum *float64

	// Maximum is the inclusive upper bound. Nil means unconstrained above.
	Maximum *float64
}

// Document is a named, immutable tree of schema nodes. Documents are built by
// Load and never mutated afterwards, so they are safe to share across
// concurrent validations.
type Document struct {
	// Name is the store key the document was loaded under.
	Name string

	// Root is the document's root schema. Nil when the document only
	// carries definitions.
	Root *Node

	// Definitions holds the named fragments other schemas reach through
	// references.
	Definitions map[string]*Node
}
