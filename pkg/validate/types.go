package validate

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ViolationKind classifies a single nonconformance.
type ViolationKind string

const (
	// KindTypeMismatch reports an instance whose primitive shape differs
	// from what the schema demands. A type mismatch stops descent into
	// that subtree and suppresses the node's remaining checks.
	KindTypeMismatch ViolationKind = "type_mismatch"

	// KindMissingRequired reports a required property absent from a
	// mapping instance.
	KindMissingRequired ViolationKind = "missing_required"

	// KindUnexpectedProperty reports a mapping key a closed object shape
	// does not declare.
	KindUnexpectedProperty ViolationKind = "unexpected_property"

	// KindEnumViolation reports a value outside an enum's allowed set.
	KindEnumViolation ViolationKind = "enum_violation"

	// KindBoundViolation reports a numeric value outside its declared
	// bounds.
	KindBoundViolation ViolationKind = "bound_violation"

	// KindArityViolation reports a sequence whose length falls outside its
	// declared element-count bounds.
	KindArityViolation ViolationKind = "arity_violation"

	// KindFormatViolation reports a string that fails its format checker.
	KindFormatViolation ViolationKind = "format_violation"
)

// kindPriority fixes the order violations at the same path sort in:
// structural problems first, refinements after.
var kindPriority = map[ViolationKind]int{
	KindTypeMismatch:       0,
	KindMissingRequired:    1,
	KindUnexpectedProperty: 2,
	KindEnumViolation:      3,
	KindBoundViolation:     4,
	KindArityViolation:     5,
	KindFormatViolation:    6,
}

// Step is a single component of a Path: a property name or a sequence index.
type Step struct {
	// Key is the property name. Meaningful only when IsIndex is false.
	Key string

	// Index is the position in a sequence. Meaningful only when IsIndex
	// is true.
	Index int

	// IsIndex distinguishes index steps from key steps.
	IsIndex bool
}

// KeyStep returns a property-name step.
func KeyStep(name string) Step {
	return Step{Key: name}
}

// IndexStep returns a sequence-index step.
func IndexStep(i int) Step {
	return Step{Index: i, IsIndex: true}
}

// compare orders steps: key steps before index steps, key steps by name,
// index steps by position.
func (s Step) compare(t Step) int {
	if s.IsIndex != t.IsIndex {
		if s.IsIndex {
			return 1
		}
		return -1
	}
	if s.IsIndex {
		switch {
		case s.Index < t.Index:
			return -1
		case s.Index > t.Index:
			return 1
		}
		return 0
	}
	return strings.Compare(s.Key, t.Key)
}

// Path locates a value in the instance as the ordered steps from the
// document root. The root is the empty path. Paths stay structured so tests
// can assert on steps; String renders them for humans.
type Path []Step

// Key returns a copy of the path extended by a property-name step.
func (p Path) Key(name string) Path {
	child := make(Path, len(p), len(p)+1)
	copy(child, p)
	return append(child, KeyStep(name))
}

// Index returns a copy of the path extended by a sequence-index step.
func (p Path) Index(i int) Path {
	child := make(Path, len(p), len(p)+1)
	copy(child, p)
	return append(child, IndexStep(i))
}

// Compare orders paths lexicographically over their steps. A path sorts
// before any of its extensions.
func (p Path) Compare(q Path) int {
	for i := 0; i < len(p) && i < len(q); i++ {
		if c := p[i].compare(q[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(p) < len(q):
		return -1
	case len(p) > len(q):
		return 1
	}
	return 0
}

// String renders the path in dotted and bracketed form, such as
// "clusters.norcal-prod.aws_region" or "batches[2]". The root path renders
// as "(root)".
func (p Path) String() string {
	if len(p) == 0 {
		return "(root)"
	}
	var b strings.Builder
	for i, s := range p {
		if s.IsIndex {
			fmt.Fprintf(&b, "[%d]", s.Index)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Key)
	}
	return b.String()
}

// MarshalJSON renders the path as its string form.
func (p Path) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// Violation is one reported nonconformance between an instance and its
// schema. Violations are immutable value objects: the expected output of a
// successful validation run, not errors.
type Violation struct {
	// Path locates the nonconforming value from the document root.
	Path Path `json:"path"`

	// Kind classifies the violation.
	Kind ViolationKind `json:"kind"`

	// Message is the human-readable detail.
	Message string `json:"message"`

	// Expected describes the violated constraint, when one is useful.
	Expected string `json:"expected,omitempty"`
}

// Report is the ordered violation list produced by one validation call. An
// empty report means the instance conforms.
type Report []Violation

// Valid reports whether the report holds no violations.
func (r Report) Valid() bool {
	return len(r) == 0
}

// Counts returns the number of violations of each kind.
func (r Report) Counts() map[ViolationKind]int {
	if len(r) == 0 {
		return nil
	}
	counts := make(map[ViolationKind]int)
	for _, v := range r {
		counts[v.Kind]++
	}
	return counts
}

// String renders the report one violation per line.
func (r Report) String() string {
	var b strings.Builder
	for _, v := range r {
		b.WriteString(v.Path.String())
		b.WriteString(": ")
		b.WriteString(v.Message)
		if v.Expected != "" {
			fmt.Fprintf(&b, " (expected %s)", v.Expected)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// sortReport orders violations by path, then by kind priority for equal
// paths. The sort is stable and the walk emits in deterministic order, so
// identical inputs always produce identical reports.
func sortReport(r Report) {
	sort.SliceStable(r, func(i, j int) bool {
		if c := r[i].Path.Compare(r[j].Path); c != 0 {
			return c < 0
		}
		return kindPriority[r[i].Kind] < kindPriority[r[j].Kind]
	})
}
