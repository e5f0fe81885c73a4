package validate

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/confgate/confgate/pkg/schema"
)

// Validator walks configuration instances against schema trees, resolving
// references through its store as it descends. A validator holds no per-call
// state and only reads from the store, so one validator may serve any number
// of concurrent validations.
type Validator struct {
	store         *schema.Store
	closedObjects bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithClosedObjects makes object shapes that do not declare
// additionalProperties behave as if they declared it false. The engine
// default is permissive, mirroring the schemas this vocabulary grew out of:
// strictness is opt-in per shape. This option is for callers who want the
// closed-world reading across a whole schema set.
func WithClosedObjects() Option {
	return func(v *Validator) {
		v.closedObjects = true
	}
}

// New creates a validator over a loaded store.
func New(store *schema.Store, opts ...Option) *Validator {
	v := &Validator{store: store}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateDocument validates an instance against the root schema of the
// named document.
func (v *Validator) ValidateDocument(instance any, document string) (Report, error) {
	doc, err := v.store.Document(document)
	if err != nil {
		return nil, err
	}
	if doc.Root == nil {
		return nil, fmt.Errorf("document %q has no root schema", document)
	}
	return v.Validate(instance, doc.Root, document)
}

// Validate validates an instance against a schema node. The document name
// anchors same-document references inside the node's subtree.
//
// A nonconforming instance is not an error: findings come back in the
// report, sorted by path and kind. The error return is reserved for
// schema-integrity problems discovered mid-walk (unresolvable or cyclic
// references), which abort the call with no partial report.
func (v *Validator) Validate(instance any, root *schema.Node, document string) (Report, error) {
	var report Report
	if err := v.walk(instance, root, document, nil, &report); err != nil {
		return nil, err
	}
	sortReport(report)
	return report, nil
}

// walk applies one schema node to one instance subtree. Every constraint the
// node carries is checked against the same value and all findings are
// reported, except that the first type mismatch on a node suppresses its
// remaining checks: nothing can be meaningfully checked against the wrong
// shape.
func (v *Validator) walk(instance any, node *schema.Node, document string, path Path, report *Report) error {
	node, document, err := v.store.Resolve(node, document)
	if err != nil {
		return err
	}

	if node.Type != "" && !matchesKind(node.Type, instance) {
		*report = append(*report, typeMismatch(path, node.Type, instance))
		return nil
	}

	if node.Object != nil {
		obj, ok := asMapping(instance)
		if !ok {
			*report = append(*report, typeMismatch(path, schema.KindObject, instance))
			return nil
		}
		if err := v.walkObject(obj, node.Object, document, path, report); err != nil {
			return err
		}
	}

	if node.Array != nil {
		seq, ok := instance.([]any)
		if !ok {
			*report = append(*report, typeMismatch(path, schema.KindArray, instance))
			return nil
		}
		if err := v.walkArray(seq, node.Array, document, path, report); err != nil {
			return err
		}
	}

	if node.Bound != nil {
		f, ok := toNumber(instance)
		if !ok {
			*report = append(*report, typeMismatch(path, schema.KindNumber, instance))
			return nil
		}
		checkBound(f, instance, node.Bound, path, report)
	}

	if node.Enum != nil {
		checkEnum(instance, node.Enum, path, report)
	}

	if node.Format != "" {
		s, ok := instance.(string)
		if !ok {
			*report = append(*report, typeMismatch(path, schema.KindString, instance))
			return nil
		}
		if !v.store.Formats().Check(node.Format, s) {
			*report = append(*report, Violation{
				Path:     path,
				Kind:     KindFormatViolation,
				Message:  fmt.Sprintf("value %q is not a valid %s", s, node.Format),
				Expected: node.Format,
			})
		}
	}

	return nil
}

func (v *Validator) walkObject(obj map[string]any, shape *schema.ObjectShape, document string, path Path, report *Report) error {
	for _, name := range shape.Required {
		if _, present := obj[name]; !present {
			*report = append(*report, Violation{
				Path:    path.Key(name),
				Kind:    KindMissingRequired,
				Message: fmt.Sprintf("required property %q is missing", name),
			})
		}
	}

	for _, key := range sortedInstanceKeys(obj) {
		child := path.Key(key)
		if prop, ok := shape.Properties[key]; ok {
			if err := v.walk(obj[key], prop, document, child, report); err != nil {
				return err
			}
			continue
		}
		// A required name absent from properties is presence-checked only:
		// there is no schema to recurse into.
		if shape.IsRequired(key) {
			continue
		}
		switch {
		case shape.AdditionalSchema != nil:
			if err := v.walk(obj[key], shape.AdditionalSchema, document, child, report); err != nil {
				return err
			}
		case rejectsAdditional(shape, v.closedObjects):
			*report = append(*report, Violation{
				Path:    child,
				Kind:    KindUnexpectedProperty,
				Message: fmt.Sprintf("property %q is not allowed", key),
			})
		}
	}
	return nil
}

func (v *Validator) walkArray(seq []any, shape *schema.ArrayShape, document string, path Path, report *Report) error {
	if shape.MinItems != nil && len(seq) < *shape.MinItems {
		*report = append(*report, Violation{
			Path:     path,
			Kind:     KindArityViolation,
			Message:  fmt.Sprintf("sequence has %d items, wants at least %d", len(seq), *shape.MinItems),
			Expected: fmt.Sprintf("minItems %d", *shape.MinItems),
		})
	}
	if shape.MaxItems != nil && len(seq) > *shape.MaxItems {
		*report = append(*report, Violation{
			Path:     path,
			Kind:     KindArityViolation,
			Message:  fmt.Sprintf("sequence has %d items, wants at most %d", len(seq), *shape.MaxItems),
			Expected: fmt.Sprintf("maxItems %d", *shape.MaxItems),
		})
	}
	if shape.Items != nil {
		for i, elem := range seq {
			if err := v.walk(elem, shape.Items, document, path.Index(i), report); err != nil {
				return err
			}
		}
	}
	return nil
}

// rejectsAdditional reports whether a shape rejects undeclared keys: either
// it declares additionalProperties false, or it declares nothing and the
// validator was built with WithClosedObjects.
func rejectsAdditional(shape *schema.ObjectShape, closedDefault bool) bool {
	if shape.AdditionalAllowed != nil {
		return !*shape.AdditionalAllowed
	}
	return closedDefault
}

// checkBound checks minimum <= f <= maximum. A minimum of positive infinity
// is the reserved-field sentinel: only an instance value of positive
// infinity satisfies it, which the plain comparison already encodes. The
// message calls the case out so nobody mistakes the sentinel for "no
// constraint".
func checkBound(f float64, instance any, b *schema.Bound, path Path, report *Report) {
	if b.Minimum != nil && f < *b.Minimum {
		if math.IsInf(*b.Minimum, 1) {
			*report = append(*report, Violation{
				Path:     path,
				Kind:     KindBoundViolation,
				Message:  fmt.Sprintf("value %s is not accepted: the field is reserved and admits no finite value", formatNumber(instance)),
				Expected: "minimum +Inf (reserved)",
			})
		} else {
			*report = append(*report, Violation{
				Path:     path,
				Kind:     KindBoundViolation,
				Message:  fmt.Sprintf("value %s is below the minimum %s", formatNumber(instance), formatFloat(*b.Minimum)),
				Expected: ">= " + formatFloat(*b.Minimum),
			})
		}
	}
	if b.Maximum != nil && f > *b.Maximum {
		*report = append(*report, Violation{
			Path:     path,
			Kind:     KindBoundViolation,
			Message:  fmt.Sprintf("value %s is above the maximum %s", formatNumber(instance), formatFloat(*b.Maximum)),
			Expected: "<= " + formatFloat(*b.Maximum),
		})
	}
}

// checkEnum checks membership by value: 1 and 1.0 are the same member,
// "low" and "Low" are not.
func checkEnum(instance any, allowed []any, path Path, report *Report) {
	for _, member := range allowed {
		if literalEqual(instance, member) {
			return
		}
	}
	*report = append(*report, Violation{
		Path:     path,
		Kind:     KindEnumViolation,
		Message:  fmt.Sprintf("value %s is not one of the allowed values", formatLiteral(instance)),
		Expected: "one of: " + joinLiterals(allowed),
	})
}

// matchesKind reports whether the instance's primitive shape satisfies kind.
func matchesKind(kind schema.Kind, instance any) bool {
	switch kind {
	case schema.KindObject:
		_, ok := asMapping(instance)
		return ok
	case schema.KindArray:
		_, ok := instance.([]any)
		return ok
	case schema.KindString:
		_, ok := instance.(string)
		return ok
	case schema.KindBoolean:
		_, ok := instance.(bool)
		return ok
	case schema.KindNumber:
		_, ok := toNumber(instance)
		return ok
	case schema.KindInteger:
		return isIntegral(instance)
	}
	return false
}

// isIntegral accepts Go integer types and floats with a zero fractional
// part: YAML's 3 and JSON's 3.0 both conform to an integer schema.
func isIntegral(instance any) bool {
	switch n := instance.(type) {
	case int, int64, uint64:
		return true
	case float64:
		return !math.IsInf(n, 0) && !math.IsNaN(n) && n == math.Trunc(n)
	case float32:
		f := float64(n)
		return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
	}
	return false
}

// literalEqual compares an instance value with an enum member by value, not
// identity. Numbers compare numerically across representations; other
// scalars compare directly. Non-scalar values never equal a literal.
func literalEqual(a, b any) bool {
	af, aNum := toNumber(a)
	bf, bNum := toNumber(b)
	if aNum || bNum {
		return aNum && bNum && af == bf
	}
	if !isComparableScalar(a) || !isComparableScalar(b) {
		return false
	}
	return a == b
}

func isComparableScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool:
		return true
	}
	return false
}

// asMapping normalizes mapping instances to string-keyed maps. YAML decoding
// may produce map[any]any; a mapping with a non-string key is not an object.
func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[s] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

func sortedInstanceKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func typeMismatch(path Path, want schema.Kind, instance any) Violation {
	return Violation{
		Path:     path,
		Kind:     KindTypeMismatch,
		Message:  fmt.Sprintf("expected %s, got %s", want, valueKind(instance)),
		Expected: string(want),
	}
}

// valueKind names the instance's primitive shape for messages.
func valueKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case int, int64, uint64:
		return "integer"
	case float64, float32:
		return "number"
	}
	if _, ok := asMapping(v); ok {
		return "object"
	}
	if _, ok := v.([]any); ok {
		return "array"
	}
	return fmt.Sprintf("%T", v)
}

// formatLiteral renders a scalar for messages, quoting strings so "1" and 1
// stay distinguishable.
func formatLiteral(v any) string {
	switch s := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(s)
	}
	if !isComparableScalar(v) {
		if _, ok := toNumber(v); !ok {
			return valueKind(v)
		}
	}
	return fmt.Sprintf("%v", v)
}

func joinLiterals(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatLiteral(v)
	}
	return strings.Join(parts, ", ")
}

// formatNumber renders a numeric instance in its original representation.
func formatNumber(v any) string {
	return fmt.Sprintf("%v", v)
}

// formatFloat renders a schema bound without float noise: 1 not 1.000000.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
