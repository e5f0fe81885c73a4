package schema

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// parseDocument parses one raw schema document. Documents carry a "schema"
// root, a "definitions" mapping, or both; any other top-level key is a
// malformed-schema error. References inside the tree are kept unresolved.
func parseDocument(name string, data []byte) (*Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, NewLoadError(name, ReasonMalformedSchema, "document is not valid YAML", err)
	}
	if raw == nil {
		return nil, NewLoadError(name, ReasonMalformedSchema, "document is empty", nil)
	}
	m, ok := asStringMap(raw)
	if !ok {
		return nil, NewLoadError(name, ReasonMalformedSchema, "document must be a mapping", nil)
	}

	doc := &Document{Name: name}
	for _, key := range sortedKeys(m) {
		switch key {
		case "schema":
			root, err := parseNode(name, "schema", m[key])
			if err != nil {
				return nil, err
			}
			doc.Root = root
		case "definitions":
			defs, err := parseDefinitions(name, m[key])
			if err != nil {
				return nil, err
			}
			doc.Definitions = defs
		default:
			return nil, NewLoadError(name, ReasonMalformedSchema,
				fmt.Sprintf("unsupported top-level key %q", key), nil)
		}
	}
	if doc.Root == nil && len(doc.Definitions) == 0 {
		return nil, NewLoadError(name, ReasonMalformedSchema,
			"document defines neither a schema nor definitions", nil)
	}
	return doc, nil
}

// parseDefinitions parses the "definitions" mapping of a document.
func parseDefinitions(docName string, v any) (map[string]*Node, error) {
	dm, ok := asStringMap(v)
	if !ok {
		return nil, NewLoadError(docName, ReasonMalformedSchema,
			`"definitions" must be a mapping`, nil).WithPath("definitions")
	}
	defs := make(map[string]*Node, len(dm))
	for _, defName := range sortedKeys(dm) {
		if defName == "" || strings.ContainsAny(defName, "/#") {
			return nil, NewLoadError(docName, ReasonMalformedSchema,
				fmt.Sprintf("invalid definition name %q", defName), nil).WithPath("definitions")
		}
		node, err := parseNode(docName, "definitions/"+defName, dm[defName])
		if err != nil {
			return nil, err
		}
		defs[defName] = node
	}
	return defs, nil
}

// parseNode parses a single schema node. Every node is a mapping: either a
// lone "$ref" or any combination of the supported constraint keywords. An
// unknown keyword is a malformed-schema error, never silently ignored.
func parseNode(docName, path string, v any) (*Node, error) {
	m, ok := asStringMap(v)
	if !ok {
		return nil, NewLoadError(docName, ReasonMalformedSchema,
			"schema node must be a mapping", nil).WithPath(path)
	}

	if rv, present := m["$ref"]; present {
		if len(m) != 1 {
			return nil, NewLoadError(docName, ReasonMalformedSchema,
				`"$ref" must be the only key on a reference node`, nil).WithPath(path)
		}
		s, ok := rv.(string)
		if !ok {
			return nil, NewLoadError(docName, ReasonMalformedSchema,
				`"$ref" must be a string`, nil).WithPath(path)
		}
		ref, err := ParseRef(s)
		if err != nil {
			return nil, NewLoadError(docName, ReasonMalformedSchema,
				"invalid reference", err).WithPath(path)
		}
		return &Node{Ref: ref}, nil
	}

	var (
		node     Node
		obj      ObjectShape
		arr      ArrayShape
		bound    Bound
		hasObj   bool
		hasArr   bool
		hasBound bool
	)
	for _, key := range sortedKeys(m) {
		val := m[key]
		switch key {
		case "type":
			s, ok := val.(string)
			if !ok {
				return nil, NewLoadError(docName, ReasonMalformedSchema,
					`"type" must be a string`, nil).WithPath(path)
			}
			kind, ok := knownKinds[s]
			if !ok {
				return nil, NewLoadError(docName, ReasonMalformedSchema,
					fmt.Sprintf("unknown type %q", s), nil).WithPath(path)
			}
			node.Type = kind

		case "properties":
			pm, ok := asStringMap(val)
			if !ok {
				return nil, NewLoadError(docName, ReasonMalformedSchema,
					`"properties" must be a mapping`, nil).WithPath(path)
			}
			props := make(map[string]*Node, len(pm))
			for _, name := range sortedKeys(pm) {
				child, err := parseNode(docName, joinPath(path, "properties/"+name), pm[name])
				if err != nil {
					return nil, err
				}
				props[name] = child
			}
			obj.Properties = props
			hasObj = true

		case "required":
			list, ok := val.([]any)
			if !ok {
				return nil, NewLoadError(docName, ReasonMalformedSchema,
					`"required" must be a sequence of property names`, nil).WithPath(path)
			}
			seen := make(map[string]bool, len(list))
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					return nil, NewLoadError(docName, ReasonMalformedSchema,
						`"required" entries must be strings`, nil).WithPath(path)
				}
				if seen[s] {
					return nil, NewLoadError(docName, ReasonMalformedSchema,
						fmt.Sprintf("duplicate required property %q", s), nil).WithPath(path)
				}
				seen[s] = true
				obj.Required = append(obj.Required, s)
			}
			hasObj = true

		case "additionalProperties":
			if b, ok := val.(bool); ok {
				allowed := b
				obj.AdditionalAllowed = &allowed
			} else {
				child, err := parseNode(docName, joinPath(path, "additionalProperties"), val)
				if err != nil {
					return nil, err
				}
				obj.AdditionalSchema = child
			}
			hasObj = true

		case "items":
			child, err := parseNode(docName, joinPath(path, "items"), val)
			if err != nil {
				return nil, err
			}
			arr.Items = child
			hasArr = true

		case "minItems", "maxItems":
			n, ok := toInt(val)
			if !ok || n < 0 {
				return nil, NewLoadError(docName, ReasonMalformedSchema,
					fmt.Sprintf("%q must be a non-negative integer", key), nil).WithPath(path)
			}
			if key == "minItems" {
				arr.MinItems = &n
			} else {
				arr.MaxItems = &n
			}
			hasArr = true

		case "enum":
			list, ok := val.([]any)
			if !ok || len(list) == 0 {
				return nil, NewLoadError(docName, ReasonMalformedSchema,
					`"enum" must be a non-empty sequence`, nil).WithPath(path)
			}
			for _, item := range list {
				if !isScalarLiteral(item) {
					return nil, NewLoadError(docName, ReasonMalformedSchema,
						`"enum" members must be scalar literals`, nil).WithPath(path)
				}
			}
			node.Enum = list

		case "minimum", "maximum":
			f, ok := toNumber(val)
			if !ok {
				return nil, NewLoadError(docName, ReasonMalformedSchema,
					fmt.Sprintf("%q must be a number", key), nil).WithPath(path)
			}
			if key == "minimum" {
				bound.Minimum = &f
			} else {
				bound.Maximum = &f
			}
			hasBound = true

		case "format":
			s, ok := val.(string)
			if !ok || s == "" {
				return nil, NewLoadError(docName, ReasonMalformedSchema,
					`"format" must be a non-empty string`, nil).WithPath(path)
			}
			node.Format = s

		default:
			return nil, NewLoadError(docName, ReasonMalformedSchema,
				fmt.Sprintf("unsupported keyword %q", key), nil).WithPath(path)
		}
	}

	if hasObj {
		node.Object = &obj
	}
	if hasArr {
		if arr.MinItems != nil && arr.MaxItems != nil && *arr.MinItems > *arr.MaxItems {
			return nil, NewLoadError(docName, ReasonMalformedSchema,
				`"minItems" exceeds "maxItems"`, nil).WithPath(path)
		}
		node.Array = &arr
	}
	if hasBound {
		if bound.Minimum != nil && bound.Maximum != nil && *bound.Minimum > *bound.Maximum {
			return nil, NewLoadError(docName, ReasonMalformedSchema,
				`"minimum" exceeds "maximum"`, nil).WithPath(path)
		}
		node.Bound = &bound
	}
	return &node, nil
}

// asStringMap normalizes YAML mappings to string-keyed maps. Mappings with
// non-string keys are rejected.
func asStringMap(v any) (map[string]any, bool) {
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

// sortedKeys returns the map's keys in sorted order so that parse errors and
// traversals are deterministic.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// toNumber converts any YAML or JSON numeric representation to a float64.
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

// toInt converts an integral YAML value to an int.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	}
	return 0, false
}

// isScalarLiteral reports whether v is a scalar usable as an enum member.
func isScalarLiteral(v any) bool {
	switch v.(type) {
	case nil, string, bool:
		return true
	}
	_, ok := toNumber(v)
	return ok
}

func joinPath(base, seg string) string {
	if base == "" {
		return seg
	}
	return base + "/" + seg
}
