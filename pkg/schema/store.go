package schema

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/confgate/confgate/pkg/formats"
)

// Store holds a loaded set of schema documents indexed by name. A store is
// immutable once Load returns and may be shared by any number of concurrent
// validations; the only shared mutable structure is the resolution memo,
// which is write-once per key.
type Store struct {
	docs    map[string]*Document
	formats *formats.Registry

	// memo caches resolution results per (document, fragment) pair for the
	// lifetime of the store. See Resolve.
	memo sync.Map
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	formats  *formats.Registry
	builtins bool
}

// WithFormats sets the format-checker registry format constraints are
// verified against at load time and checked against during validation.
// Load defaults to formats.Default().
func WithFormats(reg *formats.Registry) Option {
	return func(o *loadOptions) {
		o.formats = reg
	}
}

// WithoutBuiltins disables automatic registration of the builtin
// definitions document.
func WithoutBuiltins() Option {
	return func(o *loadOptions) {
		o.builtins = false
	}
}

// Load parses the supplied documents, keyed by document name, and builds a
// store. References are kept unresolved but every reference target is
// verified to exist, so a dangling reference fails here rather than in the
// middle of a validation. Unknown format names fail here too: format
// availability is a property of the engine, not of any one document.
//
// The builtin definitions document is registered automatically unless the
// caller supplies a document named "definitions" or passes WithoutBuiltins.
func Load(documents map[string][]byte, opts ...Option) (*Store, error) {
	o := loadOptions{formats: formats.Default(), builtins: true}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{
		docs:    make(map[string]*Document, len(documents)+1),
		formats: o.formats,
	}

	names := make([]string, 0, len(documents))
	for name := range documents {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if name == "" {
			return nil, NewLoadError(name, ReasonMalformedSchema, "document name must not be empty", nil)
		}
		if strings.Contains(name, "#") {
			return nil, NewLoadError(name, ReasonMalformedSchema, "document name must not contain '#'", nil)
		}
		doc, err := parseDocument(name, documents[name])
		if err != nil {
			return nil, err
		}
		s.docs[name] = doc
	}

	if o.builtins {
		if _, ok := s.docs[BuiltinDefinitionsDocument]; !ok {
			doc, err := parseDocument(BuiltinDefinitionsDocument, []byte(builtinDefinitions))
			if err != nil {
				return nil, fmt.Errorf("builtin definitions document: %w", err)
			}
			s.docs[BuiltinDefinitionsDocument] = doc
		}
	}

	if len(s.docs) == 0 {
		return nil, NewLoadError("", ReasonMalformedSchema, "no documents supplied", nil)
	}

	if err := s.verify(); err != nil {
		return nil, err
	}
	return s, nil
}

// Document returns the named document, or an unknown-document load error.
func (s *Store) Document(name string) (*Document, error) {
	doc, ok := s.docs[name]
	if !ok {
		return nil, NewLoadError(name, ReasonUnknownDocument,
			fmt.Sprintf("no document named %q is loaded", name), nil)
	}
	return doc, nil
}

// Documents returns the names of all loaded documents in sorted order.
func (s *Store) Documents() []string {
	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Formats returns the format-checker registry the store was loaded with.
func (s *Store) Formats() *formats.Registry {
	return s.formats
}

// verify walks every node of every document checking that each reference
// target exists (single step, chains are followed lazily at resolution time)
// and that each format constraint names a registered checker.
func (s *Store) verify() error {
	for _, name := range s.Documents() {
		doc := s.docs[name]
		if doc.Root != nil {
			if err := s.verifyNode(doc, doc.Root, "schema"); err != nil {
				return err
			}
		}
		for _, defName := range sortedNodeKeys(doc.Definitions) {
			if err := s.verifyNode(doc, doc.Definitions[defName], "definitions/"+defName); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) verifyNode(doc *Document, n *Node, path string) error {
	if n.Ref != nil {
		key := s.refTarget(n.Ref, doc.Name)
		if _, _, err := s.lookup(key); err != nil {
			return NewLoadError(doc.Name, ReasonDanglingReference,
				fmt.Sprintf("reference %q has no target", n.Ref.String()), err).WithPath(path)
		}
		return nil
	}
	if n.Format != "" && !s.formats.Has(n.Format) {
		return NewLoadError(doc.Name, ReasonUnknownFormat,
			fmt.Sprintf("no checker registered for format %q", n.Format), nil).WithPath(path)
	}
	if n.Object != nil {
		for _, name := range sortedNodeKeys(n.Object.Properties) {
			if err := s.verifyNode(doc, n.Object.Properties[name], joinPath(path, "properties/"+name)); err != nil {
				return err
			}
		}
		if n.Object.AdditionalSchema != nil {
			if err := s.verifyNode(doc, n.Object.AdditionalSchema, joinPath(path, "additionalProperties")); err != nil {
				return err
			}
		}
	}
	if n.Array != nil && n.Array.Items != nil {
		if err := s.verifyNode(doc, n.Array.Items, joinPath(path, "items")); err != nil {
			return err
		}
	}
	return nil
}

func sortedNodeKeys(m map[string]*Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
