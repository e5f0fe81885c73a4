package schema

import (
	"fmt"
	"strings"
)

// refKey identifies a resolution target: a document name plus a canonical
// fragment. It is the memoization and cycle-detection key.
type refKey struct {
	doc      string
	fragment string
}

func (k refKey) String() string {
	return k.doc + "#" + k.fragment
}

// resolved is a memoized resolution result: the concrete node a chain ends
// at, together with the document that owns it.
type resolved struct {
	node *Node
	doc  string
}

// Resolve follows node's reference chain, if any, and returns the concrete
// node it ends at together with the name of the document owning that node.
// That owning document is the one references inside the returned node's
// subtree are relative to. A non-reference node is returned unchanged.
//
// Resolution results are memoized per (document, fragment) pair for the
// lifetime of the store. Resolution is deterministic and has no side effects,
// so concurrent resolutions of the same key are harmless: the first writer
// wins and later writers produce an identical value.
//
// A chain that revisits a target already on its own stack fails with a
// cyclic-reference ResolutionError carrying the visited chain.
func (s *Store) Resolve(node *Node, currentDocument string) (*Node, string, error) {
	if node == nil {
		return nil, "", fmt.Errorf("resolve: nil schema node")
	}
	if node.Ref == nil {
		return node, currentDocument, nil
	}

	var (
		pending []refKey
		chain   []string
	)
	onStack := make(map[refKey]bool)

	cur, curDoc := node, currentDocument
	for cur.Ref != nil {
		key := s.refTarget(cur.Ref, curDoc)

		if hit, ok := s.memo.Load(key); ok {
			r := hit.(*resolved)
			s.memoize(pending, r)
			return r.node, r.doc, nil
		}

		if onStack[key] {
			chain = append(chain, key.String())
			return nil, "", &ResolutionError{
				Ref:      *cur.Ref,
				Document: curDoc,
				Reason:   ReasonCyclicReference,
				Chain:    chain,
				Message:  "reference cycle detected",
			}
		}
		onStack[key] = true
		chain = append(chain, key.String())
		pending = append(pending, key)

		next, nextDoc, err := s.lookup(key)
		if err != nil {
			return nil, "", err
		}
		cur, curDoc = next, nextDoc
	}

	s.memoize(pending, &resolved{node: cur, doc: curDoc})
	return cur, curDoc, nil
}

// memoize records every key on a resolution chain as resolving to r.
func (s *Store) memoize(keys []refKey, r *resolved) {
	for _, key := range keys {
		s.memo.LoadOrStore(key, r)
	}
}

// refTarget normalizes a reference against the document it appears in.
func (s *Store) refTarget(r *Ref, currentDocument string) refKey {
	doc := r.Document
	if doc == "" {
		doc = currentDocument
	}
	return refKey{doc: doc, fragment: canonicalFragment(r.Fragment)}
}

// canonicalFragment maps the accepted fragment spellings onto one canonical
// form: "" for the document root, "definitions/<name>" for a named
// definition. "#posint", "#/posint", "#definitions/posint" and
// "#/definitions/posint" all address the same target.
func canonicalFragment(fragment string) string {
	f := strings.TrimPrefix(fragment, "/")
	if f == "" {
		return ""
	}
	if strings.HasPrefix(f, "definitions/") {
		return f
	}
	return "definitions/" + f
}

// lookup returns the node a key addresses. It takes exactly one step: a
// reference node at the target is returned as is, for the caller to follow.
func (s *Store) lookup(key refKey) (*Node, string, error) {
	doc, ok := s.docs[key.doc]
	if !ok {
		return nil, "", &ResolutionError{
			Ref:      Ref{Document: key.doc, Fragment: key.fragment},
			Document: key.doc,
			Reason:   ReasonUnresolvableDocument,
			Message:  fmt.Sprintf("document %q is not loaded", key.doc),
		}
	}
	if key.fragment == "" {
		if doc.Root == nil {
			return nil, "", &ResolutionError{
				Ref:      Ref{Document: key.doc},
				Document: key.doc,
				Reason:   ReasonUnresolvableFragment,
				Message:  fmt.Sprintf("document %q has no root schema", key.doc),
			}
		}
		return doc.Root, key.doc, nil
	}

	name := strings.TrimPrefix(key.fragment, "definitions/")
	if name == "" || strings.Contains(name, "/") {
		return nil, "", &ResolutionError{
			Ref:      Ref{Document: key.doc, Fragment: key.fragment},
			Document: key.doc,
			Reason:   ReasonUnresolvableFragment,
			Message:  fmt.Sprintf("fragment %q does not address a definition", key.fragment),
		}
	}
	node, ok := doc.Definitions[name]
	if !ok {
		return nil, "", &ResolutionError{
			Ref:      Ref{Document: key.doc, Fragment: key.fragment},
			Document: key.doc,
			Reason:   ReasonUnresolvableFragment,
			Message:  fmt.Sprintf("document %q has no definition %q", key.doc, name),
		}
	}
	return node, key.doc, nil
}
