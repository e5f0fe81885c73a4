package schema

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func mustLoad(t *testing.T, pairs map[string]string) *Store {
	t.Helper()
	store, err := Load(docs(pairs))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return store
}

func TestStore_Resolve_NonReference(t *testing.T) {
	store := mustLoad(t, map[string]string{"app": "schema:\n  type: object"})
	doc, _ := store.Document("app")

	node, owner, err := store.Resolve(doc.Root, "app")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if node != doc.Root {
		t.Error("Expected a non-reference node to come back unchanged")
	}
	if owner != "app" {
		t.Errorf("Expected owning document app, got %q", owner)
	}
}

func TestStore_Resolve_CrossDocumentChain(t *testing.T) {
	store := mustLoad(t, map[string]string{
		"app":    `schema: {$ref: "shared#mid"}`,
		"shared": "definitions:\n  mid:\n    $ref: \"#leaf\"\n  leaf:\n    type: string",
	})
	doc, _ := store.Document("app")

	node, owner, err := store.Resolve(doc.Root, "app")
	if err != nil {
		t.Fatalf("Expected the chain to resolve, got: %v", err)
	}
	if node.Type != KindString {
		t.Errorf("Expected the leaf node, got type %q", node.Type)
	}
	if owner != "shared" {
		t.Errorf("Expected owning document shared, got %q", owner)
	}

	shared, _ := store.Document("shared")
	if node != shared.Definitions["leaf"] {
		t.Error("Expected resolution to land on the exact leaf node")
	}
}

func TestStore_Resolve_FragmentSpellings(t *testing.T) {
	store := mustLoad(t, map[string]string{
		"app": `
schema:
  type: object
  properties:
    a: {$ref: "definitions#posint"}
    b: {$ref: "definitions#/posint"}
    c: {$ref: "definitions#definitions/posint"}
    d: {$ref: "definitions#/definitions/posint"}
`,
	})
	defs, _ := store.Document(BuiltinDefinitionsDocument)
	want := defs.Definitions["posint"]

	doc, _ := store.Document("app")
	for _, key := range []string{"a", "b", "c", "d"} {
		node, _, err := store.Resolve(doc.Root.Object.Properties[key], "app")
		if err != nil {
			t.Fatalf("property %s: %v", key, err)
		}
		if node != want {
			t.Errorf("property %s: expected every spelling to reach the same definition", key)
		}
	}
}

func TestStore_Resolve_Cycle(t *testing.T) {
	store := mustLoad(t, map[string]string{
		"defs": "definitions:\n  a:\n    $ref: \"#b\"\n  b:\n    $ref: \"#a\"",
	})
	doc, _ := store.Document("defs")

	_, _, err := store.Resolve(doc.Definitions["a"], "defs")
	if !IsCyclicReference(err) {
		t.Fatalf("Expected a cyclic-reference error, got: %v", err)
	}

	var re *ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("Expected a ResolutionError, got: %v", err)
	}
	if len(re.Chain) != 3 {
		t.Fatalf("Expected a three-entry chain ending at the revisited target, got %v", re.Chain)
	}
	if re.Chain[0] != re.Chain[2] {
		t.Errorf("Expected the chain to close on its first target, got %v", re.Chain)
	}
	if !strings.Contains(err.Error(), " -> ") {
		t.Errorf("Expected the chain in the message, got: %v", err)
	}
}

func TestStore_Resolve_SelfCycle(t *testing.T) {
	store := mustLoad(t, map[string]string{
		"defs": "definitions:\n  loop:\n    $ref: \"#loop\"",
	})
	doc, _ := store.Document("defs")

	_, _, err := store.Resolve(doc.Definitions["loop"], "defs")
	if !IsCyclicReference(err) {
		t.Fatalf("Expected a cyclic-reference error, got: %v", err)
	}
}

func TestStore_Resolve_Memoization(t *testing.T) {
	store := mustLoad(t, map[string]string{
		"app": `schema: {$ref: "definitions#percentage"}`,
	})
	doc, _ := store.Document("app")

	first, _, err := store.Resolve(doc.Root, "app")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	second, _, err := store.Resolve(doc.Root, "app")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if first != second {
		t.Error("Expected repeated resolution to return the identical node")
	}

	key := refKey{doc: BuiltinDefinitionsDocument, fragment: "definitions/percentage"}
	if _, ok := store.memo.Load(key); !ok {
		t.Error("Expected the resolution to be memoized under its canonical key")
	}
}

func TestStore_Resolve_ConcurrentReuse(t *testing.T) {
	store := mustLoad(t, map[string]string{
		"app": `schema: {$ref: "definitions#posint"}`,
	})
	doc, _ := store.Document("app")

	const workers = 16
	results := make([]*Node, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			node, _, err := store.Resolve(doc.Root, "app")
			if err != nil {
				t.Errorf("Resolve failed: %v", err)
				return
			}
			results[i] = node
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatal("Expected every concurrent resolution to observe the same node")
		}
	}
}
