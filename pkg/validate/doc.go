// Package validate walks configuration instances against loaded schema
// trees and reports every nonconformance it finds.
//
// Validation is a pure recursive descent: one frame per (schema node,
// instance subtree, path), resolving references through the schema store on
// the way down. Nonconformance is data, not failure: a run over a broken
// instance succeeds and returns violations. Only schema-integrity problems
// (unresolvable or cyclic references) abort a call, because no partial
// report over a broken schema set is meaningful.
//
// # Usage
//
// Validating a parsed configuration against a document's root schema:
//
//	store, err := schema.Load(documents)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	v := validate.New(store)
//	report, err := v.ValidateDocument(instance, "clusterman")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !report.Valid() {
//	    fmt.Print(report)
//	}
//
// # Violations
//
// Each violation carries a structured path from the document root, a kind,
// a message, and an optional description of the violated constraint.
// Reports are deterministically ordered: by path (lexicographic over steps,
// key steps before index steps at a shared prefix), then by kind for equal
// paths. Identical inputs always produce byte-identical reports, so
// snapshot tests stay stable.
//
// # Rules
//
// A type mismatch stops descent into its subtree and suppresses the other
// checks on that node; everything else accumulates. Object shapes check
// required names and route undeclared keys through additionalProperties,
// which is permissive unless a shape opts into strictness or the caller
// flips the default with WithClosedObjects. Bounds follow the reserved
// sentinel convention described in the schema package: a minimum of +Inf
// admits no finite value.
package validate
