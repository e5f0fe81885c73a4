// Package schema loads, indexes, and resolves the schema document sets that
// describe valid operational configuration.
//
// A schema set is a mapping from document name to raw YAML or JSON data. Each
// document carries a root schema under "schema", named reusable fragments
// under "definitions", or both. Documents reference each other by name:
//
//	properties:
//	  setpoint:
//	    $ref: "definitions#percentage"
//	  failover:
//	    $ref: "#cluster"
//
// A reference of the form "document#fragment" crosses documents; "#fragment"
// stays inside the referencing document. The fragment is empty for the target
// document's root schema, or names a definition ("percentage",
// "/definitions/percentage" and the spellings in between are equivalent).
//
// # Loading
//
// Load parses every document into an immutable tree and then verifies the
// whole set: every reference target must exist and every format constraint
// must name a registered checker. A schema set that fails either check is
// broken as authored, so Load fails with a LoadError rather than deferring
// the problem to validation time. After Load returns, the store never
// changes; it is safe to share across concurrent validations.
//
// # Resolution
//
// References are followed lazily by Resolve, which chases chains across
// documents, detects cycles, and memoizes results per (document, fragment)
// pair for the lifetime of the store. A cycle is reported as a
// ResolutionError carrying the chain of targets visited.
//
// # Supported keywords
//
// A schema node is a mapping holding either a single "$ref" or any
// combination of: "type" (object, array, string, number, integer, boolean),
// "properties", "required", "additionalProperties" (boolean or schema),
// "items", "minItems", "maxItems", "enum", "minimum", "maximum", and
// "format". Unknown keywords are malformed-schema errors, never ignored.
//
// # The reserved sentinel
//
// A "minimum" of positive infinity (YAML ".inf") does not mean "no lower
// bound". It is an intentionally unsatisfiable constraint: only a value that
// is itself positive infinity passes, so every finite input fails. The
// builtin "reserved" definition packages this sentinel for schema authors who
// want to declare a field before its support ships.
//
// # Builtin definitions
//
// Unless told otherwise, Load registers a "definitions" document carrying the
// shared semantic types: posint, nonnegative_int, percentage, aws_region, and
// reserved. A caller-supplied "definitions" document takes precedence.
package schema
