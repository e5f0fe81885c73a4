// Package formats provides the pluggable string-format checkers the schema
// engine uses for format-tagged strings (URIs, hostnames, timestamps).
//
// The checker contract is gojsonschema's FormatChecker, so the standard
// checkers ship ready to use and custom formats are one small type away:
//
//	type teamNameChecker struct{}
//
//	func (teamNameChecker) IsFormat(input any) bool {
//	    s, ok := input.(string)
//	    return ok && teamNamePattern.MatchString(s)
//	}
//
//	reg := formats.Default()
//	reg.Register("team-name", teamNameChecker{})
//
// Format availability is a property of the engine build, not of any one
// schema document: the schema store verifies at load time that every format
// constraint names a registered checker and rejects the set otherwise.
package formats
