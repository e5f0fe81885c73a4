package formats

import (
	"sort"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Checker reports whether a string satisfies a named format. It is the
// gojsonschema checker contract, so any of that package's checkers (and any
// custom implementation of it) can be registered directly.
type Checker = gojsonschema.FormatChecker

// Registry is a named set of format checkers. Schema loading verifies format
// constraints against a registry; validation consults the same registry to
// check tagged strings.
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{checkers: make(map[string]Checker)}
}

// Default creates a registry preloaded with the standard checker set.
func Default() *Registry {
	r := New()
	r.Register("uri", gojsonschema.URIFormatChecker{})
	r.Register("uri-reference", gojsonschema.URIReferenceFormatChecker{})
	r.Register("email", gojsonschema.EmailFormatChecker{})
	r.Register("hostname", gojsonschema.HostnameFormatChecker{})
	r.Register("ipv4", gojsonschema.IPV4FormatChecker{})
	r.Register("ipv6", gojsonschema.IPV6FormatChecker{})
	r.Register("date", gojsonschema.DateFormatChecker{})
	r.Register("time", gojsonschema.TimeFormatChecker{})
	r.Register("date-time", gojsonschema.DateTimeFormatChecker{})
	r.Register("uuid", gojsonschema.UUIDFormatChecker{})
	r.Register("regex", gojsonschema.RegexFormatChecker{})
	return r
}

// Register adds a checker under the given name, replacing any previous
// checker of that name.
func (r *Registry) Register(name string, c Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = c
}

// Has reports whether a checker is registered under the given name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.checkers[name]
	return ok
}

// Check reports whether value satisfies the named format. An unregistered
// name fails the check; schema loading rejects unknown names up front, so
// this only arises for callers bypassing the store.
func (r *Registry) Check(name, value string) bool {
	r.mu.RLock()
	c, ok := r.checkers[name]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return c.IsFormat(value)
}

// Names returns the registered format names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
