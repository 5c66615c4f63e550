// Package wrapper defines the back-end compiler capability (spec §6.3) and
// the version-family registry that dispatches to it. The set of families
// is closed (a fixed list of Family constants matched by prefix), per spec
// §9's design note preferring a tagged variant over open-ended dynamic
// registration.
package wrapper

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/sc-build/solbuild/internal/scerrors"
)

// Result is the outcome of one back-end invocation: the standard-JSON
// request actually sent, and the compiler's standard-JSON response.
type Result struct {
	Input  json.RawMessage
	Output json.RawMessage
}

// Wrapper is the capability every back-end adapter exposes.
type Wrapper interface {
	// Compile submits unit (path -> source) plus shared remappings to the
	// back-end and returns its request/response pair.
	Compile(ctx context.Context, unit map[string]string, remappings map[string]string) (Result, error)
	// SettingsEqual decides whether a cached artifact's settings match the
	// wrapper's currently configured settings. The wrapper owns this
	// comparison because it alone knows which fields are irrelevant
	// (output selection, paths, normalized defaults).
	SettingsEqual(other json.RawMessage) bool
}

// Family identifies one of the closed set of supported version prefixes.
type Family string

const (
	Family01 Family = "0.1."
	Family02 Family = "0.2."
	Family03 Family = "0.3."
	Family04 Family = "0.4."
	Family05 Family = "0.5."
	Family06 Family = "0.6"
	Family07 Family = "0.7"
	Family08 Family = "0.8"
)

var families = []Family{Family01, Family02, Family03, Family04, Family05, Family06, Family07, Family08}

// FamilyOf prefix-matches a normalized version string against the closed
// set of supported families.
func FamilyOf(version string) (Family, error) {
	for _, f := range families {
		if strings.HasPrefix(version, string(f)) {
			return f, nil
		}
	}
	return "", &scerrors.UnsupportedVersionError{Version: version}
}

// Factory constructs a Wrapper for one normalized version.
type Factory func(version string, settings json.RawMessage) (Wrapper, error)

// Registry is the per-driver lazy-initialized wrapper cache keyed by
// normalized version, per spec §5's "shared-wrapper registry" note:
// entries are created on first use and reused for the driver's lifetime.
// There is no process-wide mutable state; every Driver owns its own
// Registry.
type Registry struct {
	mu       sync.Mutex
	factory  Factory
	wrappers map[string]Wrapper
}

func NewRegistry(factory Factory) *Registry {
	return &Registry{factory: factory, wrappers: make(map[string]Wrapper)}
}

// Get returns the Wrapper for version, constructing and caching it on
// first use. Insertion is idempotent: a concurrent second caller for the
// same version observes the first caller's instance.
func (r *Registry) Get(version string, settings json.RawMessage) (Wrapper, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.wrappers[version]; ok {
		return w, nil
	}
	if _, err := FamilyOf(version); err != nil {
		return nil, err
	}
	w, err := r.factory(version, settings)
	if err != nil {
		return nil, err
	}
	r.wrappers[version] = w
	return w, nil
}
