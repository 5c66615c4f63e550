// Package jsondriver implements the "parallel JSON driver" of spec §6.5: it
// compiles a standard-JSON bundle directly, using the bundle's own embedded
// sources instead of walking an import closure. Per spec §9 Open Question
// (b), this driver intersects constraints across every file in the bundle
// (unlike batched planning, which uses only each root's own constraint) -
// the two behaviors are preserved separately rather than unified.
package jsondriver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/sc-build/solbuild/artifact"
	"github.com/sc-build/solbuild/scansrc"
	"github.com/sc-build/solbuild/solver"
	"github.com/sc-build/solbuild/wrapper"
)

// Bundle is a standard-JSON input bundle: path -> source content, plus the
// settings object to forward verbatim.
type Bundle struct {
	Sources  map[string]string
	Settings json.RawMessage
}

// Request is one JSON-driver compile: the bundle, an optional version pin,
// and where the release index is fetched from or cached.
type Request struct {
	Bundle           Bundle
	Pin              string
	Offline          bool
	ReleaseIndexURL  string
	ReleaseCachePath string
}

// Compile intersects the version constraint across every source in the
// bundle, selects one back-end version for the whole bundle, and compiles
// it as a single unit.
func Compile(ctx context.Context, req Request, registry *wrapper.Registry) (artifact.ContractsOutput, string, error) {
	var merged *semver.Constraints
	for path, text := range req.Bundle.Sources {
		scanned, err := scansrc.Scan(text)
		if err != nil {
			return nil, "", fmt.Errorf("scanning %s: %w", path, err)
		}
		if scanned.Constraint == nil {
			continue
		}
		if merged == nil {
			merged = scanned.Constraint
			continue
		}
		combined, err := semver.NewConstraint(merged.String() + ", " + scanned.Constraint.String())
		if err != nil {
			continue
		}
		merged = combined
	}

	index, err := solver.LoadReleaseIndex(ctx, req.ReleaseIndexURL, req.ReleaseCachePath, req.Offline)
	if err != nil {
		return nil, "", err
	}
	version, err := solver.Select(merged, index, req.Pin)
	if err != nil {
		return nil, "", err
	}

	w, err := registry.Get(version, req.Bundle.Settings)
	if err != nil {
		return nil, "", err
	}
	result, err := w.Compile(ctx, req.Bundle.Sources, nil)
	if err != nil {
		return nil, "", err
	}

	var parsed struct {
		Contracts artifact.ContractsOutput `json:"contracts"`
	}
	if err := json.Unmarshal(result.Output, &parsed); err != nil {
		return nil, "", fmt.Errorf("parsing bundle compiler output: %w", err)
	}
	return parsed.Contracts, version, nil
}
