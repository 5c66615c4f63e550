// Package solver selects a concrete back-end compiler version for a
// constraint, against a release index that is either fetched from the
// back-end project's published list or loaded from an offline cache — the
// same fetch-or-cache-fallback shape as the teacher's own remote.go, which
// either hits the network or falls back to a local VCS cache depending on
// the caller's online/offline posture.
package solver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog/log"

	"github.com/sc-build/solbuild/internal/scerrors"
)

// ReleaseIndex maps a short version (e.g. "0.8.19") to its fully qualified
// form (e.g. "0.8.19+commit.7dd6d404").
type ReleaseIndex map[string]string

// LoadReleaseIndex fetches the index from indexURL unless offline is true,
// in which case it is read from cachePath. A successful fetch is always
// written back to cachePath so later offline runs can use it.
func LoadReleaseIndex(ctx context.Context, indexURL, cachePath string, offline bool) (ReleaseIndex, error) {
	if offline {
		return readCachedIndex(cachePath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, indexURL, nil)
	if err != nil {
		return nil, scerrors.Wrap("building release-index request", err)
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("solver: release-index fetch failed, trying offline cache")
		return readCachedIndex(cachePath)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, scerrors.Wrap("fetching release index", fmt.Errorf("status %s", resp.Status))
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, scerrors.Wrap("reading release index body", err)
	}
	var idx ReleaseIndex
	if err := json.Unmarshal(b, &idx); err != nil {
		return nil, scerrors.Wrap("parsing release index", err)
	}
	if cachePath != "" {
		if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err == nil {
			_ = os.WriteFile(cachePath, b, 0o644)
		}
	}
	return idx, nil
}

func readCachedIndex(cachePath string) (ReleaseIndex, error) {
	b, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, scerrors.Wrap("reading cached release index (offline mode)", err)
	}
	var idx ReleaseIndex
	if err := json.Unmarshal(b, &idx); err != nil {
		return nil, scerrors.Wrap("parsing cached release index", err)
	}
	return idx, nil
}

// Select implements the three-step policy of spec §4.D: a verbatim pin
// wins outright; otherwise the index's full version for the maximum short
// version satisfying constraint is chosen. Either way the result has any
// leading "v" stripped, so it is a normalized version.
func Select(constraint *semver.Constraints, index ReleaseIndex, pin string) (string, error) {
	if pin != "" {
		return strings.TrimPrefix(pin, "v"), nil
	}

	var best *semver.Version
	var bestShort string
	for short, full := range index {
		v, err := semver.NewVersion(short)
		if err != nil {
			continue
		}
		if constraint != nil && !constraint.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
			bestShort = full
		}
	}
	if best == nil {
		cs := ""
		if constraint != nil {
			cs = constraint.String()
		}
		log.Debug().Strs("available", sortedShortVersions(index)).Str("constraint", cs).Msg("solver: no version satisfies constraint")
		return "", &scerrors.UnsatisfiableVersionError{Constraint: cs}
	}
	return strings.TrimPrefix(bestShort, "v"), nil
}

// sortedShortVersions is a small helper kept for deterministic debug
// logging of the index; Select itself does not depend on map iteration
// order since it tracks the running maximum explicitly.
func sortedShortVersions(index ReleaseIndex) []string {
	out := make([]string, 0, len(index))
	for k := range index {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
