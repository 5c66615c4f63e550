package planner

import (
	"github.com/sc-build/solbuild/wrapper"
)

// ShouldRebuild implements the four-way "must rebuild" disjunction of spec
// §4.F. The comparison is intentionally opaque to the planner: it defers
// settings equality to the wrapper, which alone knows which configured
// fields are irrelevant to a cache hit.
func ShouldRebuild(cd *ContractData, w wrapper.Wrapper, currentSchemaVersion int) bool {
	existing := cd.CurrentArtifact
	if existing == nil {
		return true
	}
	if existing.SchemaVersion != currentSchemaVersion {
		return true
	}
	if !w.SettingsEqual(existing.Compiler.Settings) {
		return true
	}
	if existing.SourceTreeHashHex != cd.SourceTreeHashHex {
		return true
	}
	return false
}
