// Package planner builds the compilation plan (spec §4.E) and gates
// rebuilds against the artifact cache (spec §4.F). It exclusively owns the
// ContractData map and the CompilationPlan for one run, per spec §3's
// ownership note.
package planner

import (
	"github.com/sc-build/solbuild/artifact"
)

// ContractData is planner bookkeeping for one requested contract.
type ContractData struct {
	ContractName      string
	AbsolutePath      string
	CurrentArtifact   *artifact.Artifact // nil if none exists yet
	SourceTreeHashHex string
	RequestedName     string
	Sources           map[string]string // absolute_path -> logical_path, union of the transitive closure
}

// CompilationUnit maps absolute file path to its source text, submitted to
// one back-end compiler in one invocation.
type CompilationUnit struct {
	Files map[string]string // absolute_path -> source text
	// Roots lists the requested contracts whose ContractData this unit was
	// built to satisfy; the driver reads their logical source paths for the
	// artifact's sources metadata.
	Roots []*ContractData
}

// Size is the number of files in the unit; the writer's smallest-unit-wins
// policy (spec §4.H.3) compares this across redundant artifacts for the
// same absolute path.
func (u *CompilationUnit) Size() int { return len(u.Files) }

// CompilationPlan maps a concrete compiler version to its ordered sequence
// of units, built in insertion order so the writer observes it
// deterministically (spec §5 Ordering guarantees).
type CompilationPlan struct {
	versions []string
	units    map[string][]*CompilationUnit
}

func NewCompilationPlan() *CompilationPlan {
	return &CompilationPlan{units: make(map[string][]*CompilationUnit)}
}

// Versions returns the plan's version keys in insertion order.
func (p *CompilationPlan) Versions() []string {
	out := make([]string, len(p.versions))
	copy(out, p.versions)
	return out
}

// Units returns the ordered units for version.
func (p *CompilationPlan) Units(version string) []*CompilationUnit {
	return p.units[version]
}

// AppendToLast adds files to the last unit for version (batched mode),
// creating the version's sole unit if it doesn't exist yet.
func (p *CompilationPlan) AppendToLast(version string, root *ContractData, files map[string]string) {
	units, ok := p.units[version]
	if !ok {
		p.versions = append(p.versions, version)
	}
	if len(units) == 0 {
		u := &CompilationUnit{Files: make(map[string]string)}
		units = append(units, u)
		p.units[version] = units
	}
	u := units[len(units)-1]
	for path, text := range files {
		u.Files[path] = text
	}
	u.Roots = append(u.Roots, root)
}

// NewUnit always allocates a fresh unit for version (independent mode).
func (p *CompilationPlan) NewUnit(version string, root *ContractData, files map[string]string) {
	units, ok := p.units[version]
	if !ok {
		p.versions = append(p.versions, version)
	}
	u := &CompilationUnit{Files: make(map[string]string, len(files)), Roots: []*ContractData{root}}
	for path, text := range files {
		u.Files[path] = text
	}
	p.units[version] = append(units, u)
}

// ImportRemappings maps a bare dependency prefix to its resolved
// filesystem root, shared by all units of a run.
type ImportRemappings map[string]string
