// Package artifact defines the persisted artifact format (spec §6.4) and
// the writer that emits one artifact per contract with smallest-unit-wins
// de-duplication (spec §4.H). Field order in the struct below is what
// drives the stable key order on the wire — encoding/json preserves
// declared struct field order the same way the teacher's txn_writer.go
// relies on ordered struct fields (rather than a third-party ordered-map
// type) to produce a stable lock-file layout.
package artifact

import (
	"encoding/json"
)

// SchemaVersion is the current artifact schema version constant (spec
// §4.F: a cached artifact whose schema_version differs must be rebuilt).
const SchemaVersion = 1

// CompilerInfo records which back-end produced an artifact.
type CompilerInfo struct {
	Name     string          `json:"name"`
	Version  string          `json:"version"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// SourceMeta is the per-file metadata recorded alongside a contract's
// compiled output: every file that was present in the unit that produced
// it.
type SourceMeta struct {
	AbsolutePath string `json:"absolutePath"`
	LogicalPath  string `json:"logicalPath"`
}

// Artifact is the persisted output for one contract.
type Artifact struct {
	SchemaVersion    int                        `json:"schemaVersion"`
	ContractName     string                     `json:"contractName"`
	CompilerOutput   json.RawMessage            `json:"compilerOutput"`
	StandardInput    json.RawMessage            `json:"standardInput,omitempty"`
	Sources          map[string]SourceMeta      `json:"sources"`
	Compiler         CompilerInfo               `json:"compiler"`
	Chains           map[string]json.RawMessage `json:"chains"`
	SourceTreeHashHex string                    `json:"sourceTreeHashHex,omitempty"`
}
