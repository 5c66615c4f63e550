package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sc-build/solbuild/internal/scerrors"
)

// Writer owns the run-scoped PersistedArtifactCache (absolute_path ->
// unit_size) that arbitrates between redundant compilations of the same
// file. It is never exposed outside this package, per spec §5's "Shared
// resources" note that the cache belongs exclusively to the writer.
type Writer struct {
	dir string

	mu        sync.Mutex
	unitSizes map[string]int // absolute_path -> size of unit that wrote it
}

func NewWriter(artifactsDir string) *Writer {
	return &Writer{dir: artifactsDir, unitSizes: make(map[string]int)}
}

// ContractsOutput is the shape solc-family back-ends return under
// output.contracts: absolute source path -> contract name -> raw record.
// The oldest family (0.1.x) returns a single contract per call keyed under
// the empty-string path (the "legacy" shape, spec §6.4).
type ContractsOutput map[string]map[string]json.RawMessage

// WriteRecord carries everything the writer needs for one (absolute_path,
// contract_name) pair produced by a unit.
type WriteRecord struct {
	RequestedName  string
	ContractName   string
	AbsolutePath   string
	UnitSize       int
	UnitSources    map[string]string // absolute_path -> logical_path, for every file in the unit
	SourceTreeHash string
	Output         ContractsOutput
	StandardInput  json.RawMessage // only when should_save_standard_input
	Compiler       CompilerInfo
}

// Write implements spec §4.H steps 1-4: locate the compiled record (with
// legacy fallback), arbitrate via the unit-size cache, and persist.
func (w *Writer) Write(rec WriteRecord) error {
	compiled, ok := lookupContract(rec.Output, rec.AbsolutePath, rec.ContractName)
	if !ok {
		return &scerrors.MissingContractError{ContractName: rec.ContractName, AbsolutePath: rec.AbsolutePath}
	}

	w.mu.Lock()
	prevSize, hadPrev := w.unitSizes[rec.AbsolutePath]
	if hadPrev && rec.UnitSize >= prevSize {
		w.mu.Unlock()
		log.Debug().Str("contract", rec.ContractName).Int("unitSize", rec.UnitSize).Int("keptSize", prevSize).
			Msg("artifact: keeping previously written artifact (not strictly smaller)")
		return nil
	}
	w.unitSizes[rec.AbsolutePath] = rec.UnitSize
	w.mu.Unlock()

	sources := make(map[string]SourceMeta, len(rec.UnitSources))
	for abs, logical := range rec.UnitSources {
		sources[abs] = SourceMeta{AbsolutePath: abs, LogicalPath: logical}
	}

	art := Artifact{
		SchemaVersion:     SchemaVersion,
		ContractName:      rec.ContractName,
		CompilerOutput:    compiled,
		StandardInput:     rec.StandardInput,
		Sources:           sources,
		Compiler:          rec.Compiler,
		Chains:            map[string]json.RawMessage{},
		SourceTreeHashHex: rec.SourceTreeHash,
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return scerrors.Wrap("creating artifacts directory", err)
	}
	b, err := json.MarshalIndent(art, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling artifact for %s: %w", rec.ContractName, err)
	}
	path := filepath.Join(w.dir, fmt.Sprintf("%s-%s.json", rec.RequestedName, rec.ContractName))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return scerrors.Wrap(fmt.Sprintf("writing artifact %s", path), err)
	}
	log.Info().Str("path", path).Int("unitSize", rec.UnitSize).Msg("artifact: written")
	return nil
}

// lookupContract implements the "file name must match contract name"
// lookup of spec §4.H.1, with a legacy fallback to the anonymous-key shape
// emitted by the oldest supported back-end family.
func lookupContract(out ContractsOutput, absolutePath, contractName string) (json.RawMessage, bool) {
	if byContract, ok := out[absolutePath]; ok {
		if rec, ok := byContract[contractName]; ok {
			return rec, true
		}
	}
	if byContract, ok := out[""]; ok {
		if rec, ok := byContract[contractName]; ok {
			return rec, true
		}
	}
	return nil, false
}

// LoadExisting reads a previously written artifact for requestedName and
// contractName, if any. A missing file is not an error: it simply means
// the cache gate must report "must rebuild".
func LoadExisting(artifactsDir, requestedName, contractName string) (*Artifact, error) {
	path := filepath.Join(artifactsDir, fmt.Sprintf("%s-%s.json", requestedName, contractName))
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, scerrors.Wrap(fmt.Sprintf("reading existing artifact %s", path), err)
	}
	var art Artifact
	if err := json.Unmarshal(b, &art); err != nil {
		return nil, scerrors.Wrap(fmt.Sprintf("parsing existing artifact %s", path), err)
	}
	return &art, nil
}
