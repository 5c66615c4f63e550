package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func mustOutput(t *testing.T, absPath, contractName, body string) ContractsOutput {
	t.Helper()
	return ContractsOutput{
		absPath: {contractName: json.RawMessage(body)},
	}
}

func TestWriteSmallestUnitWins(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	rec := func(unitSize int, body string) WriteRecord {
		return WriteRecord{
			RequestedName: "A",
			ContractName:  "L",
			AbsolutePath:  "/p/L.sol",
			UnitSize:      unitSize,
			UnitSources:   map[string]string{"/p/L.sol": "L.sol"},
			Output:        mustOutput(t, "/p/L.sol", "L", body),
		}
	}

	// First write: unit of size 5.
	if err := w.Write(rec(5, `{"bin":"from-5"}`)); err != nil {
		t.Fatalf("first write: %v", err)
	}
	// Second write: larger unit (size 8) must NOT overwrite.
	if err := w.Write(rec(8, `{"bin":"from-8"}`)); err != nil {
		t.Fatalf("second write: %v", err)
	}
	assertStoredBin(t, dir, "from-5")

	// Third write: strictly smaller unit (size 2) MUST overwrite.
	if err := w.Write(rec(2, `{"bin":"from-2"}`)); err != nil {
		t.Fatalf("third write: %v", err)
	}
	assertStoredBin(t, dir, "from-2")

	// Fourth write: equal size (2) must NOT overwrite (strictly smaller
	// required).
	if err := w.Write(rec(2, `{"bin":"from-2-again"}`)); err != nil {
		t.Fatalf("fourth write: %v", err)
	}
	assertStoredBin(t, dir, "from-2")
}

func assertStoredBin(t *testing.T, dir, want string) {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, "A-L.json"))
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	var art Artifact
	if err := json.Unmarshal(b, &art); err != nil {
		t.Fatalf("unmarshaling artifact: %v", err)
	}
	var out struct {
		Bin string `json:"bin"`
	}
	if err := json.Unmarshal(art.CompilerOutput, &out); err != nil {
		t.Fatalf("unmarshaling compilerOutput: %v", err)
	}
	if out.Bin != want {
		t.Fatalf("stored artifact has bin=%q, want %q", out.Bin, want)
	}
}

func TestWriteLegacyEmptyKeyFallback(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	rec := WriteRecord{
		RequestedName: "A",
		ContractName:  "A",
		AbsolutePath:  "/p/A.sol",
		UnitSize:      1,
		UnitSources:   map[string]string{"/p/A.sol": "A.sol"},
		Output:        ContractsOutput{"": {"A": json.RawMessage(`{"bin":"legacy"}`)}},
	}
	if err := w.Write(rec); err != nil {
		t.Fatalf("write: %v", err)
	}
	assertStoredBin(t, dir, "legacy")
}

func TestWriteMissingContractFails(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)
	rec := WriteRecord{
		RequestedName: "A",
		ContractName:  "Missing",
		AbsolutePath:  "/p/A.sol",
		UnitSize:      1,
		Output:        ContractsOutput{"/p/A.sol": {"A": json.RawMessage(`{}`)}},
	}
	if err := w.Write(rec); err == nil {
		t.Fatalf("expected MissingContractError")
	}
}
