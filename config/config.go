// Package config decodes and validates the driver's configuration record
// (spec §6.1) and folds in the two environment overrides of §6.2.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/sc-build/solbuild/internal/scerrors"
)

//go:embed schema.json
var schemaJSON []byte

// Config is the driver's configuration record. Field tags match the wire
// names in spec §6.1.
type Config struct {
	ContractsDir             string            `json:"contracts_dir"`
	ArtifactsDir             string            `json:"artifacts_dir"`
	Contracts                Contracts         `json:"contracts"` // nil/empty means "*"
	SolcVersion              string            `json:"solc_version,omitempty"`
	CompilerSettings         json.RawMessage   `json:"compiler_settings,omitempty"`
	UseDockerisedSolc        bool              `json:"use_dockerised_solc"`
	IsOfflineMode            bool              `json:"is_offline_mode"`
	ShouldSaveStandardInput  bool              `json:"should_save_standard_input"`
	ShouldCompileIndependent bool              `json:"should_compile_independently"`
	ImportRemappings         map[string]string `json:"import_remappings,omitempty"`
}

// AllContracts reports whether the configuration requests every contract
// ("*", spec's default), as opposed to an explicit list of basenames.
func (c Config) AllContracts() bool {
	return len(c.Contracts) == 0
}

// Contracts is either the literal "*" (decoded as an empty slice, meaning
// "every contract") or an explicit list of basenames.
type Contracts []string

func (c *Contracts) UnmarshalJSON(b []byte) error {
	var asString string
	if err := json.Unmarshal(b, &asString); err == nil {
		if asString != "*" {
			return &scerrors.ConfigInvalid{Reason: `"contracts" string value must be "*"`}
		}
		*c = nil
		return nil
	}
	var asList []string
	if err := json.Unmarshal(b, &asList); err != nil {
		return err
	}
	*c = asList
	return nil
}

func (c Contracts) MarshalJSON() ([]byte, error) {
	if len(c) == 0 {
		return json.Marshal("*")
	}
	return json.Marshal([]string(c))
}

var schema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		panic("config: invalid embedded schema: " + err.Error())
	}
	s, err := compiler.Compile("config.schema.json")
	if err != nil {
		panic("config: could not compile embedded schema: " + err.Error())
	}
	schema = s
}

// Load decodes raw JSON configuration, validates it against the embedded
// schema, applies defaults, and folds in SOLCJS_PATH / SOLC_OFFLINE.
func Load(raw []byte) (Config, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Config{}, &scerrors.ConfigInvalid{Reason: err.Error()}
	}
	if err := schema.Validate(doc); err != nil {
		return Config{}, &scerrors.ConfigInvalid{Reason: err.Error()}
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, &scerrors.ConfigInvalid{Reason: err.Error()}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ContractsDir == "" {
		c.ContractsDir = "./contracts"
	}
	if abs, err := filepath.Abs(c.ContractsDir); err == nil {
		c.ContractsDir = abs
	}
	if c.ArtifactsDir == "" {
		c.ArtifactsDir = "./artifacts"
	}
}

// applyEnv implements spec §6.2: SOLCJS_PATH's filename encodes a version
// pin (overriding SolcVersion), and SOLC_OFFLINE (any non-empty value)
// forces offline mode.
func (c *Config) applyEnv() {
	if p := os.Getenv("SOLCJS_PATH"); p != "" {
		c.SolcVersion = versionFromBinaryName(filepath.Base(p))
	}
	if v := os.Getenv("SOLC_OFFLINE"); v != "" {
		c.IsOfflineMode = true
	}
}

// versionFromBinaryName extracts a version pin from a solc-js binary
// filename such as "soljson-v0.8.19+commit.7dd6d404.js".
func versionFromBinaryName(name string) string {
	name = strings.TrimPrefix(name, "soljson-")
	name = strings.TrimSuffix(name, ".js")
	return strings.TrimPrefix(name, "v")
}
