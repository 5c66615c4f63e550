package wrapper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"reflect"

	"github.com/rs/zerolog/log"
)

// standardInput is the shape of the standard-JSON request sent to a solc-
// family binary: sources plus settings, keyed the way every family from
// 0.4 onward accepts on stdin with --standard-json.
type standardInput struct {
	Language string                    `json:"language"`
	Sources  map[string]standardSource `json:"sources"`
	Settings json.RawMessage           `json:"settings,omitempty"`
}

type standardSource struct {
	Content string `json:"content"`
}

// ProcessWrapper drives a local compiler binary via os/exec, the way
// crytic/medusa's SolcCompilationConfig.Compile shells out to "solc" and
// parses its combined-JSON stdout. Binary discovery/download stays
// delegated per spec: ProcessWrapper takes an already-resolved binary path.
type ProcessWrapper struct {
	Version    string
	BinaryPath string
	Settings   json.RawMessage
}

func NewProcessWrapper(version, binaryPath string, settings json.RawMessage) (Wrapper, error) {
	return &ProcessWrapper{Version: version, BinaryPath: binaryPath, Settings: settings}, nil
}

func (w *ProcessWrapper) Compile(ctx context.Context, unit map[string]string, remappings map[string]string) (Result, error) {
	sources := make(map[string]standardSource, len(unit))
	for path, text := range unit {
		sources[path] = standardSource{Content: text}
	}
	in := standardInput{
		Language: "Solidity",
		Sources:  sources,
		Settings: w.Settings,
	}
	inputJSON, err := json.Marshal(in)
	if err != nil {
		return Result{}, fmt.Errorf("marshaling standard-json input: %w", err)
	}

	args := []string{"--standard-json"}
	for prefix, root := range remappings {
		args = append(args, fmt.Sprintf("%s=%s", prefix, root))
	}

	cmd := exec.CommandContext(ctx, w.BinaryPath, args...)
	cmd.Stdin = bytes.NewReader(inputJSON)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.Error().Err(err).Str("stderr", stderr.String()).Str("version", w.Version).Msg("wrapper: compiler invocation failed")
		return Result{}, fmt.Errorf("invoking %s: %w (stderr: %s)", w.BinaryPath, err, stderr.String())
	}

	return Result{Input: inputJSON, Output: json.RawMessage(stdout.Bytes())}, nil
}

// SettingsEqual compares settings structurally rather than byte-for-byte,
// since a cached artifact's settings object may have had key order or
// whitespace normalized by a previous run's encoder.
func (w *ProcessWrapper) SettingsEqual(other json.RawMessage) bool {
	var a, b interface{}
	if err := json.Unmarshal(w.Settings, &a); err != nil {
		a = nil
	}
	if err := json.Unmarshal(other, &b); err != nil {
		b = nil
	}
	return reflect.DeepEqual(a, b)
}
