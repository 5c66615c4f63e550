package jsondriver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sc-build/solbuild/wrapper"
)

type fakeWrapper struct {
	gotSettings json.RawMessage
	output      json.RawMessage
}

func (f *fakeWrapper) Compile(ctx context.Context, unit map[string]string, remappings map[string]string) (wrapper.Result, error) {
	return wrapper.Result{Output: f.output}, nil
}
func (f *fakeWrapper) SettingsEqual(other json.RawMessage) bool { return true }

func writeCache(t *testing.T, dir string, index map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, "release-index.json")
	b, err := json.Marshal(index)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestCompileIntersectsConstraintsAcrossBundle(t *testing.T) {
	dir := t.TempDir()
	cachePath := writeCache(t, dir, map[string]string{
		"0.8.19": "0.8.19+commit.7dd6d404",
		"0.8.10": "0.8.10+commit.fc410830",
	})

	var seenVersion string
	registry := wrapper.NewRegistry(func(version string, settings json.RawMessage) (wrapper.Wrapper, error) {
		seenVersion = version
		return &fakeWrapper{output: json.RawMessage(`{"contracts":{"Foo.sol":{"Foo":{}}}}`)}, nil
	})

	req := Request{
		Bundle: Bundle{
			Sources: map[string]string{
				"Foo.sol": `pragma solidity >=0.8.5; contract Foo {}`,
				"Bar.sol": `pragma solidity <0.8.15; contract Bar {}`,
			},
			Settings: json.RawMessage(`{}`),
		},
		Offline:          true,
		ReleaseCachePath: cachePath,
	}

	_, version, err := Compile(context.Background(), req, registry)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if version != "0.8.10+commit.fc410830" {
		t.Fatalf("got version %q, want the only release satisfying both per-file constraints once intersected (>=0.8.5 and <0.8.15)", version)
	}
	if seenVersion != version {
		t.Fatalf("registry saw %q, Compile returned %q", seenVersion, version)
	}
}

func TestCompilePinOverridesConstraintIntersection(t *testing.T) {
	dir := t.TempDir()
	cachePath := writeCache(t, dir, map[string]string{"0.8.19": "0.8.19+commit.7dd6d404"})

	registry := wrapper.NewRegistry(func(version string, settings json.RawMessage) (wrapper.Wrapper, error) {
		return &fakeWrapper{output: json.RawMessage(`{"contracts":{}}`)}, nil
	})

	req := Request{
		Bundle: Bundle{
			Sources: map[string]string{
				"Foo.sol": `pragma solidity ^0.7.0; contract Foo {}`,
			},
			Settings: json.RawMessage(`{}`),
		},
		Pin:              "0.8.19+commit.7dd6d404",
		Offline:          true,
		ReleaseCachePath: cachePath,
	}

	_, version, err := Compile(context.Background(), req, registry)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if version != "0.8.19+commit.7dd6d404" {
		t.Fatalf("expected pin to dominate an unsatisfiable constraint, got %q", version)
	}
}
