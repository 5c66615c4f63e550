package wrapper

import (
	"context"
	"encoding/json"
	"testing"
)

func TestFamilyOfMatchesKnownPrefixes(t *testing.T) {
	cases := map[string]Family{
		"0.8.19+commit.7dd6d404": Family08,
		"0.7.6+commit.7338295f":  Family07,
		"0.4.26+commit.4563c3fc": Family04,
	}
	for version, want := range cases {
		got, err := FamilyOf(version)
		if err != nil {
			t.Fatalf("FamilyOf(%q): %v", version, err)
		}
		if got != want {
			t.Fatalf("FamilyOf(%q) = %q, want %q", version, got, want)
		}
	}
}

func TestFamilyOfRejectsUnsupportedVersion(t *testing.T) {
	if _, err := FamilyOf("0.9.0"); err == nil {
		t.Fatalf("expected an error for an unsupported family")
	}
}

type stubWrapper struct{ settings json.RawMessage }

func (s *stubWrapper) Compile(ctx context.Context, unit map[string]string, remappings map[string]string) (Result, error) {
	return Result{}, nil
}
func (s *stubWrapper) SettingsEqual(other json.RawMessage) bool { return true }

func TestRegistryGetCachesByVersion(t *testing.T) {
	calls := 0
	factory := func(version string, settings json.RawMessage) (Wrapper, error) {
		calls++
		return &stubWrapper{settings: settings}, nil
	}
	r := NewRegistry(factory)

	w1, err := r.Get("0.8.19", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Get #1: %v", err)
	}
	w2, err := r.Get("0.8.19", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Get #2: %v", err)
	}
	if w1 != w2 {
		t.Fatalf("expected the same cached Wrapper instance for a repeated version")
	}
	if calls != 1 {
		t.Fatalf("expected the factory to run once, ran %d times", calls)
	}
}

func TestRegistryGetRejectsUnsupportedFamily(t *testing.T) {
	r := NewRegistry(func(version string, settings json.RawMessage) (Wrapper, error) {
		return &stubWrapper{}, nil
	})
	if _, err := r.Get("0.9.0", json.RawMessage(`{}`)); err == nil {
		t.Fatalf("expected an unsupported-family error before the factory ever runs")
	}
}
