package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sc-build/solbuild/internal/scerrors"
	"github.com/sc-build/solbuild/planner"
	"github.com/sc-build/solbuild/wrapper"
)

type fakeWrapper struct {
	output json.RawMessage
	err    error
}

func (f *fakeWrapper) Compile(ctx context.Context, unit map[string]string, remappings map[string]string) (wrapper.Result, error) {
	if f.err != nil {
		return wrapper.Result{}, f.err
	}
	return wrapper.Result{Output: f.output}, nil
}

func (f *fakeWrapper) SettingsEqual(other json.RawMessage) bool { return true }

func newPlanWithTwoUnits() *planner.CompilationPlan {
	p := planner.NewCompilationPlan()
	p.NewUnit("0.8.19", &planner.ContractData{RequestedName: "Foo"}, map[string]string{"Foo.sol": "contract Foo {}"})
	p.NewUnit("0.8.19", &planner.ContractData{RequestedName: "Bar"}, map[string]string{"Bar.sol": "contract Bar {}"})
	return p
}

func registryOf(w wrapper.Wrapper) *wrapper.Registry {
	return wrapper.NewRegistry(func(version string, settings json.RawMessage) (wrapper.Wrapper, error) {
		return w, nil
	})
}

func TestRunReturnsOneResultPerUnit(t *testing.T) {
	plan := newPlanWithTwoUnits()
	registry := registryOf(&fakeWrapper{output: json.RawMessage(`{"contracts":{}}`)})
	settingsFor := func(version string) ([]byte, error) { return []byte("{}"), nil }

	results, err := Run(context.Background(), plan, nil, registry, settingsFor, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 unit results, got %d", len(results))
	}
}

func TestRunSurfacesCompilationErrorFromChecker(t *testing.T) {
	plan := newPlanWithTwoUnits()
	registry := registryOf(&fakeWrapper{output: json.RawMessage(`{"errors":[{"severity":"error"}]}`)})
	settingsFor := func(version string) ([]byte, error) { return []byte("{}"), nil }
	checkErrors := func(r wrapper.Result) (int, bool) { return 1, true }

	_, err := Run(context.Background(), plan, nil, registry, settingsFor, checkErrors)
	if err == nil {
		t.Fatalf("expected a CompilationError")
	}
	var compErr *scerrors.CompilationError
	if !errors.As(err, &compErr) {
		t.Fatalf("got %v (%T), want *scerrors.CompilationError", err, err)
	}
	if compErr.ErrorsCount != 1 {
		t.Fatalf("got ErrorsCount %d, want 1", compErr.ErrorsCount)
	}
}

func TestRunPropagatesWrapperError(t *testing.T) {
	plan := newPlanWithTwoUnits()
	registry := registryOf(&fakeWrapper{err: errors.New("boom")})
	settingsFor := func(version string) ([]byte, error) { return []byte("{}"), nil }

	if _, err := Run(context.Background(), plan, nil, registry, settingsFor, nil); err == nil {
		t.Fatalf("expected the wrapper's error to propagate")
	}
}
