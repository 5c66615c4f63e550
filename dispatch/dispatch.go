// Package dispatch concurrently invokes back-end compilers across
// versions and, within a version, across units, per spec §4.G/§5. Fan-out
// uses golang.org/x/sync/errgroup, the library the broader retrieved pack
// (kralicky-protocompile, bennypowers-mappa) reaches for in place of
// hand-rolled WaitGroup/error-channel plumbing for exactly this shape of
// two-level concurrent work.
package dispatch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/sc-build/solbuild/internal/scerrors"
	"github.com/sc-build/solbuild/planner"
	"github.com/sc-build/solbuild/wrapper"
)

// UnitResult pairs a dispatched unit with its wrapper outcome.
type UnitResult struct {
	Version string
	Unit    *planner.CompilationUnit
	Output  wrapper.Result
}

// CompilationErrorChecker inspects a wrapper.Result for error-severity
// diagnostics and reports a count, so the dispatcher can surface
// scerrors.CompilationError without itself understanding any particular
// back-end's diagnostic shape.
type CompilationErrorChecker func(wrapper.Result) (errorsCount int, ok bool)

// Run invokes registry's wrapper for every unit in plan concurrently
// (across versions, and within a version, across units) and returns one
// UnitResult per unit, keyed by nothing in particular — callers match
// units back to contracts through the files in UnitResult.Unit.
//
// A CompilationError from any invocation cancels the group's context so
// other in-flight invocations wind down, but their results (not their
// errors) are discarded, per spec §5 Cancellation; the first
// CompilationError or I/O error observed is returned.
func Run(ctx context.Context, plan *planner.CompilationPlan, remappings map[string]string,
	registry *wrapper.Registry, settingsFor func(version string) ([]byte, error), checkErrors CompilationErrorChecker) ([]UnitResult, error) {

	g, gctx := errgroup.WithContext(ctx)
	results := make([]UnitResult, 0)
	resultsCh := make(chan UnitResult)
	done := make(chan struct{})

	go func() {
		for r := range resultsCh {
			results = append(results, r)
		}
		close(done)
	}()

	for _, version := range plan.Versions() {
		version := version
		settingsJSON, err := settingsFor(version)
		if err != nil {
			close(resultsCh)
			<-done
			return nil, err
		}
		w, err := registry.Get(version, settingsJSON)
		if err != nil {
			close(resultsCh)
			<-done
			return nil, err
		}
		for _, unit := range plan.Units(version) {
			unit := unit
			g.Go(func() error {
				out, err := w.Compile(gctx, unit.Files, remappings)
				if err != nil {
					return fmt.Errorf("invoking compiler %s: %w", version, err)
				}
				if checkErrors != nil {
					if n, hasErrors := checkErrors(out); hasErrors {
						log.Error().Str("version", version).Int("errorsCount", n).Msg("dispatch: compilation errors")
						return &scerrors.CompilationError{Version: version, ErrorsCount: n}
					}
				}
				select {
				case resultsCh <- UnitResult{Version: version, Unit: unit, Output: out}:
				case <-gctx.Done():
				}
				return nil
			})
		}
	}

	err := g.Wait()
	close(resultsCh)
	<-done
	if err != nil {
		return nil, err
	}
	return results, nil
}
