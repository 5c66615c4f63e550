// Package solbuild is the build driver's top-level entry point: it wires
// the resolver chain, planner, dispatcher, and artifact writer together
// behind one Driver type, the same way the teacher's root "dep" package
// wires its own gps solver, source manager, and lock writer behind a small
// set of public entry points (ensure.go's runEnsure, for instance) while
// keeping the heavy lifting in leaf packages.
package solbuild

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/sc-build/solbuild/artifact"
	"github.com/sc-build/solbuild/config"
	"github.com/sc-build/solbuild/dispatch"
	"github.com/sc-build/solbuild/planner"
	"github.com/sc-build/solbuild/resolver"
	"github.com/sc-build/solbuild/scansrc"
	"github.com/sc-build/solbuild/solver"
	"github.com/sc-build/solbuild/wrapper"
)

// DefaultReleaseIndexURL is where the default (solidity) back-end's published
// version list lives. Overridable via Driver.ReleaseIndexURL for a second
// compiler family.
const DefaultReleaseIndexURL = "https://binaries.soliditylang.org/bin/list.json"

// Driver orchestrates one compile run: planner completes before dispatch
// starts, dispatch completes before the writer starts (spec §5).
type Driver struct {
	Config           config.Config
	Registry         *wrapper.Registry
	WrapperFactory   wrapper.Factory
	ReleaseIndexURL  string
	ReleaseCachePath string
	CheckErrors      dispatch.CompilationErrorChecker

	// RegistryRoots maps a bare dependency prefix to a filesystem root,
	// feeding resolver.RegistryResolver and the ImportRemappings seed.
	RegistryRoots map[string]string

	chain     *resolver.Chain
	nameIndex *resolver.NameIndexResolver
	lastPaths []string
}

// NewDriver builds a Driver from cfg, wiring the default five-strategy
// resolver chain of spec §4.A.
func NewDriver(cfg config.Config, factory wrapper.Factory) *Driver {
	d := &Driver{
		Config:           cfg,
		Registry:         wrapper.NewRegistry(factory),
		WrapperFactory:   factory,
		ReleaseIndexURL:  DefaultReleaseIndexURL,
		ReleaseCachePath: filepath.Join(cfg.ArtifactsDir, ".cache", "release-index.json"),
		RegistryRoots:    cfg.ImportRemappings,
	}
	d.nameIndex = resolver.NewNameIndexResolver(cfg.ContractsDir, ".sol")
	d.chain = resolver.NewChain(
		resolver.NewURLResolver(),
		resolver.NewRegistryResolver(cfg.ImportRemappings),
		&resolver.RelativeFSResolver{Dir: cfg.ContractsDir},
		&resolver.AbsoluteFSResolver{ProjectRoot: cfg.ContractsDir},
		d.nameIndex,
	)
	return d
}

// Compile runs one full plan -> dispatch -> write pass (spec's public
// all-or-nothing entry point, §5 Cancellation).
func (d *Driver) Compile(ctx context.Context) error {
	index, err := solver.LoadReleaseIndex(ctx, d.ReleaseIndexURL, d.ReleaseCachePath, d.Config.IsOfflineMode)
	if err != nil {
		return err
	}

	pick := func(scanned scansrc.Scanned) (string, error) {
		return solver.Select(scanned.Constraint, index, d.Config.SolcVersion)
	}
	settingsFor := func(version string) ([]byte, error) {
		if d.Config.CompilerSettings == nil {
			return []byte("{}"), nil
		}
		return d.Config.CompilerSettings, nil
	}

	result, err := planner.Plan(ctx, d.Config, d.chain, d.nameIndex, d.RegistryRoots, pick, d.Registry, settingsFor)
	if err != nil {
		return err
	}

	d.lastPaths = lastWatchedPaths(result)

	if len(result.Plan.Versions()) == 0 {
		log.Info().Msg("solbuild: nothing to rebuild")
		return nil
	}

	unitResults, err := dispatch.Run(ctx, result.Plan, result.Remappings, d.Registry, settingsFor, d.CheckErrors)
	if err != nil {
		return err
	}

	w := artifact.NewWriter(d.Config.ArtifactsDir)
	for _, ur := range unitResults {
		var contractsOut artifact.ContractsOutput
		if err := extractContracts(ur.Output.Output, &contractsOut); err != nil {
			return fmt.Errorf("parsing compiler output for %s: %w", ur.Version, err)
		}
		// Persist the same normalized settings settingsFor handed to the
		// wrapper the gate will compare against on the next run, rather
		// than the raw (possibly nil) config field, so an unchanged config
		// round-trips through ShouldRebuild as unchanged (spec §4.F).
		settingsJSON, err := settingsFor(ur.Version)
		if err != nil {
			return err
		}
		compilerInfo := artifact.CompilerInfo{Name: "solc", Version: ur.Version, Settings: settingsJSON}

		logicalByAbs := make(map[string]string, len(ur.Unit.Files))
		for abs := range ur.Unit.Files {
			logicalByAbs[abs] = abs
		}
		for _, root := range ur.Unit.Roots {
			for abs, logical := range root.Sources {
				logicalByAbs[abs] = logical
			}
		}

		// Spec §4.H: iterate every absolute_path in the unit that is also a
		// requested contract (present in result.ByPath), not only the roots
		// this particular unit was built to satisfy. A file pulled into a
		// large unit purely as an import can simultaneously be a smaller,
		// independently requested contract written by a different unit;
		// only by considering every path in the unit does the writer's
		// smallest-unit-wins arbitration ever see a genuine conflict.
		for abs := range ur.Unit.Files {
			cd, ok := result.ByPath[abs]
			if !ok {
				continue
			}
			rec := artifact.WriteRecord{
				RequestedName:  cd.RequestedName,
				ContractName:   cd.ContractName,
				AbsolutePath:   cd.AbsolutePath,
				UnitSize:       ur.Unit.Size(),
				UnitSources:    logicalByAbs,
				SourceTreeHash: cd.SourceTreeHashHex,
				Output:         contractsOut,
				Compiler:       compilerInfo,
			}
			if d.Config.ShouldSaveStandardInput {
				rec.StandardInput = ur.Output.Input
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// LastWatchedPaths returns the absolute paths discovered by the last
// planning pass, the primitive watch.Runner needs to keep its fsnotify
// subscriptions in sync (spec §5 Watch mode, §9 design note).
func (d *Driver) LastWatchedPaths() []string { return d.lastPaths }

func lastWatchedPaths(r *planner.Result) []string {
	seen := make(map[string]struct{})
	var out []string
	for path := range r.ByPath {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			out = append(out, path)
		}
	}
	for _, version := range r.Plan.Versions() {
		for _, u := range r.Plan.Units(version) {
			for path := range u.Files {
				if _, ok := seen[path]; !ok {
					seen[path] = struct{}{}
					out = append(out, path)
				}
			}
		}
	}
	return out
}

func extractContracts(output json.RawMessage, out *artifact.ContractsOutput) error {
	var envelope struct {
		Contracts artifact.ContractsOutput `json:"contracts"`
	}
	if err := json.Unmarshal(output, &envelope); err != nil {
		return err
	}
	*out = envelope.Contracts
	return nil
}
