package planner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sc-build/solbuild/artifact"
	"github.com/sc-build/solbuild/config"
	"github.com/sc-build/solbuild/resolver"
	"github.com/sc-build/solbuild/scansrc"
	"github.com/sc-build/solbuild/treehash"
	"github.com/sc-build/solbuild/wrapper"
)

// VersionPicker resolves a per-root constraint to a concrete back-end
// version, isolating the planner from the release-index fetch/cache
// concern (solver.LoadReleaseIndex is called once by the driver, ahead of
// planning).
type VersionPicker func(scanned scansrc.Scanned) (string, error)

// Stats is a non-authoritative summary of one planning run, used only for
// structured logging: never persisted, never part of an artifact.
type Stats struct {
	Requested int
	Skipped   int
	Versions  int
}

// Result is everything the dispatcher and writer need from one planning
// run.
type Result struct {
	Plan       *CompilationPlan
	Remappings ImportRemappings
	ByPath     map[string]*ContractData // absolute_path -> ContractData, for contracts that survived the cache gate
	Stats      Stats
}

// Plan implements spec §4.E. names is either every basename returned by
// nameIndex.GetAll (when cfg.AllContracts()) or cfg.Contracts verbatim.
func Plan(ctx context.Context, cfg config.Config, chain *resolver.Chain, nameIndex *resolver.NameIndexResolver,
	registryRoots map[string]string, pick VersionPicker, registry *wrapper.Registry, settingsFor func(version string) ([]byte, error)) (*Result, error) {

	names, err := requestedNames(ctx, cfg, nameIndex)
	if err != nil {
		return nil, err
	}

	plan := NewCompilationPlan()
	byPath := make(map[string]*ContractData)
	remapPrefixes := make(map[string]string)
	for prefix, root := range registryRoots {
		remapPrefixes[prefix] = root
	}

	stats := Stats{Requested: len(names)}

	for _, name := range names {
		spy := resolver.NewSpy(chain)
		root, err := spy.Resolve(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolving requested contract %q: %w", name, err)
		}

		treeHash, visited, err := treehash.Compute(ctx, root, spy)
		if err != nil {
			return nil, fmt.Errorf("hashing source tree for %q: %w", name, err)
		}

		contractName := basenameWithoutExt(root.AbsolutePath)
		existing, err := artifact.LoadExisting(cfg.ArtifactsDir, name, contractName)
		if err != nil {
			return nil, err
		}

		sources := make(map[string]string, len(visited))
		for _, v := range visited {
			sources[v.AbsolutePath] = v.LogicalPath
			if prefix := bareImportPrefix(v.LogicalPath); prefix != "" {
				if _, ok := remapPrefixes[prefix]; !ok {
					remapPrefixes[prefix] = filepath.Dir(v.AbsolutePath)
				}
			}
		}

		cd := &ContractData{
			ContractName:      contractName,
			AbsolutePath:      root.AbsolutePath,
			CurrentArtifact:   existing,
			SourceTreeHashHex: treeHash.Hex(),
			RequestedName:     name,
			Sources:           sources,
		}

		rootScanned, err := scansrc.Scan(root.SourceText)
		if err != nil {
			return nil, fmt.Errorf("scanning %q: %w", name, err)
		}
		version, err := pick(rootScanned)
		if err != nil {
			return nil, fmt.Errorf("selecting version for %q: %w", name, err)
		}

		settingsJSON, err := settingsFor(version)
		if err != nil {
			return nil, err
		}
		w, err := registry.Get(version, settingsJSON)
		if err != nil {
			return nil, err
		}

		if !ShouldRebuild(cd, w, artifact.SchemaVersion) {
			stats.Skipped++
			log.Debug().Str("contract", name).Str("version", version).Msg("planner: cache gate skip")
			continue
		}

		byPath[root.AbsolutePath] = cd

		files := make(map[string]string, len(visited))
		for _, v := range visited {
			files[v.AbsolutePath] = v.SourceText
		}

		if cfg.ShouldCompileIndependent {
			plan.NewUnit(version, cd, files)
		} else {
			plan.AppendToLast(version, cd, files)
		}
	}

	stats.Versions = len(plan.Versions())
	log.Info().Int("requested", stats.Requested).Int("skipped", stats.Skipped).Int("versions", stats.Versions).
		Msg("planner: plan built")

	return &Result{Plan: plan, Remappings: remapPrefixes, ByPath: byPath, Stats: stats}, nil
}

func requestedNames(ctx context.Context, cfg config.Config, nameIndex *resolver.NameIndexResolver) ([]string, error) {
	if !cfg.AllContracts() {
		return []string(cfg.Contracts), nil
	}
	all, err := nameIndex.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerating project contracts: %w", err)
	}
	names := make([]string, 0, len(all))
	for _, src := range all {
		names = append(names, basenameWithoutExt(src.AbsolutePath))
	}
	return names, nil
}

func basenameWithoutExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// bareImportPrefix extracts the leading "@scope/pkg"-style prefix from a
// logical import path, used to seed ImportRemappings from the union of
// resolved sources, per spec §4.E's final step.
func bareImportPrefix(logicalPath string) string {
	if !strings.HasPrefix(logicalPath, "@") {
		return ""
	}
	parts := strings.SplitN(logicalPath, "/", 3)
	if len(parts) < 2 {
		return logicalPath
	}
	return parts[0] + "/" + parts[1]
}
