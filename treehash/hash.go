// Package treehash computes the content-addressed source-tree hash: a
// deterministic digest over a root file and every file it transitively
// imports, by depth-first traversal through a spy-wrapped resolver. This
// couples hashing with import-closure discovery in a single walk, the same
// rationale the teacher applies in gps's HashInputs, which walks the
// dependency set once to produce both the solve-memoization digest and the
// set of packages that participated in it.
package treehash

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/sc-build/solbuild/resolver"
	"github.com/sc-build/solbuild/scansrc"
)

// Hash is a 32-byte source-tree digest.
type Hash [32]byte

// Hex renders the hash as a 0x-prefixed lowercase hex string, matching the
// ContractData.source_tree_hash_hex wire format.
func (h Hash) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

// Compute performs the traversal described in spec §4.C starting at root,
// resolving imports through spy (which also accumulates the transitive
// source set for the caller), and returns the tree hash plus every Source
// visited, in visit order.
//
// The final digest is taken over per-file hashes sorted by AbsolutePath,
// not visit order: the §3 invariant requires that reordering a file's own
// import statements leave the tree hash unchanged, but depth-first visit
// order is exactly the import order, so digesting in visit order would
// violate it. Sorting first (the same fix the teacher's gps/hash.go
// applies by sorting its own hash inputs) makes the digest depend only on
// the visited set's contents, matching §3 at the cost of the operational
// wording in §4.C, which is superseded here.
func Compute(ctx context.Context, root resolver.Source, spy *resolver.Spy) (Hash, []resolver.Source, error) {
	visited := make(map[string]struct{})
	var order []resolver.Source

	var visit func(src resolver.Source) error
	visit = func(src resolver.Source) error {
		if _, ok := visited[src.AbsolutePath]; ok {
			return nil
		}
		visited[src.AbsolutePath] = struct{}{}
		order = append(order, src)

		scanned, err := scansrc.Scan(src.SourceText)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", src.AbsolutePath, err)
		}
		for _, imp := range scanned.Imports {
			child, err := spy.Resolve(ctx, imp.Path)
			if err != nil {
				return fmt.Errorf("resolving import %q from %s: %w", imp.Path, src.AbsolutePath, err)
			}
			if err := visit(child); err != nil {
				return err
			}
		}
		return nil
	}

	if err := visit(root); err != nil {
		return Hash{}, nil, err
	}

	sorted := make([]resolver.Source, len(order))
	copy(sorted, order)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AbsolutePath < sorted[j].AbsolutePath })

	h := sha256.New()
	for _, src := range sorted {
		fh := sha256.Sum256([]byte(src.SourceText))
		h.Write(fh[:])
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out, order, nil
}
