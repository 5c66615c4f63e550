package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRegistryResolverLongestPrefixMatch(t *testing.T) {
	ozDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(ozDir, "token"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(ozDir, "token"), "ERC20.sol", "contract ERC20 {}")

	r := NewRegistryResolver(map[string]string{"@openzeppelin/contracts": ozDir})
	src, err := r.Resolve(context.Background(), "@openzeppelin/contracts/token/ERC20.sol")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src.SourceText != "contract ERC20 {}" {
		t.Fatalf("got %q", src.SourceText)
	}
}

func TestRegistryResolverNotApplicableWithoutAtPrefix(t *testing.T) {
	r := NewRegistryResolver(map[string]string{"@openzeppelin/contracts": t.TempDir()})
	if _, err := r.Resolve(context.Background(), "./Local.sol"); err != ErrNotApplicable {
		t.Fatalf("got %v, want ErrNotApplicable", err)
	}
}

func TestRegistryResolverRoots(t *testing.T) {
	roots := map[string]string{"@openzeppelin/contracts": "/a", "@uniswap/v2-core": "/b"}
	r := NewRegistryResolver(roots)
	got := r.Roots()
	if len(got) != 2 || got["@openzeppelin/contracts"] != "/a" || got["@uniswap/v2-core"] != "/b" {
		t.Fatalf("got %+v", got)
	}
}
