package resolver

import (
	"context"
	"path/filepath"
	"strings"

	radix "github.com/armon/go-radix"
)

// RegistryResolver resolves bare, package-prefixed specifiers such as
// "@openzeppelin/contracts/token/ERC20.sol" against a set of configured
// dependency-registry roots, matched by longest prefix with a radix trie —
// the same data structure the name-index strategy (see name_index.go) uses
// for its own lookups, grounded on the teacher's typed_radix.go wrapper
// around github.com/armon/go-radix.
type RegistryResolver struct {
	tree *radix.Tree
}

// NewRegistryResolver builds a resolver from a map of bare prefix (e.g.
// "@openzeppelin") to the filesystem directory that prefix resolves to.
func NewRegistryResolver(roots map[string]string) *RegistryResolver {
	t := radix.New()
	for prefix, root := range roots {
		t.Insert(prefix, root)
	}
	return &RegistryResolver{tree: t}
}

func (r *RegistryResolver) Resolve(ctx context.Context, name string) (Source, error) {
	if !strings.HasPrefix(name, "@") {
		return Source{}, ErrNotApplicable
	}
	prefix, root, ok := r.tree.LongestPrefix(name)
	if !ok {
		return Source{}, ErrNotApplicable
	}
	rest := strings.TrimPrefix(name, prefix)
	rest = strings.TrimPrefix(rest, "/")
	abs := filepath.Join(root.(string), rest)
	text, err := readIfExists(abs)
	if err != nil {
		return Source{}, err
	}
	if text == nil {
		return Source{}, ErrNotApplicable
	}
	return Source{LogicalPath: name, AbsolutePath: abs, SourceText: *text}, nil
}

func (r *RegistryResolver) GetAll(ctx context.Context) ([]Source, error) {
	return nil, ErrNotApplicable
}

// Roots returns every configured prefix -> root pair.
func (r *RegistryResolver) Roots() map[string]string {
	out := make(map[string]string)
	r.tree.Walk(func(k string, v interface{}) bool {
		out[k] = v.(string)
		return false
	})
	return out
}
