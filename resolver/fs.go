package resolver

import (
	"context"
	"os"
	"path/filepath"
)

// RelativeFSResolver resolves names that are project-relative paths
// (e.g. "./Foo.sol" or "contracts/Foo.sol"), rooted at Dir.
type RelativeFSResolver struct {
	Dir string
}

func (r *RelativeFSResolver) Resolve(ctx context.Context, name string) (Source, error) {
	if filepath.IsAbs(name) {
		return Source{}, ErrNotApplicable
	}
	abs := filepath.Join(r.Dir, name)
	text, err := readIfExists(abs)
	if err != nil {
		return Source{}, err
	}
	if text == nil {
		return Source{}, ErrNotApplicable
	}
	rel, err := filepath.Rel(r.Dir, abs)
	if err != nil {
		rel = name
	}
	return Source{LogicalPath: rel, AbsolutePath: abs, SourceText: *text}, nil
}

func (r *RelativeFSResolver) GetAll(ctx context.Context) ([]Source, error) {
	return nil, ErrNotApplicable
}

// AbsoluteFSResolver resolves names that are already absolute filesystem
// paths.
type AbsoluteFSResolver struct {
	ProjectRoot string
}

func (r *AbsoluteFSResolver) Resolve(ctx context.Context, name string) (Source, error) {
	if !filepath.IsAbs(name) {
		return Source{}, ErrNotApplicable
	}
	text, err := readIfExists(name)
	if err != nil {
		return Source{}, err
	}
	if text == nil {
		return Source{}, ErrNotApplicable
	}
	rel, err := filepath.Rel(r.ProjectRoot, name)
	if err != nil {
		rel = name
	}
	return Source{LogicalPath: rel, AbsolutePath: name, SourceText: *text}, nil
}

func (r *AbsoluteFSResolver) GetAll(ctx context.Context) ([]Source, error) {
	return nil, ErrNotApplicable
}

// readIfExists returns (nil, nil) when the path does not exist, so callers
// can distinguish "not applicable, try next strategy" from a real I/O
// failure such as a permission error.
func readIfExists(path string) (*string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	s := string(b)
	return &s, nil
}
