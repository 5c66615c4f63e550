package resolver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	radix "github.com/armon/go-radix"
	"github.com/karrick/godirwalk"
)

// NameIndexResolver is the project-wide "name resolver": it walks the
// project directory once with github.com/karrick/godirwalk (chosen over
// filepath.WalkDir for the same reason the teacher picked it for its own
// project-tree scans: it avoids a lstat-per-entry on platforms where the
// directory read already returns the entry type) and indexes every source
// file it finds by basename in a radix trie, so repeated basename lookups
// during planning are O(matching keys) rather than a fresh directory walk
// each time.
type NameIndexResolver struct {
	Dir       string
	Extension string // e.g. ".sol"; "" matches all files

	once    sync.Once
	onceErr error
	byBase  *radix.Tree // basename (without extension) -> []absolute path
}

func NewNameIndexResolver(dir, extension string) *NameIndexResolver {
	return &NameIndexResolver{Dir: dir, Extension: extension}
}

func (r *NameIndexResolver) ensureIndexed() error {
	r.once.Do(func() {
		r.byBase = radix.New()
		r.onceErr = godirwalk.Walk(r.Dir, &godirwalk.Options{
			Unsorted: true,
			Callback: func(path string, de *godirwalk.Dirent) error {
				if de.IsDir() {
					return nil
				}
				if r.Extension != "" && filepath.Ext(path) != r.Extension {
					return nil
				}
				base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				var paths []string
				if v, ok := r.byBase.Get(base); ok {
					paths = v.([]string)
				}
				paths = append(paths, path)
				r.byBase.Insert(base, paths)
				return nil
			},
		})
	})
	return r.onceErr
}

func (r *NameIndexResolver) Resolve(ctx context.Context, name string) (Source, error) {
	if err := r.ensureIndexed(); err != nil {
		return Source{}, fmt.Errorf("indexing %s: %w", r.Dir, err)
	}
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	v, ok := r.byBase.Get(base)
	if !ok {
		return Source{}, ErrNotApplicable
	}
	paths := v.([]string)
	if len(paths) == 0 {
		return Source{}, ErrNotApplicable
	}
	abs := paths[0]
	b, err := os.ReadFile(abs)
	if err != nil {
		return Source{}, fmt.Errorf("reading %s: %w", abs, err)
	}
	rel, err := filepath.Rel(r.Dir, abs)
	if err != nil {
		rel = abs
	}
	return Source{LogicalPath: rel, AbsolutePath: abs, SourceText: string(b)}, nil
}

func (r *NameIndexResolver) GetAll(ctx context.Context) ([]Source, error) {
	if err := r.ensureIndexed(); err != nil {
		return nil, fmt.Errorf("indexing %s: %w", r.Dir, err)
	}
	var all []Source
	r.byBase.Walk(func(_ string, v interface{}) bool {
		for _, abs := range v.([]string) {
			b, err := os.ReadFile(abs)
			if err != nil {
				continue
			}
			rel, err := filepath.Rel(r.Dir, abs)
			if err != nil {
				rel = abs
			}
			all = append(all, Source{LogicalPath: rel, AbsolutePath: abs, SourceText: string(b)})
		}
		return false
	})
	return all, nil
}
