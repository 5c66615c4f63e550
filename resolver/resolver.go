// Package resolver maps logical import names to resolved source records.
//
// It is modeled as a capability (Resolve, GetAll) plus a fallthrough chain
// of built-in strategies, rather than a class hierarchy: each strategy is a
// value implementing Resolver, and Chain owns an ordered sequence of them.
// This mirrors the teacher's own preference for small composable values
// over inheritance (see golang-dep's sourceManager, which wraps several
// independent source types behind one capability instead of subclassing).
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sc-build/solbuild/internal/scerrors"
)

// Source is a resolved source record. Its identity is AbsolutePath.
type Source struct {
	LogicalPath  string // project-relative
	AbsolutePath string
	SourceText   string
}

// ErrNotApplicable signals that a strategy declines a name; the chain
// continues to the next strategy. Any other error is a hard I/O failure and
// aborts the chain immediately.
var ErrNotApplicable = errors.New("resolver: strategy not applicable")

// Resolver maps a logical name to a Source, and can enumerate every source
// reachable under its root.
type Resolver interface {
	Resolve(ctx context.Context, name string) (Source, error)
	GetAll(ctx context.Context) ([]Source, error)
}

// Chain tries a sequence of Resolvers in order, falling through on
// ErrNotApplicable and stopping on the first success or hard error.
type Chain struct {
	Strategies []Resolver
}

func NewChain(strategies ...Resolver) *Chain {
	return &Chain{Strategies: strategies}
}

func (c *Chain) Resolve(ctx context.Context, name string) (Source, error) {
	var lastErr error
	for _, s := range c.Strategies {
		src, err := s.Resolve(ctx, name)
		if err == nil {
			return src, nil
		}
		if errors.Is(err, ErrNotApplicable) {
			lastErr = err
			continue
		}
		return Source{}, fmt.Errorf("resolving %q: %w", name, err)
	}
	return Source{}, &scerrors.NameResolutionError{Name: name, Tail: lastErr}
}

// GetAll enumerates every source known to every strategy capable of
// enumeration, in strategy order, first-seen-wins by AbsolutePath.
func (c *Chain) GetAll(ctx context.Context) ([]Source, error) {
	seen := make(map[string]struct{})
	var all []Source
	for _, s := range c.Strategies {
		srcs, err := s.GetAll(ctx)
		if err != nil {
			if errors.Is(err, ErrNotApplicable) {
				continue
			}
			return nil, err
		}
		for _, src := range srcs {
			if _, ok := seen[src.AbsolutePath]; ok {
				continue
			}
			seen[src.AbsolutePath] = struct{}{}
			all = append(all, src)
		}
	}
	return all, nil
}

// Spy wraps a Resolver and records, under a mutex, every Source it yields
// directly or (via GetAll calls made through it) transitively, across one
// planning walk. It is the instrument the source-tree hasher uses to
// discover the transitive import set while it hashes, instead of walking
// twice.
type Spy struct {
	mu       sync.Mutex
	inner    Resolver
	recorded map[string]Source
}

func NewSpy(inner Resolver) *Spy {
	return &Spy{inner: inner, recorded: make(map[string]Source)}
}

func (s *Spy) Resolve(ctx context.Context, name string) (Source, error) {
	src, err := s.inner.Resolve(ctx, name)
	if err != nil {
		return Source{}, err
	}
	s.record(src)
	return src, nil
}

func (s *Spy) GetAll(ctx context.Context) ([]Source, error) {
	srcs, err := s.inner.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, src := range srcs {
		s.record(src)
	}
	return srcs, nil
}

func (s *Spy) record(src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recorded[src.AbsolutePath]; !ok {
		log.Debug().Str("path", src.AbsolutePath).Msg("resolver: recorded source")
	}
	s.recorded[src.AbsolutePath] = src
}

// Recorded returns every Source seen so far, in no particular order.
func (s *Spy) Recorded() []Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Source, 0, len(s.recorded))
	for _, src := range s.recorded {
		out = append(out, src)
	}
	return out
}
