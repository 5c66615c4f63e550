package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// URLResolver fetches http(s) import specifiers directly, the first
// strategy tried by the default chain per spec.
type URLResolver struct {
	Client *http.Client
}

func NewURLResolver() *URLResolver {
	return &URLResolver{Client: &http.Client{Timeout: 30 * time.Second}}
}

func (r *URLResolver) Resolve(ctx context.Context, name string) (Source, error) {
	if !strings.HasPrefix(name, "http://") && !strings.HasPrefix(name, "https://") {
		return Source{}, ErrNotApplicable
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, name, nil)
	if err != nil {
		return Source{}, fmt.Errorf("building request for %s: %w", name, err)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return Source{}, fmt.Errorf("fetching %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Source{}, fmt.Errorf("fetching %s: status %s", name, resp.Status)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Source{}, fmt.Errorf("reading body of %s: %w", name, err)
	}
	return Source{LogicalPath: name, AbsolutePath: name, SourceText: string(b)}, nil
}

func (r *URLResolver) GetAll(ctx context.Context) ([]Source, error) {
	return nil, ErrNotApplicable
}
