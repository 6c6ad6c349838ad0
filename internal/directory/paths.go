package directory

import (
	"context"
	"maps"
	"sync"
)

type pathsKey struct{}

// Paths maps tags to filesystem roots for one request. Tenant registrations
// shadow the shared defaults it was seeded with.
type Paths struct {
	mu    sync.RWMutex
	roots map[string]string
}

func NewPaths(defaults map[string]string) *Paths {
	roots := maps.Clone(defaults)
	if roots == nil {
		roots = map[string]string{}
	}

	return &Paths{roots: roots}
}

func (p *Paths) RegisterRoot(tag, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.roots[tag] = path
}

func (p *Paths) Root(tag string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	path, ok := p.roots[tag]

	return path, ok
}

// Roots returns a copy of every registered root.
func (p *Paths) Roots() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return maps.Clone(p.roots)
}

func WithPaths(ctx context.Context, p *Paths) context.Context {
	return context.WithValue(ctx, pathsKey{}, p)
}

func PathsFromContext(ctx context.Context) (*Paths, bool) {
	p, ok := ctx.Value(pathsKey{}).(*Paths)
	return p, ok
}
