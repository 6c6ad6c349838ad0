package errs

import (
	"errors"

	"github.com/openkcm/tenancy/utils/ptr"
)

// Exposable is an error representation that can be handed to a client.
type Exposable[T any] interface {
	SetContext(m *map[string]any)
	DefaultError() T
	// Clone returns a copy that can be given context without touching the mapping.
	Clone() T
}

// Mapping binds a chain of internal errors to the error exposed for it.
type Mapping[T Exposable[T]] struct {
	Chain         []error
	Exposed       T
	ContextGetter func(error) map[string]any
}

// Mapper picks the exposed error for an internal error chain.
type Mapper[T Exposable[T]] struct {
	mappings []Mapping[T]
	priority []Mapping[T]
}

func NewMapper[T Exposable[T]](mappings []Mapping[T], priority []Mapping[T]) Mapper[T] {
	return Mapper[T]{
		mappings: mappings,
		priority: priority,
	}
}

// Transform selects a mapping with the following rules:
// 1. the first priority mapping with any error in the chain wins
// 2. otherwise the mapping whose whole chain matches with the most errors wins
// 3. otherwise the default error of T is returned
func (m Mapper[T]) Transform(err error) T {
	for _, p := range m.priority {
		if matching(err, p.Chain) > 0 {
			return p.Exposed
		}
	}

	var (
		best      *Mapping[T]
		bestCount int
	)

	for i := range m.mappings {
		count := matching(err, m.mappings[i].Chain)
		if count == 0 || count < len(m.mappings[i].Chain) {
			continue
		}

		if count > bestCount {
			best = &m.mappings[i]
			bestCount = count
		}
	}

	if best == nil {
		var zero T
		return zero.DefaultError()
	}

	if best.ContextGetter == nil {
		return best.Exposed
	}

	exposed := best.Exposed.Clone()
	exposed.SetContext(ptr.PointTo(best.ContextGetter(err)))

	return exposed
}

func matching(err error, chain []error) int {
	count := 0

	for _, candidate := range chain {
		if errors.Is(err, candidate) {
			count++
		}
	}

	return count
}
