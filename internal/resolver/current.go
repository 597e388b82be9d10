package resolver

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrKindRequired is returned when a Current is built without a
	// cache kind.
	ErrKindRequired = errors.New("resolver: kind is required")
	// ErrChainRequired is returned when a Current is built without a
	// chain.
	ErrChainRequired = errors.New("resolver: chain is required")
)

// Current memoizes a resolution chain's result for the lifetime of one
// request. Without an active request scope the chain is consulted on
// every call and nothing is cached.
type Current[T any] struct {
	kind  string
	chain Strategy[T]
	onHit func(kind string)
}

// OnCacheHit registers an optional callback fired when Get serves a
// value from the per-request cache. Set during wiring, before use.
func (c *Current[T]) OnCacheHit(fn func(kind string)) {
	c.onHit = fn
}

// NewCurrent constructs a Current. The kind keys the per-request cache
// slot, e.g. "currency" or "country".
func NewCurrent[T any](kind string, chain Strategy[T]) (*Current[T], error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return nil, ErrKindRequired
	}
	if chain == nil {
		return nil, ErrChainRequired
	}
	return &Current[T]{kind: kind, chain: chain}, nil
}

// Get returns the resolved value for the current request, consulting
// the chain at most once per request per kind. Misses (nil) are cached
// like any other result; chain errors are not cached.
func (c *Current[T]) Get(ctx context.Context) (*T, error) {
	scope := ScopeFrom(ctx)
	if scope == nil {
		return c.chain.Resolve(ctx)
	}
	if cached, ok := scope.lookup(c.kind); ok {
		if c.onHit != nil {
			c.onHit(c.kind)
		}
		if cached == nil {
			return nil, nil
		}
		return cached.(*T), nil
	}
	result, err := c.chain.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if result == nil {
		scope.store(c.kind, nil)
		return nil, nil
	}
	scope.store(c.kind, result)
	return result, nil
}
