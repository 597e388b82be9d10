// Package resolver implements first-responder-wins resolution chains
// and their per-request memoization.
//
// A chain runs its strategies one by one until one of them returns a
// value. Store-default strategies run last; custom strategies (URL,
// header, profile based) register ahead of them. A chain is itself a
// Strategy, so chains can nest.
package resolver

import (
	"context"
	"errors"
	"fmt"
)

// ErrNilStrategy is returned when a chain is constructed with a nil
// strategy. Chains are wired once at startup; a nil link is a
// configuration mistake surfaced immediately, not at resolution time.
var ErrNilStrategy = errors.New("resolver: nil strategy")

// Strategy attempts to produce a value. Returning (nil, nil) defers to
// the next strategy in the chain; an error aborts resolution.
type Strategy[T any] interface {
	Resolve(ctx context.Context) (*T, error)
}

// StrategyFunc adapts a plain function to the Strategy interface.
type StrategyFunc[T any] func(ctx context.Context) (*T, error)

// Resolve implements Strategy.
func (f StrategyFunc[T]) Resolve(ctx context.Context) (*T, error) {
	return f(ctx)
}

// Chain consults an ordered list of strategies and returns the first
// non-nil result. Safe for concurrent use; the strategy list is fixed
// at construction.
type Chain[T any] struct {
	strategies []Strategy[T]
}

// NewChain constructs a Chain over the given strategies, in priority
// order (first entry runs first).
func NewChain[T any](strategies ...Strategy[T]) (*Chain[T], error) {
	for i, s := range strategies {
		if s == nil {
			return nil, fmt.Errorf("%w at position %d", ErrNilStrategy, i)
		}
	}
	return &Chain[T]{strategies: strategies}, nil
}

// Resolve implements Strategy. Strategies after the first responder are
// never invoked; when every strategy defers the result is (nil, nil).
func (c *Chain[T]) Resolve(ctx context.Context) (*T, error) {
	for _, s := range c.strategies {
		result, err := s.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
	}
	return nil, nil
}
