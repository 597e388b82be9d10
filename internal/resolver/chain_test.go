package resolver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pricing-api/internal/resolver"
)

func fixed(value string) resolver.Strategy[string] {
	return resolver.StrategyFunc[string](func(ctx context.Context) (*string, error) {
		return &value, nil
	})
}

func deferring(calls *int) resolver.Strategy[string] {
	return resolver.StrategyFunc[string](func(ctx context.Context) (*string, error) {
		if calls != nil {
			*calls++
		}
		return nil, nil
	})
}

func TestChainFirstResponderWins(t *testing.T) {
	var afterCalls int
	chain, err := resolver.NewChain[string](fixed("first"), resolver.StrategyFunc[string](func(ctx context.Context) (*string, error) {
		afterCalls++
		return nil, nil
	}))
	require.NoError(t, err)

	result, err := chain.Resolve(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, "first", *result)
	require.Zero(t, afterCalls)
}

func TestChainSkipsDeferringStrategies(t *testing.T) {
	var skipped int
	chain, err := resolver.NewChain[string](deferring(&skipped), deferring(&skipped), fixed("fallback"))
	require.NoError(t, err)

	result, err := chain.Resolve(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, "fallback", *result)
	require.Equal(t, 2, skipped)
}

func TestChainAllDefer(t *testing.T) {
	chain, err := resolver.NewChain[string](deferring(nil), deferring(nil))
	require.NoError(t, err)

	result, err := chain.Resolve(context.Background())
	require.NoError(t, err)
	require.Nil(t, result)
}

func TestChainEmpty(t *testing.T) {
	chain, err := resolver.NewChain[string]()
	require.NoError(t, err)

	result, err := chain.Resolve(context.Background())
	require.NoError(t, err)
	require.Nil(t, result)
}

func TestChainStrategyError(t *testing.T) {
	boom := errors.New("backend down")
	chain, err := resolver.NewChain[string](
		resolver.StrategyFunc[string](func(ctx context.Context) (*string, error) {
			return nil, boom
		}),
		fixed("unreached"),
	)
	require.NoError(t, err)

	result, err := chain.Resolve(context.Background())
	require.ErrorIs(t, err, boom)
	require.Nil(t, result)
}

func TestChainRejectsNilStrategy(t *testing.T) {
	_, err := resolver.NewChain[string](fixed("a"), nil, fixed("b"))
	require.ErrorIs(t, err, resolver.ErrNilStrategy)
	require.ErrorContains(t, err, "position 1")
}

func TestChainNests(t *testing.T) {
	inner, err := resolver.NewChain[string](deferring(nil), fixed("inner"))
	require.NoError(t, err)
	outer, err := resolver.NewChain[string](deferring(nil), inner)
	require.NoError(t, err)

	result, err := outer.Resolve(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, "inner", *result)
}
