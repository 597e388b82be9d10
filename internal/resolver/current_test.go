package resolver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pricing-api/internal/resolver"
)

func countingStrategy(calls *int, value *string) resolver.Strategy[string] {
	return resolver.StrategyFunc[string](func(ctx context.Context) (*string, error) {
		*calls++
		return value, nil
	})
}

func scopedContext() context.Context {
	return resolver.WithScope(context.Background(), resolver.NewScope(nil))
}

func TestCurrentMemoizesWithinScope(t *testing.T) {
	var calls int
	value := "USD"
	current, err := resolver.NewCurrent[string]("currency", countingStrategy(&calls, &value))
	require.NoError(t, err)

	ctx := scopedContext()
	for i := 0; i < 3; i++ {
		result, err := current.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, result)
		require.Equal(t, "USD", *result)
	}
	require.Equal(t, 1, calls)
}

func TestCurrentScopesAreIndependent(t *testing.T) {
	var calls int
	value := "USD"
	current, err := resolver.NewCurrent[string]("currency", countingStrategy(&calls, &value))
	require.NoError(t, err)

	_, err = current.Get(scopedContext())
	require.NoError(t, err)
	_, err = current.Get(scopedContext())
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestCurrentWithoutScopeNeverCaches(t *testing.T) {
	var calls int
	value := "USD"
	current, err := resolver.NewCurrent[string]("currency", countingStrategy(&calls, &value))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = current.Get(ctx)
	require.NoError(t, err)
	_, err = current.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestCurrentCachesMisses(t *testing.T) {
	var calls int
	current, err := resolver.NewCurrent[string]("currency", countingStrategy(&calls, nil))
	require.NoError(t, err)

	ctx := scopedContext()
	result, err := current.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, result)
	result, err = current.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, result)
	require.Equal(t, 1, calls)
}

func TestCurrentDoesNotCacheErrors(t *testing.T) {
	var calls int
	boom := errors.New("flaky")
	current, err := resolver.NewCurrent[string]("currency", resolver.StrategyFunc[string](func(ctx context.Context) (*string, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		value := "USD"
		return &value, nil
	}))
	require.NoError(t, err)

	ctx := scopedContext()
	_, err = current.Get(ctx)
	require.ErrorIs(t, err, boom)

	result, err := current.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, 2, calls)
}

func TestCurrentKindsDoNotCollide(t *testing.T) {
	usd := "USD"
	id := "ID"
	currency, err := resolver.NewCurrent[string]("currency", fixed(usd))
	require.NoError(t, err)
	country, err := resolver.NewCurrent[string]("country", fixed(id))
	require.NoError(t, err)

	ctx := scopedContext()
	got, err := currency.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, usd, *got)
	got, err = country.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, id, *got)
}

func TestCurrentCacheHitCallback(t *testing.T) {
	value := "USD"
	current, err := resolver.NewCurrent[string]("currency", fixed(value))
	require.NoError(t, err)
	var hits []string
	current.OnCacheHit(func(kind string) { hits = append(hits, kind) })

	ctx := scopedContext()
	_, err = current.Get(ctx)
	require.NoError(t, err)
	require.Empty(t, hits)
	_, err = current.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"currency"}, hits)
}

func TestNewCurrentValidation(t *testing.T) {
	_, err := resolver.NewCurrent[string]("  ", fixed("x"))
	require.ErrorIs(t, err, resolver.ErrKindRequired)

	_, err = resolver.NewCurrent[string]("currency", nil)
	require.ErrorIs(t, err, resolver.ErrChainRequired)
}
