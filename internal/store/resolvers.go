package store

import (
	"context"
	"strings"

	"github.com/noah-isme/pricing-api/internal/money"
	"github.com/noah-isme/pricing-api/internal/resolver"
)

// CurrencyResolver returns the default store's configured currency. It
// is the terminal link of the currency chain; custom strategies run
// ahead of it.
func CurrencyResolver(current CurrentStore) resolver.Strategy[money.Currency] {
	return resolver.StrategyFunc[money.Currency](func(ctx context.Context) (*money.Currency, error) {
		s, err := current.Store(ctx)
		if err != nil {
			return nil, err
		}
		if s == nil || s.DefaultCurrency == "" {
			return nil, nil
		}
		return &money.Currency{Code: s.DefaultCurrency}, nil
	})
}

// CountryResolver returns the default store's configured country. It is
// the terminal link of the country chain.
func CountryResolver(current CurrentStore) resolver.Strategy[Country] {
	return resolver.StrategyFunc[Country](func(ctx context.Context) (*Country, error) {
		s, err := current.Store(ctx)
		if err != nil {
			return nil, err
		}
		if s == nil || s.Country == "" {
			return nil, nil
		}
		return &Country{Code: s.Country}, nil
	})
}

// QueryCurrencyResolver reads an explicit "?currency=XXX" override from
// the request carried by the resolution scope. Malformed values defer
// to the next strategy.
func QueryCurrencyResolver() resolver.Strategy[money.Currency] {
	return resolver.StrategyFunc[money.Currency](func(ctx context.Context) (*money.Currency, error) {
		scope := resolver.ScopeFrom(ctx)
		if scope == nil || scope.Request() == nil {
			return nil, nil
		}
		code := strings.ToUpper(strings.TrimSpace(scope.Request().URL.Query().Get("currency")))
		if !isAlpha(code, 3) {
			return nil, nil
		}
		return &money.Currency{Code: code}, nil
	})
}

// HeaderCountryResolver reads the "X-Country" header set by the edge
// (CDN geolocation). Malformed values defer to the next strategy.
func HeaderCountryResolver() resolver.Strategy[Country] {
	return resolver.StrategyFunc[Country](func(ctx context.Context) (*Country, error) {
		scope := resolver.ScopeFrom(ctx)
		if scope == nil || scope.Request() == nil {
			return nil, nil
		}
		code := strings.ToUpper(strings.TrimSpace(scope.Request().Header.Get("X-Country")))
		if !isAlpha(code, 2) {
			return nil, nil
		}
		return &Country{Code: code}, nil
	})
}

func isAlpha(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
