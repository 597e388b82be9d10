// Package store holds store records and the resolution strategies that
// derive the current currency and country from them.
package store

import (
	"context"

	"github.com/google/uuid"
)

// Store is one storefront with its configured defaults.
type Store struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	DefaultCurrency string    `json:"defaultCurrency"`
	Country         string    `json:"country"`
	IsDefault       bool      `json:"isDefault"`
}

// Country is a two-letter country code resolved for the current request.
type Country struct {
	Code string `json:"code"`
}

// CurrentStore yields the store serving the current request. A nil
// store with a nil error means no store is resolvable (none configured
// yet); that is an expected outcome, not an error.
type CurrentStore interface {
	Store(ctx context.Context) (*Store, error)
}
