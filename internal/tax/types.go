// Package tax carries the tax type catalog and the totals subscriber
// that annotates tax adjustment labels with their rate.
package tax

import "context"

// Type describes a configured tax type. Adjustment source IDs reference
// a type by its ID in the segment before the first "|".
type Type struct {
	ID                 string `json:"id"`
	Label              string `json:"label"`
	DisplayRateInLabel bool   `json:"displayRateInLabel"`
}

// TypeProvider yields the IDs of tax types whose rate should appear in
// adjustment labels.
type TypeProvider interface {
	DisplayRateTypeIDs(ctx context.Context) (map[string]struct{}, error)
}

// Catalog lists the configured tax types.
type Catalog interface {
	List(ctx context.Context) ([]Type, error)
}

// StaticTypeProvider serves a fixed tax type catalog. Used in tests and
// in deployments that configure tax types without a database.
type StaticTypeProvider struct {
	Types []Type
}

// List implements Catalog.
func (p StaticTypeProvider) List(_ context.Context) ([]Type, error) {
	out := make([]Type, len(p.Types))
	copy(out, p.Types)
	return out, nil
}

// DisplayRateTypeIDs implements TypeProvider.
func (p StaticTypeProvider) DisplayRateTypeIDs(_ context.Context) (map[string]struct{}, error) {
	ids := make(map[string]struct{}, len(p.Types))
	for _, t := range p.Types {
		if t.DisplayRateInLabel {
			ids[t.ID] = struct{}{}
		}
	}
	return ids, nil
}
