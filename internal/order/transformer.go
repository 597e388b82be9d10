package order

// Transformer rewrites collected adjustments before they are filtered
// and displayed. Implementations must not mutate the input slice.
type Transformer interface {
	ProcessAdjustments(adjustments []Adjustment) []Adjustment
}

// TransformerFunc adapts a plain function to the Transformer interface.
type TransformerFunc func([]Adjustment) []Adjustment

// ProcessAdjustments implements Transformer.
func (f TransformerFunc) ProcessAdjustments(adjustments []Adjustment) []Adjustment {
	return f(adjustments)
}

// NopTransformer returns the adjustments unchanged.
func NopTransformer() Transformer {
	return TransformerFunc(func(adjustments []Adjustment) []Adjustment {
		return adjustments
	})
}

// CombiningTransformer merges adjustments sharing a type and source into
// one entry with the summed amount. A tax rule applied per order item
// therefore shows as a single order-level line. The first occurrence
// keeps its position, label and rate; adjustments without a source are
// never merged.
func CombiningTransformer() Transformer {
	return TransformerFunc(combineAdjustments)
}

func combineAdjustments(adjustments []Adjustment) []Adjustment {
	type key struct {
		adjType  string
		sourceID string
	}
	combined := make([]Adjustment, 0, len(adjustments))
	index := make(map[key]int)
	for _, adj := range adjustments {
		if adj.SourceID == "" {
			combined = append(combined, adj)
			continue
		}
		k := key{adjType: adj.Type, sourceID: adj.SourceID}
		at, seen := index[k]
		if !seen {
			index[k] = len(combined)
			combined = append(combined, adj)
			continue
		}
		sum, err := combined[at].Amount.Add(adj.Amount)
		if err != nil {
			// Mixed currencies are rejected upstream by NewOrder; keep
			// the entry separate rather than dropping money silently.
			combined = append(combined, adj)
			continue
		}
		merged := combined[at]
		merged.Amount = sum
		combined[at] = merged
	}
	return combined
}
