package order

import "context"

// VisibilityPredicate decides whether an included adjustment stays
// visible in the totals output. Included adjustments describe price
// composition and are normally hidden from the customer; taxes are the
// legally mandated exception and the default keeps exactly those.
type VisibilityPredicate func(Adjustment) bool

// TaxStaysVisible is the default visibility rule for included
// adjustments.
func TaxStaysVisible(adj Adjustment) bool {
	return adj.Type == TypeTax
}

// Summary builds the display-ready totals view of an order.
type Summary struct {
	transformer Transformer
	pipeline    *Pipeline
	visible     VisibilityPredicate
}

// SummaryConfig groups Summary dependencies.
type SummaryConfig struct {
	// Transformer rewrites collected adjustments before filtering.
	// Defaults to CombiningTransformer.
	Transformer Transformer
	// Pipeline post-processes the assembled totals. Optional.
	Pipeline *Pipeline
	// VisibleWhenIncluded overrides the included-adjustment visibility
	// rule. Defaults to TaxStaysVisible.
	VisibleWhenIncluded VisibilityPredicate
}

// NewSummary constructs a Summary.
func NewSummary(cfg SummaryConfig) *Summary {
	transformer := cfg.Transformer
	if transformer == nil {
		transformer = CombiningTransformer()
	}
	visible := cfg.VisibleWhenIncluded
	if visible == nil {
		visible = TaxStaysVisible
	}
	return &Summary{
		transformer: transformer,
		pipeline:    cfg.Pipeline,
		visible:     visible,
	}
}

// BuildTotals collects, transforms and filters the order's adjustments,
// assembles the totals view from the order's own figures, and runs it
// through the pipeline. A subscriber error aborts the computation.
func (s *Summary) BuildTotals(ctx context.Context, ord *Order) (Totals, error) {
	adjustments := ord.CollectAdjustments()
	adjustments = s.transformer.ProcessAdjustments(adjustments)

	records := make([]AdjustmentRecord, 0, len(adjustments))
	for _, adj := range adjustments {
		if adj.Included && !s.visible(adj) {
			continue
		}
		records = append(records, newRecord(adj))
	}

	totals := Totals{
		Subtotal:    ord.SubtotalPrice(),
		Adjustments: records,
		Total:       ord.TotalPrice(),
	}
	return s.pipeline.Dispatch(ctx, ord, totals)
}
