package order

import "github.com/noah-isme/pricing-api/internal/money"

// AdjustmentRecord is the flattened, display-ready form of an
// adjustment. Total mirrors Amount; older storefront consumers read the
// summed figure under that name and the alias is kept for them.
type AdjustmentRecord struct {
	Type       string      `json:"type"`
	Label      string      `json:"label"`
	Amount     money.Money `json:"amount"`
	Total      money.Money `json:"total"`
	SourceID   string      `json:"sourceId,omitempty"`
	PercentBps *int32      `json:"percentBps,omitempty"`
	Included   bool        `json:"included"`
}

// Totals is the aggregated subtotal/adjustments/total view of an order,
// prepared for display. It is a presentation view, never a source of
// truth: Total always equals the order's own computed total.
type Totals struct {
	Subtotal    money.Money        `json:"subtotal"`
	Adjustments []AdjustmentRecord `json:"adjustments"`
	Total       money.Money        `json:"total"`
}

func newRecord(adj Adjustment) AdjustmentRecord {
	return AdjustmentRecord{
		Type:       adj.Type,
		Label:      adj.Label,
		Amount:     adj.Amount,
		Total:      adj.Amount,
		SourceID:   adj.SourceID,
		PercentBps: adj.PercentBps,
		Included:   adj.Included,
	}
}
