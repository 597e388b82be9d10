package order

import (
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/pricing-api/internal/money"
)

// Adjustment type tags understood by the storefront. Custom pricing
// rules may introduce additional tags; only TypeTax carries special
// visibility semantics.
const (
	TypeTax      = "tax"
	TypeDiscount = "discount"
	TypeShipping = "shipping"
	TypeFee      = "fee"
	TypeCustom   = "custom"
)

var (
	// ErrAdjustmentType is returned when an adjustment has no type tag.
	ErrAdjustmentType = errors.New("adjustment type is required")
	// ErrAdjustmentLabel is returned when an adjustment has no display label.
	ErrAdjustmentLabel = errors.New("adjustment label is required")
)

// Adjustment is an immutable signed monetary delta applied to an order
// or order item. Included adjustments are already reflected in the unit
// price and are normally hidden from the customer.
type Adjustment struct {
	Type       string
	Label      string
	Amount     money.Money
	SourceID   string
	PercentBps *int32
	Included   bool
}

// NewAdjustment validates and constructs an Adjustment.
func NewAdjustment(adjType, label string, amount money.Money, opts ...AdjustmentOption) (Adjustment, error) {
	adjType = strings.TrimSpace(adjType)
	if adjType == "" {
		return Adjustment{}, ErrAdjustmentType
	}
	if strings.TrimSpace(label) == "" {
		return Adjustment{}, ErrAdjustmentLabel
	}
	if amount.CurrencyCode == "" {
		return Adjustment{}, fmt.Errorf("adjustment %q: %w", label, money.ErrCurrencyRequired)
	}
	a := Adjustment{Type: adjType, Label: label, Amount: amount}
	for _, opt := range opts {
		opt(&a)
	}
	return a, nil
}

// AdjustmentOption customises optional adjustment fields at construction.
type AdjustmentOption func(*Adjustment)

// WithSourceID tags the adjustment with the originating rule identifier,
// optionally formatted as "prefix|suffix".
func WithSourceID(sourceID string) AdjustmentOption {
	return func(a *Adjustment) { a.SourceID = sourceID }
}

// WithPercentBps records the rate, in basis points, for percentage-based
// adjustments.
func WithPercentBps(bps int32) AdjustmentOption {
	return func(a *Adjustment) { a.PercentBps = &bps }
}

// WithIncluded marks the adjustment as already baked into the unit price.
func WithIncluded() AdjustmentOption {
	return func(a *Adjustment) { a.Included = true }
}

// WithLabel returns a copy of the adjustment carrying a new label.
// Adjustments are value objects; rewrites never mutate in place.
func (a Adjustment) WithLabel(label string) Adjustment {
	a.Label = label
	return a
}

// SourcePrefix returns the segment of SourceID before the first "|"
// delimiter, or the whole SourceID when no delimiter is present.
func (a Adjustment) SourcePrefix() string {
	prefix, _, _ := strings.Cut(a.SourceID, "|")
	return prefix
}
