package order

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/noah-isme/pricing-api/internal/money"
)

var (
	// ErrOrderCurrency is returned when an order mixes currencies between
	// its totals and its adjustments.
	ErrOrderCurrency = errors.New("order currency mismatch")
)

// Item is one order line. Item adjustments participate in the order's
// totals the same way order-level adjustments do.
type Item struct {
	ID          uuid.UUID
	Title       string
	Quantity    int
	UnitPrice   money.Money
	TotalPrice  money.Money
	Adjustments []Adjustment
}

// Order is the pricing view of a placed order. Subtotal and Total are
// the order's own authoritative figures, computed upstream; this
// package never recomputes them.
type Order struct {
	ID          uuid.UUID
	Subtotal    money.Money
	Total       money.Money
	Items       []Item
	Adjustments []Adjustment
}

// NewOrder validates currency consistency across the order's figures and
// every attached adjustment. Aggregation assumes one currency per order,
// so mixed input is rejected here, at the boundary.
func NewOrder(id uuid.UUID, subtotal, total money.Money, items []Item, adjustments []Adjustment) (*Order, error) {
	if subtotal.CurrencyCode == "" || total.CurrencyCode == "" {
		return nil, money.ErrCurrencyRequired
	}
	if subtotal.CurrencyCode != total.CurrencyCode {
		return nil, fmt.Errorf("%w: subtotal %s vs total %s", ErrOrderCurrency, subtotal.CurrencyCode, total.CurrencyCode)
	}
	currency := total.CurrencyCode
	for _, adj := range adjustments {
		if adj.Amount.CurrencyCode != currency {
			return nil, fmt.Errorf("%w: adjustment %q is %s", ErrOrderCurrency, adj.Label, adj.Amount.CurrencyCode)
		}
	}
	for _, item := range items {
		for _, adj := range item.Adjustments {
			if adj.Amount.CurrencyCode != currency {
				return nil, fmt.Errorf("%w: item %q adjustment %q is %s", ErrOrderCurrency, item.Title, adj.Label, adj.Amount.CurrencyCode)
			}
		}
	}
	return &Order{
		ID:          id,
		Subtotal:    subtotal,
		Total:       total,
		Items:       items,
		Adjustments: adjustments,
	}, nil
}

// CurrencyCode returns the order's currency.
func (o *Order) CurrencyCode() string {
	return o.Total.CurrencyCode
}

// SubtotalPrice returns the order's own subtotal.
func (o *Order) SubtotalPrice() money.Money {
	return o.Subtotal
}

// TotalPrice returns the order's own total.
func (o *Order) TotalPrice() money.Money {
	return o.Total
}

// CollectAdjustments returns order-level adjustments followed by item
// adjustments, in insertion order.
func (o *Order) CollectAdjustments() []Adjustment {
	collected := make([]Adjustment, 0, len(o.Adjustments))
	collected = append(collected, o.Adjustments...)
	for _, item := range o.Items {
		collected = append(collected, item.Adjustments...)
	}
	return collected
}
