package order

import (
	"context"
	"fmt"
	"sort"
)

// TotalsEvent carries the totals under construction through the
// pipeline. Subscribers replace the payload via SetTotals; later
// subscribers observe the value left by earlier ones.
type TotalsEvent struct {
	order  *Order
	totals Totals
}

// Order returns the order the totals belong to.
func (e *TotalsEvent) Order() *Order {
	return e.order
}

// Totals returns the current totals payload.
func (e *TotalsEvent) Totals() Totals {
	return e.totals
}

// SetTotals replaces the totals payload.
func (e *TotalsEvent) SetTotals(totals Totals) {
	e.totals = totals
}

// SubscriberFunc rewrites the event's totals. An error aborts the whole
// dispatch; there is no retry and no partial-result suppression.
type SubscriberFunc func(ctx context.Context, event *TotalsEvent) error

type subscriber struct {
	name     string
	priority int
	seq      int
	fn       SubscriberFunc
}

// Pipeline fans a totals event out to registered subscribers in
// descending priority order, ties broken by registration order.
// Register all subscribers during startup; Dispatch is safe for
// concurrent use once registration is done.
type Pipeline struct {
	subscribers []subscriber
}

// NewPipeline constructs an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Register adds a subscriber under the given priority. Higher runs first.
func (p *Pipeline) Register(name string, priority int, fn SubscriberFunc) {
	p.subscribers = append(p.subscribers, subscriber{
		name:     name,
		priority: priority,
		seq:      len(p.subscribers),
		fn:       fn,
	})
	sort.SliceStable(p.subscribers, func(i, j int) bool {
		if p.subscribers[i].priority != p.subscribers[j].priority {
			return p.subscribers[i].priority > p.subscribers[j].priority
		}
		return p.subscribers[i].seq < p.subscribers[j].seq
	})
}

// Dispatch runs every subscriber against the totals and returns the
// result. With no subscribers the input totals come back unchanged.
func (p *Pipeline) Dispatch(ctx context.Context, ord *Order, totals Totals) (Totals, error) {
	if p == nil || len(p.subscribers) == 0 {
		return totals, nil
	}
	event := &TotalsEvent{order: ord, totals: totals}
	for _, sub := range p.subscribers {
		if err := sub.fn(ctx, event); err != nil {
			return Totals{}, fmt.Errorf("totals subscriber %q: %w", sub.name, err)
		}
	}
	return event.totals, nil
}
