package tax

import (
	"context"
	"fmt"
	"strings"

	"github.com/noah-isme/pricing-api/internal/money"
	"github.com/noah-isme/pricing-api/internal/order"
)

// LabelSubscriberPriority is where the label rewrite sits in the totals
// pipeline.
const LabelSubscriberPriority = 100

// LabelSubscriber rewrites tax adjustment labels to include the rate,
// e.g. "VAT" becomes "VAT (20%)". Only adjustments whose source prefix
// names a display-rate tax type are touched.
func LabelSubscriber(types TypeProvider) order.SubscriberFunc {
	return func(ctx context.Context, event *order.TotalsEvent) error {
		totals := event.Totals()
		if len(totals.Adjustments) == 0 {
			return nil
		}
		displayIDs, err := types.DisplayRateTypeIDs(ctx)
		if err != nil {
			return fmt.Errorf("load tax types: %w", err)
		}

		changed := false
		rewritten := make([]order.AdjustmentRecord, len(totals.Adjustments))
		copy(rewritten, totals.Adjustments)
		for i, record := range rewritten {
			if !shouldAnnotate(record, displayIDs) {
				continue
			}
			rewritten[i].Label = fmt.Sprintf("%s (%s%%)", record.Label, money.FormatBps(*record.PercentBps))
			changed = true
		}
		// Replace the totals only when a label actually changed, so
		// untouched totals keep their identity for downstream caching.
		if changed {
			totals.Adjustments = rewritten
			event.SetTotals(totals)
		}
		return nil
	}
}

func shouldAnnotate(record order.AdjustmentRecord, displayIDs map[string]struct{}) bool {
	if record.Type != order.TypeTax || record.SourceID == "" {
		return false
	}
	if record.PercentBps == nil || *record.PercentBps == 0 {
		return false
	}
	prefix := sourcePrefix(record.SourceID)
	_, ok := displayIDs[prefix]
	return ok
}

func sourcePrefix(sourceID string) string {
	prefix, _, _ := strings.Cut(sourceID, "|")
	return prefix
}
