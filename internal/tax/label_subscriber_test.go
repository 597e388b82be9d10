package tax_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pricing-api/internal/money"
	"github.com/noah-isme/pricing-api/internal/order"
	"github.com/noah-isme/pricing-api/internal/tax"
)

var displayVAT = tax.StaticTypeProvider{Types: []tax.Type{
	{ID: "vat", Label: "VAT", DisplayRateInLabel: true},
	{ID: "gst", Label: "GST", DisplayRateInLabel: false},
}}

type failingProvider struct{ err error }

func (p failingProvider) DisplayRateTypeIDs(context.Context) (map[string]struct{}, error) {
	return nil, p.err
}

func dispatch(t *testing.T, provider tax.TypeProvider, records ...order.AdjustmentRecord) (order.Totals, error) {
	t.Helper()
	pipeline := order.NewPipeline()
	pipeline.Register("tax_label", tax.LabelSubscriberPriority, tax.LabelSubscriber(provider))
	in := order.Totals{
		Subtotal:    money.MustNew(10_000, "USD"),
		Total:       money.MustNew(10_000, "USD"),
		Adjustments: records,
	}
	return pipeline.Dispatch(context.Background(), nil, in)
}

func taxRecord(label, sourceID string, bps int32) order.AdjustmentRecord {
	amount := money.MustNew(500, "USD")
	record := order.AdjustmentRecord{
		Type:     order.TypeTax,
		Label:    label,
		Amount:   amount,
		Total:    amount,
		SourceID: sourceID,
		Included: true,
	}
	if bps != 0 {
		record.PercentBps = &bps
	}
	return record
}

func TestLabelSubscriberAnnotatesDisplayRateTax(t *testing.T) {
	out, err := dispatch(t, displayVAT, taxRecord("VAT", "vat|standard", 2000))
	require.NoError(t, err)
	require.Equal(t, "VAT (20%)", out.Adjustments[0].Label)
}

func TestLabelSubscriberFractionalRate(t *testing.T) {
	out, err := dispatch(t, displayVAT, taxRecord("VAT", "vat|reduced", 550))
	require.NoError(t, err)
	require.Equal(t, "VAT (5.5%)", out.Adjustments[0].Label)
}

func TestLabelSubscriberSkipsNonDisplayType(t *testing.T) {
	out, err := dispatch(t, displayVAT, taxRecord("GST", "gst|standard", 1000))
	require.NoError(t, err)
	require.Equal(t, "GST", out.Adjustments[0].Label)
}

func TestLabelSubscriberSkipsEmptySource(t *testing.T) {
	out, err := dispatch(t, displayVAT, taxRecord("VAT", "", 2000))
	require.NoError(t, err)
	require.Equal(t, "VAT", out.Adjustments[0].Label)
}

func TestLabelSubscriberSkipsMissingRate(t *testing.T) {
	out, err := dispatch(t, displayVAT, taxRecord("VAT", "vat|standard", 0))
	require.NoError(t, err)
	require.Equal(t, "VAT", out.Adjustments[0].Label)
}

func TestLabelSubscriberSkipsNonTax(t *testing.T) {
	amount := money.MustNew(-500, "USD")
	bps := int32(1000)
	out, err := dispatch(t, displayVAT, order.AdjustmentRecord{
		Type:       order.TypeDiscount,
		Label:      "Promo",
		Amount:     amount,
		Total:      amount,
		SourceID:   "vat|standard",
		PercentBps: &bps,
	})
	require.NoError(t, err)
	require.Equal(t, "Promo", out.Adjustments[0].Label)
}

func TestLabelSubscriberPrefixMatchesBeforePipe(t *testing.T) {
	// "vatx" must not match the "vat" type.
	out, err := dispatch(t, displayVAT, taxRecord("VAT", "vatx|standard", 2000))
	require.NoError(t, err)
	require.Equal(t, "VAT", out.Adjustments[0].Label)

	// A source without a separator is matched whole.
	out, err = dispatch(t, displayVAT, taxRecord("VAT", "vat", 2000))
	require.NoError(t, err)
	require.Equal(t, "VAT (20%)", out.Adjustments[0].Label)
}

func TestLabelSubscriberProviderErrorAborts(t *testing.T) {
	boom := errors.New("catalog down")
	_, err := dispatch(t, failingProvider{err: boom}, taxRecord("VAT", "vat|standard", 2000))
	require.ErrorIs(t, err, boom)
}

func TestBuildTotalsWithTaxAnnotation(t *testing.T) {
	bps := int32(500)
	vat, err := order.NewAdjustment(
		order.TypeTax, "VAT", money.MustNew(500, "USD"),
		order.WithSourceID("vat|standard"), order.WithPercentBps(bps), order.WithIncluded(),
	)
	require.NoError(t, err)
	promo, err := order.NewAdjustment(order.TypeDiscount, "Summer promo", money.MustNew(-1_000, "USD"))
	require.NoError(t, err)

	ord, err := order.NewOrder(
		uuid.New(),
		money.MustNew(10_000, "USD"),
		money.MustNew(9_000, "USD"),
		nil,
		[]order.Adjustment{promo, vat},
	)
	require.NoError(t, err)

	pipeline := order.NewPipeline()
	pipeline.Register("tax_label", tax.LabelSubscriberPriority, tax.LabelSubscriber(displayVAT))
	summary := order.NewSummary(order.SummaryConfig{Pipeline: pipeline})

	totals, err := summary.BuildTotals(context.Background(), ord)
	require.NoError(t, err)
	require.True(t, totals.Subtotal.Equal(money.MustNew(10_000, "USD")))
	require.True(t, totals.Total.Equal(money.MustNew(9_000, "USD")))
	require.Len(t, totals.Adjustments, 2)
	require.Equal(t, "Summer promo", totals.Adjustments[0].Label)
	require.Equal(t, "VAT (5%)", totals.Adjustments[1].Label)
	require.True(t, totals.Adjustments[1].Included)
	require.True(t, totals.Adjustments[1].Total.Equal(totals.Adjustments[1].Amount))
}
