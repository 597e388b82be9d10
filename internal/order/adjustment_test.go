package order_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pricing-api/internal/money"
	"github.com/noah-isme/pricing-api/internal/order"
)

func TestNewAdjustmentValidation(t *testing.T) {
	amount := money.MustNew(500, "USD")

	_, err := order.NewAdjustment("", "VAT", amount)
	require.ErrorIs(t, err, order.ErrAdjustmentType)

	_, err = order.NewAdjustment(order.TypeTax, "  ", amount)
	require.ErrorIs(t, err, order.ErrAdjustmentLabel)

	_, err = order.NewAdjustment(order.TypeTax, "VAT", money.Money{Amount: 500})
	require.ErrorIs(t, err, money.ErrCurrencyRequired)
}

func TestAdjustmentSourcePrefix(t *testing.T) {
	adj := mustAdjustment(t, order.TypeTax, "VAT", 500, order.WithSourceID("vat|standard|be"))
	require.Equal(t, "vat", adj.SourcePrefix())

	adj = mustAdjustment(t, order.TypeTax, "VAT", 500, order.WithSourceID("vat"))
	require.Equal(t, "vat", adj.SourcePrefix())

	adj = mustAdjustment(t, order.TypeTax, "VAT", 500)
	require.Equal(t, "", adj.SourcePrefix())
}

func TestAdjustmentWithLabelCopies(t *testing.T) {
	adj := mustAdjustment(t, order.TypeTax, "VAT", 500)
	relabeled := adj.WithLabel("VAT (20%)")

	require.Equal(t, "VAT (20%)", relabeled.Label)
	require.Equal(t, "VAT", adj.Label)
}
