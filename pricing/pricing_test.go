package pricing

import (
	"testing"

	"github.com/Shashank-1177/SBFood/apperr"
	"github.com/Shashank-1177/SBFood/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func TestCalculateSubtotalThousand(t *testing.T) {
	p, err := Calculate([]Line{{UnitPrice: d("1000"), Quantity: 1}}, d("40"))
	require.NoError(t, err)

	assertMoney(t, "1000", p.Subtotal)
	assertMoney(t, "50", p.ServiceFee)
	assertMoney(t, "80", p.Tax)
	assertMoney(t, "40", p.DeliveryFee)
	assertMoney(t, "1170", p.Total)
	assertMoney(t, "0", p.Discount)
}

func TestCalculateTwoProducts(t *testing.T) {
	p, err := Calculate([]Line{
		{UnitPrice: d("100"), Quantity: 2},
		{UnitPrice: d("50"), Quantity: 1},
	}, decimal.Zero)
	require.NoError(t, err)
	assertMoney(t, "250", p.Subtotal)
}

func TestCalculateVariantModifiers(t *testing.T) {
	p, err := Calculate([]Line{
		{UnitPrice: d("9.99"), Quantity: 3, Modifiers: []decimal.Decimal{d("1.50"), d("0.25")}},
	}, d("2.99"))
	require.NoError(t, err)

	// (9.99 + 1.75) * 3 = 35.22
	assertMoney(t, "35.22", p.Subtotal)
	assertMoney(t, "1.76", p.ServiceFee) // 1.761
	assertMoney(t, "2.82", p.Tax)        // 2.8176
	assertMoney(t, "42.79", p.Total)
}

func TestCalculateRoundsHalfAwayFromZero(t *testing.T) {
	// 0.05 * 0.10 = 0.005 -> 0.01
	p, err := Calculate([]Line{{UnitPrice: d("0.10"), Quantity: 1}}, decimal.Zero)
	require.NoError(t, err)
	assertMoney(t, "0.01", p.ServiceFee)
}

func TestCalculateInvariantHolds(t *testing.T) {
	sets := [][]Line{
		nil,
		{{UnitPrice: d("0"), Quantity: 5}},
		{{UnitPrice: d("12.34"), Quantity: 7}, {UnitPrice: d("0.99"), Quantity: 1, Modifiers: []decimal.Decimal{d("0.5")}}},
		{{UnitPrice: d("3.33"), Quantity: 3}},
	}
	for _, lines := range sets {
		p, err := Calculate(lines, d("4.50"))
		require.NoError(t, err)
		assert.True(t, p.Total.Equal(p.Subtotal.Add(p.DeliveryFee).Add(p.ServiceFee).Add(p.Tax)))
		assert.True(t, p.ServiceFee.Equal(p.Subtotal.Mul(d("0.05")).Round(2)))
		assert.True(t, p.Tax.Equal(p.Subtotal.Mul(d("0.08")).Round(2)))
	}
}

func TestCalculateRejectsBadInput(t *testing.T) {
	cases := map[string]struct {
		lines []Line
		fee   decimal.Decimal
	}{
		"zero quantity":     {[]Line{{UnitPrice: d("1"), Quantity: 0}}, decimal.Zero},
		"negative quantity": {[]Line{{UnitPrice: d("1"), Quantity: -2}}, decimal.Zero},
		"negative price":    {[]Line{{UnitPrice: d("-1"), Quantity: 1}}, decimal.Zero},
		"negative modifier": {[]Line{{UnitPrice: d("1"), Quantity: 1, Modifiers: []decimal.Decimal{d("-0.5")}}}, decimal.Zero},
		"negative fee":      {nil, d("-1")},
	}
	for name, c := range cases {
		_, err := Calculate(c.lines, c.fee)
		assert.ErrorIs(t, err, apperr.ErrValidation, name)
	}
}

func TestCartLinesSkipsUnknownProducts(t *testing.T) {
	items := []models.CartItem{
		{ProductID: 1, Quantity: 2, Variants: []models.SelectedVariant{{Name: "Size", Option: "Large", PriceModifier: d("2")}}},
		{ProductID: 9, Quantity: 1},
	}
	lines := CartLines(items, map[uint]decimal.Decimal{1: d("10")})
	require.Len(t, lines, 1)
	assertMoney(t, "24", lines[0].Total())
}
