package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityAt(t *testing.T) {
	// 2024-06-03 is a Monday
	monday := func(hhmm string) time.Time {
		ts, err := time.Parse("2006-01-02 15:04", "2024-06-03 "+hhmm)
		require.NoError(t, err)
		return ts
	}

	assert.True(t, Availability{IsAvailable: true}.At(monday("03:00")))
	assert.False(t, Availability{IsAvailable: false}.At(monday("12:00")))

	lunch := Availability{IsAvailable: true, AvailableFrom: "11:00", AvailableTo: "15:00"}
	assert.True(t, lunch.At(monday("11:00")))
	assert.False(t, lunch.At(monday("15:00")))
	assert.False(t, lunch.At(monday("09:30")))

	late := Availability{IsAvailable: true, AvailableFrom: "22:00", AvailableTo: "02:00"}
	assert.True(t, late.At(monday("23:15")))
	assert.True(t, late.At(monday("01:59")))
	assert.False(t, late.At(monday("12:00")))

	weekend := Availability{IsAvailable: true, AvailableDays: []string{"saturday", "Sunday"}}
	assert.False(t, weekend.At(monday("12:00")))
	assert.True(t, weekend.At(monday("12:00").AddDate(0, 0, 6)))
}

func TestFindOption(t *testing.T) {
	p := Product{Variants: []VariantGroup{{
		Name: "Size",
		Options: []VariantOption{
			{Name: "Small", PriceModifier: decimal.Zero},
			{Name: "Large", PriceModifier: decimal.NewFromInt(3)},
		},
	}}}

	opt, ok := p.FindOption("size", "large")
	require.True(t, ok)
	assert.True(t, opt.PriceModifier.Equal(decimal.NewFromInt(3)))

	_, ok = p.FindOption("Size", "Huge")
	assert.False(t, ok)
	_, ok = p.FindOption("Crust", "Thin")
	assert.False(t, ok)
}

func TestOrderCanCancel(t *testing.T) {
	for _, s := range OrderStatuses {
		o := Order{Status: s}
		assert.Equal(t, !s.Terminal(), o.CanCancel(), string(s))
	}
}

func TestOrderJSONCarriesCanCancel(t *testing.T) {
	o := Order{OrderNumber: "ORD-123456-001", Status: StatusPreparing, Pricing: Pricing{Total: decimal.NewFromInt(1170)}}

	raw, err := json.Marshal(o)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, true, got["canCancel"])
	assert.Equal(t, "ORD-123456-001", got["orderNumber"])
	assert.Equal(t, float64(1170), got["pricing"].(map[string]any)["total"])
}

func TestRoleAndStatusValidity(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, UserRole("driver").Valid())
	assert.True(t, RestaurantSuspended.Valid())
	assert.False(t, RestaurantStatus("closed").Valid())
	assert.True(t, StatusPickedUp.Valid())
	assert.False(t, OrderStatus("PLACED").Valid())
}
