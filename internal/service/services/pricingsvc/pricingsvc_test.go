package pricingsvc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamthreads/storefront/order/internal/service/models/catalog"
	"github.com/teamthreads/storefront/order/internal/service/models/orderitem"
)

func testSnapshot() *catalog.Snapshot {
	return &catalog.Snapshot{
		Products: []catalog.Product{
			{
				ID:        "tee",
				Name:      "Team Tee",
				BasePrice: 15.00,
				AvailableSizes: []catalog.SizeOption{
					{Size: "M", Upcharge: 0},
					{Size: "2XL", Upcharge: 2.50},
				},
			},
		},
		DesignOptions: []catalog.DesignOption{
			{Number: 1, Title: "Front crest", Price: 5.00},
		},
		CustomizationOptions: []catalog.CustomizationOption{
			{Number: 1, Title: "Name and number", Price: 3.00},
		},
	}
}

func validItem() orderitem.OrderItem {
	return orderitem.OrderItem{
		ProductID: "tee",
		Size:      "M",
		ItemPrice: 15.00,
		Quantity:  2,
		DesignOptions: []orderitem.OptionSelection{
			{OptionNumber: 1, Price: 5.00},
		},
		CustomizationOptions: []orderitem.OptionSelection{
			{OptionNumber: 1, Price: 3.00, CustomName: "Jordan", CustomNumber: "23"},
		},
		TotalPrice: 23.00,
	}
}

func TestVerify(t *testing.T) {
	svc := NewPricingService()

	tests := []struct {
		name     string
		mutate   func(*orderitem.OrderItem)
		valid    bool
		contains string
	}{
		{
			name:   "valid item passes",
			mutate: func(*orderitem.OrderItem) {},
			valid:  true,
		},
		{
			name: "tampered item price is detected",
			mutate: func(i *orderitem.OrderItem) {
				i.ItemPrice = 10.00
			},
			valid:    false,
			contains: "tee",
		},
		{
			name: "unknown product is detected",
			mutate: func(i *orderitem.OrderItem) {
				i.ProductID = "hoodie"
			},
			valid:    false,
			contains: "hoodie",
		},
		{
			name: "tampered option price is detected even when totals line up",
			mutate: func(i *orderitem.OrderItem) {
				i.DesignOptions[0].Price = 0.00
				i.CustomizationOptions[0].Price = 8.00
			},
			valid:    false,
			contains: "design option 1",
		},
		{
			name: "tampered unit total is detected",
			mutate: func(i *orderitem.OrderItem) {
				i.TotalPrice = 18.00
			},
			valid:    false,
			contains: "unit total",
		},
		{
			name: "unknown size compares against base price",
			mutate: func(i *orderitem.OrderItem) {
				i.Size = "5XL"
			},
			valid: true,
		},
		{
			name: "size upcharge is part of the expected price",
			mutate: func(i *orderitem.OrderItem) {
				i.Size = "2XL"
			},
			valid:    false,
			contains: "17.50",
		},
		{
			name: "sub-epsilon rounding noise is tolerated",
			mutate: func(i *orderitem.OrderItem) {
				i.ItemPrice = 15.004
				i.TotalPrice = 23.004
			},
			valid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validItem()
			tt.mutate(&item)

			result := svc.Verify([]orderitem.OrderItem{item}, testSnapshot())

			assert.Equal(t, tt.valid, result.Valid)
			if tt.contains != "" {
				require.NotEmpty(t, result.Discrepancies)
				found := false
				for _, d := range result.Discrepancies {
					if strings.Contains(d, tt.contains) {
						found = true
					}
				}
				assert.True(t, found, "no discrepancy mentions %q: %v", tt.contains, result.Discrepancies)
			}
		})
	}
}

func TestVerifyCollectsAllDiscrepancies(t *testing.T) {
	svc := NewPricingService()

	item := validItem()
	item.ItemPrice = 10.00
	item.DesignOptions[0].Price = 1.00
	item.TotalPrice = 14.00

	result := svc.Verify([]orderitem.OrderItem{item}, testSnapshot())

	assert.False(t, result.Valid)
	assert.Len(t, result.Discrepancies, 3)
}

func TestVerifyIsIdempotent(t *testing.T) {
	svc := NewPricingService()

	item := validItem()
	item.ItemPrice = 10.00

	first := svc.Verify([]orderitem.OrderItem{item}, testSnapshot())
	second := svc.Verify([]orderitem.OrderItem{item}, testSnapshot())

	assert.Equal(t, first, second)
}

func TestRecomputeTotals(t *testing.T) {
	svc := NewPricingService()

	// The client-declared prices are garbage on purpose: recomputation
	// must not use them.
	item := validItem()
	item.ItemPrice = 1.00
	item.TotalPrice = 2.00
	item.DesignOptions[0].Price = 99.0
	item.CustomizationOptions[0].Price = 99.0

	items, total, err := svc.RecomputeTotals([]orderitem.OrderItem{item}, testSnapshot())
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.InDelta(t, 15.00, items[0].ItemPrice, 0.001)
	assert.InDelta(t, 23.00, items[0].TotalPrice, 0.001)
	assert.InDelta(t, 46.00, total, 0.001)
	assert.Equal(t, "Team Tee", items[0].ProductName)
	assert.InDelta(t, 5.00, items[0].DesignOptions[0].Price, 0.001)
	assert.InDelta(t, 3.00, items[0].CustomizationOptions[0].Price, 0.001)
}

func TestRecomputeTotalsUnknownProduct(t *testing.T) {
	svc := NewPricingService()

	item := validItem()
	item.ProductID = "ghost"

	_, _, err := svc.RecomputeTotals([]orderitem.OrderItem{item}, testSnapshot())
	assert.Error(t, err)
}
