package pricingsvc

import (
	"fmt"
	"math"

	"github.com/teamthreads/storefront/order/internal/service/models/catalog"
	"github.com/teamthreads/storefront/order/internal/service/models/orderitem"
)

// priceEpsilon absorbs floating rounding when comparing currency values.
const priceEpsilon = 0.01

// Result is the outcome of verifying a submission against the catalog.
// Discrepancies are for audit logging only and must never reach the client.
type Result struct {
	Valid         bool
	Discrepancies []string
}

// PricingService recomputes authoritative prices from the catalog and
// rejects submissions whose client-declared prices deviate. It performs no
// I/O: callers pass a freshly fetched catalog snapshot.
type PricingService struct{}

// NewPricingService creates a new PricingService.
func NewPricingService() *PricingService {
	return &PricingService{}
}

func equalWithinEpsilon(a, b float64) bool {
	return math.Abs(a-b) <= priceEpsilon
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Verify cross-checks every submitted item against the catalog snapshot.
// All discrepancies are collected; nothing short-circuits, so partial
// tampering is caught even when the totals happen to add up.
func (s *PricingService) Verify(items []orderitem.OrderItem, snap *catalog.Snapshot) Result {
	discrepancies := []string{}

	for idx, item := range items {
		product, ok := snap.ProductByID(item.ProductID)
		if !ok {
			discrepancies = append(discrepancies,
				fmt.Sprintf("item %d: unknown product %q", idx, item.ProductID))

			continue
		}

		expectedUpcharge, _ := product.UpchargeFor(item.Size)
		expectedItemPrice := product.BasePrice + expectedUpcharge
		if !equalWithinEpsilon(item.ItemPrice, expectedItemPrice) {
			discrepancies = append(discrepancies, fmt.Sprintf(
				"item %d: product %q item price %.2f does not match expected %.2f",
				idx, item.ProductID, item.ItemPrice, expectedItemPrice))
		}

		expectedDesignTotal := 0.0
		for _, opt := range item.DesignOptions {
			catalogOpt, ok := snap.DesignOptionByNumber(opt.OptionNumber)
			if !ok {
				discrepancies = append(discrepancies, fmt.Sprintf(
					"item %d: unknown design option %d", idx, opt.OptionNumber))

				continue
			}
			expectedDesignTotal += catalogOpt.Price
			if !equalWithinEpsilon(opt.Price, catalogOpt.Price) {
				discrepancies = append(discrepancies, fmt.Sprintf(
					"item %d: design option %d price %.2f does not match expected %.2f",
					idx, opt.OptionNumber, opt.Price, catalogOpt.Price))
			}
		}

		expectedCustomTotal := 0.0
		for _, opt := range item.CustomizationOptions {
			catalogOpt, ok := snap.CustomizationOptionByNumber(opt.OptionNumber)
			if !ok {
				discrepancies = append(discrepancies, fmt.Sprintf(
					"item %d: unknown customization option %d", idx, opt.OptionNumber))

				continue
			}
			expectedCustomTotal += catalogOpt.Price
			if !equalWithinEpsilon(opt.Price, catalogOpt.Price) {
				discrepancies = append(discrepancies, fmt.Sprintf(
					"item %d: customization option %d price %.2f does not match expected %.2f",
					idx, opt.OptionNumber, opt.Price, catalogOpt.Price))
			}
		}

		expectedTotal := expectedItemPrice + expectedDesignTotal + expectedCustomTotal
		if !equalWithinEpsilon(item.TotalPrice, expectedTotal) {
			discrepancies = append(discrepancies, fmt.Sprintf(
				"item %d: product %q unit total %.2f does not match expected %.2f",
				idx, item.ProductID, item.TotalPrice, expectedTotal))
		}
	}

	return Result{
		Valid:         len(discrepancies) == 0,
		Discrepancies: discrepancies,
	}
}

// RecomputeTotals rebuilds every per-unit total and the order total purely
// from catalog data. Client-declared prices are discarded: the returned
// items carry the authoritative prices.
func (s *PricingService) RecomputeTotals(
	items []orderitem.OrderItem,
	snap *catalog.Snapshot,
) ([]orderitem.OrderItem, float64, error) {
	result := make([]orderitem.OrderItem, len(items))
	orderTotal := 0.0

	for idx, item := range items {
		product, ok := snap.ProductByID(item.ProductID)
		if !ok {
			return nil, 0, fmt.Errorf("unknown product %q", item.ProductID)
		}

		upcharge, _ := product.UpchargeFor(item.Size)
		itemPrice := product.BasePrice + upcharge

		for i, opt := range item.DesignOptions {
			catalogOpt, ok := snap.DesignOptionByNumber(opt.OptionNumber)
			if !ok {
				return nil, 0, fmt.Errorf("unknown design option %d", opt.OptionNumber)
			}
			item.DesignOptions[i].Title = catalogOpt.Title
			item.DesignOptions[i].Price = catalogOpt.Price
		}
		for i, opt := range item.CustomizationOptions {
			catalogOpt, ok := snap.CustomizationOptionByNumber(opt.OptionNumber)
			if !ok {
				return nil, 0, fmt.Errorf("unknown customization option %d", opt.OptionNumber)
			}
			item.CustomizationOptions[i].Title = catalogOpt.Title
			item.CustomizationOptions[i].Price = catalogOpt.Price
		}

		item.ProductName = product.Name
		item.SizeUpcharge = upcharge
		item.ItemPrice = roundCents(itemPrice)
		item.TotalPrice = roundCents(itemPrice + item.OptionsTotal())
		result[idx] = item

		orderTotal += item.TotalPrice * float64(item.Quantity)
	}

	return result, roundCents(orderTotal), nil
}
