// Package pricing derives per-station and total order prices from the
// static catalog, the order type and the selected term lengths.
package pricing

import (
	"fmt"
	"math"

	"rslportal/pkg/contracts/domain"
)

// Quote is a priced order summary. Both values are rounded to 2 decimals
// for display.
type Quote struct {
	PricePerStation float64 `json:"price_per_station"`
	Total           float64 `json:"total"`
}

// Calculator prices orders against a catalog snapshot.
type Calculator struct {
	catalog domain.Catalog
}

// NewCalculator creates a calculator over the given catalog.
func NewCalculator(catalog domain.Catalog) *Calculator {
	return &Calculator{catalog: catalog}
}

// Quote prices an order selection.
//
// Software orders scale the package's per-station price by the software
// term. Bundle orders treat the stored bundle price as a 1-year price for
// both components combined and scale it by the longer of the two terms;
// this is an intentional simplification of the price list, not a bug.
func (c *Calculator) Quote(orderType domain.OrderType, itemID string, softwareTermYears, warrantyTermYears, stations int) (Quote, error) {
	if stations < 1 {
		return Quote{}, fmt.Errorf("station count must be at least 1, got %d", stations)
	}

	var perStation float64
	switch orderType {
	case domain.OrderTypeSoftware:
		pkg, ok := c.catalog.SoftwarePackageByID(itemID)
		if !ok {
			return Quote{}, fmt.Errorf("unknown software package %q", itemID)
		}
		perStation = pkg.PricePerStation * float64(softwareTermYears)
	case domain.OrderTypeBundle:
		b, ok := c.catalog.BundleByID(itemID)
		if !ok {
			return Quote{}, fmt.Errorf("unknown bundle %q", itemID)
		}
		years := softwareTermYears
		if warrantyTermYears > years {
			years = warrantyTermYears
		}
		perStation = b.PricePerStation * float64(years)
	default:
		return Quote{}, fmt.Errorf("unknown order type %q", orderType)
	}

	return Quote{
		PricePerStation: round2(perStation),
		Total:           round2(perStation * float64(stations)),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
