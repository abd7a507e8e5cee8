package domain

// OrderType selects which price list an order draws from.
type OrderType string

const (
	OrderTypeSoftware OrderType = "software"
	OrderTypeBundle   OrderType = "bundle"
)

// SoftwarePackage is a catalog entry priced per station per year.
type SoftwarePackage struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	PricePerStation float64 `json:"price_per_station"`
}

// WarrantyPackage is a catalog entry priced per station per year.
type WarrantyPackage struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	PricePerStation float64 `json:"price_per_station"`
}

// Bundle pairs a software and a warranty package at a combined per-station
// price. The stored price is a 1-year price for both components combined.
type Bundle struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	PricePerStation   float64 `json:"price_per_station"`
	SoftwarePackageID string  `json:"software_package_id"`
	WarrantyPackageID string  `json:"warranty_package_id"`
	Discount          float64 `json:"discount"`
}

// Catalog is the static, read-only price list the pricing calculator and
// order workflow draw from.
type Catalog struct {
	SoftwarePackages []SoftwarePackage `json:"software_packages"`
	WarrantyPackages []WarrantyPackage `json:"warranty_packages"`
	Bundles          []Bundle          `json:"bundles"`
}

// SoftwarePackageByID returns the software package with the given id.
func (c Catalog) SoftwarePackageByID(id string) (SoftwarePackage, bool) {
	for _, p := range c.SoftwarePackages {
		if p.ID == id {
			return p, true
		}
	}
	return SoftwarePackage{}, false
}

// WarrantyPackageByID returns the warranty package with the given id.
func (c Catalog) WarrantyPackageByID(id string) (WarrantyPackage, bool) {
	for _, p := range c.WarrantyPackages {
		if p.ID == id {
			return p, true
		}
	}
	return WarrantyPackage{}, false
}

// BundleByID returns the bundle with the given id.
func (c Catalog) BundleByID(id string) (Bundle, bool) {
	for _, b := range c.Bundles {
		if b.ID == id {
			return b, true
		}
	}
	return Bundle{}, false
}
