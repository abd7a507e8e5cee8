package domain

import "time"

// OrderStatus is the display state an order is created with. No lifecycle
// transition function is defined in the core; statuses are assigned at
// creation and never mutated here.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusSuccess    OrderStatus = "success"
	OrderStatusFailed     OrderStatus = "failed"
)

// Order is a committed purchase. CustomerID must reference an existing
// Customer. Items is an ordered list of catalog item identifiers
// ("sw*", "wr*", "b*"); it is only empty before submission completes.
type Order struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customer_id"`
	Status     OrderStatus `json:"status"`
	Amount     float64     `json:"amount"`
	Date       time.Time   `json:"date"`
	Items      []string    `json:"items"`
	Notes      string      `json:"notes,omitempty"`
	VisibleTo  RoleSet     `json:"visible_to"`
	TotalValue float64     `json:"total_value,omitempty"`
	Stations   int         `json:"stations,omitempty"`
}

// Station is a physical device being licensed within one order. It exists
// only while the order workflow runs; on submission its license keys are
// folded into the order summary handed back to the caller.
type Station struct {
	SerialNumber       string `json:"serial_number"`
	IsValid            bool   `json:"is_valid"`
	SoftwareLicenseKey string `json:"software_license_key,omitempty"`
	WarrantyLicenseKey string `json:"warranty_license_key,omitempty"`
}

// LicenseType distinguishes the two license kinds a station can carry.
type LicenseType string

const (
	LicenseTypeSoftware LicenseType = "software"
	LicenseTypeWarranty LicenseType = "warranty"
)

// License is a view-level derivative synthesized on demand from an order's
// items for display and export. It is never persisted.
type License struct {
	ID        string      `json:"id"`
	Type      LicenseType `json:"type"`
	Key       string      `json:"key"`
	StartDate time.Time   `json:"start_date"`
	EndDate   time.Time   `json:"end_date"`
	StationID string      `json:"station_id"`
}
