package store

import (
	"time"

	"rslportal/pkg/contracts/domain"
)

// DefaultCatalog returns the static price lists the portal sells from.
func DefaultCatalog() domain.Catalog {
	return domain.Catalog{
		SoftwarePackages: []domain.SoftwarePackage{
			{ID: "sw1", Name: "Core Suite", Description: "Point-of-sale core software", PricePerStation: 350.00},
			{ID: "sw2", Name: "Core Suite Pro", Description: "Core software with advanced reporting", PricePerStation: 500.00},
			{ID: "sw3", Name: "Enterprise Suite", Description: "Multi-site management software", PricePerStation: 750.00},
		},
		WarrantyPackages: []domain.WarrantyPackage{
			{ID: "wr1", Name: "Standard Warranty", Description: "Next business day replacement", PricePerStation: 99.99},
			{ID: "wr2", Name: "Premium Warranty", Description: "Same day on-site service", PricePerStation: 199.99},
		},
		Bundles: []domain.Bundle{
			{ID: "b1", Name: "Core Bundle", Description: "Core Suite with standard warranty", PricePerStation: 429.99, SoftwarePackageID: "sw1", WarrantyPackageID: "wr1", Discount: 20.00},
			{ID: "b2", Name: "Pro Bundle", Description: "Core Suite Pro with premium warranty", PricePerStation: 649.99, SoftwarePackageID: "sw2", WarrantyPackageID: "wr2", Discount: 50.00},
		},
	}
}

// Seed populates the store with the deterministic reference dataset.
// Dates are fixed so rollups and relative-date output are reproducible;
// tests pin their reference date near these instants.
func Seed(s *Store) error {
	allRoles := domain.RoleSet{domain.RoleAdmin, domain.RoleReseller, domain.RoleCustomer}
	adminOnly := domain.RoleSet{domain.RoleAdmin}

	resellers := []domain.Reseller{
		{ID: "rs1", Name: "Northwind Systems", Email: "sales@northwind.example", Region: "West"},
		{ID: "rs2", Name: "Contoso Retail Tech", Email: "orders@contoso.example", Region: "East"},
	}
	for _, r := range resellers {
		if err := s.AddReseller(r); err != nil {
			return err
		}
	}

	customers := []domain.Customer{
		{
			ID: "cust-001", Name: "Delia Moreno", Email: "delia@moreno-foods.example",
			CreatedAt: time.Date(2024, 11, 12, 9, 0, 0, 0, time.UTC),
			ResellerID: "rs1", VisibleTo: allRoles,
			Phone: "555-0101", Address: "12 Harbor Way", City: "Portland", State: "OR", ZipCode: "97201",
		},
		{
			ID: "cust-002", Name: "Sam Whitfield", Email: "sam@whitfield-hardware.example",
			CreatedAt: time.Date(2024, 12, 3, 14, 30, 0, 0, time.UTC),
			ResellerID: "rs1", VisibleTo: adminOnly,
			Phone: "555-0102", Address: "88 Mill Road", City: "Eugene", State: "OR", ZipCode: "97401",
		},
		{
			ID: "cust-003", Name: "Priya Raman", Email: "priya@ramanmarkets.example",
			CreatedAt: time.Date(2025, 1, 20, 11, 15, 0, 0, time.UTC),
			ResellerID: "rs2", VisibleTo: allRoles,
			Phone: "555-0103", Address: "401 Fifth Ave", City: "Albany", State: "NY", ZipCode: "12207",
		},
		{
			ID: "cust-004", Name: "Theo Brandt", Email: "theo@brandtcafes.example",
			CreatedAt: time.Date(2025, 2, 14, 16, 45, 0, 0, time.UTC),
			ResellerID: "rs2", VisibleTo: allRoles,
			Phone: "555-0104", Address: "7 Canal St", City: "Buffalo", State: "NY", ZipCode: "14201",
		},
	}
	for _, c := range customers {
		if err := s.AddCustomer(c); err != nil {
			return err
		}
	}

	orders := []domain.Order{
		{
			ID: "ord-001", CustomerID: "cust-001", Status: domain.OrderStatusSuccess,
			Amount: 2100.00, Date: time.Date(2025, 2, 10, 10, 0, 0, 0, time.UTC),
			Items: []string{"sw1"}, VisibleTo: allRoles, TotalValue: 2100.00, Stations: 3,
		},
		{
			ID: "ord-002", CustomerID: "cust-001", Status: domain.OrderStatusPending,
			Amount: 859.98, Date: time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC),
			Items: []string{"b1"}, VisibleTo: allRoles, TotalValue: 859.98, Stations: 2,
		},
		{
			ID: "ord-003", CustomerID: "cust-002", Status: domain.OrderStatusProcessing,
			Amount: 1500.00, Date: time.Date(2025, 3, 6, 9, 30, 0, 0, time.UTC),
			Items: []string{"sw2"}, VisibleTo: adminOnly, TotalValue: 1500.00, Stations: 3,
		},
		{
			ID: "ord-004", CustomerID: "cust-003", Status: domain.OrderStatusSuccess,
			Amount: 1299.98, Date: time.Date(2025, 3, 6, 11, 30, 0, 0, time.UTC),
			Items: []string{"b2"}, VisibleTo: allRoles, TotalValue: 1299.98, Stations: 2,
		},
		{
			ID: "ord-005", CustomerID: "cust-004", Status: domain.OrderStatusFailed,
			Amount: 750.00, Date: time.Date(2025, 1, 28, 15, 0, 0, 0, time.UTC),
			Items: []string{"sw3"}, VisibleTo: allRoles, TotalValue: 750.00, Stations: 1,
		},
		{
			ID: "ord-006", CustomerID: "cust-003", Status: domain.OrderStatusSuccess,
			Amount: 429.99, Date: time.Date(2025, 2, 26, 8, 0, 0, 0, time.UTC),
			Items: []string{"b1"}, VisibleTo: allRoles, TotalValue: 429.99, Stations: 1,
		},
	}
	for _, o := range orders {
		if err := s.AddOrder(o); err != nil {
			return err
		}
	}
	return nil
}

// NewSeeded is a convenience constructor used by the app and tests:
// a store with the default catalog and the reference dataset loaded.
func NewSeeded() (*Store, error) {
	s := New(DefaultCatalog())
	if err := Seed(s); err != nil {
		return nil, err
	}
	return s, nil
}
