// Package reports computes rollups over visibility-filtered collections.
// It never touches the raw store; every input goes through the visibility
// engine first, so nothing can leak through an aggregate that the caller
// could not have read directly.
package reports

import (
	"math"

	"rslportal/internal/visibility"
	"rslportal/pkg/contracts/domain"
)

// UnknownCustomerName is substituted when an order references a customer
// that is absent or not visible to the caller. Referential gaps are
// defaulted, never raised.
const UnknownCustomerName = "Unknown Customer"

// CustomerRollup is a customer with its per-customer order aggregates.
type CustomerRollup struct {
	domain.Customer
	Orders     int     `json:"orders"`
	LastOrder  string  `json:"last_order"`
	TotalSpent float64 `json:"total_spent"`
}

// OrderWithCustomer is an order denormalized with display fields of its
// customer.
type OrderWithCustomer struct {
	domain.Order
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerImage string `json:"customer_image"`
}

// Service computes the aggregation layer's rollups.
type Service struct {
	engine *visibility.Engine
}

// NewService creates a reports service over the given visibility engine.
func NewService(engine *visibility.Engine) *Service {
	return &Service{engine: engine}
}

// round2 rounds to 2 decimals for display amounts.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CustomerOrders returns every visible customer with order count, most
// recent order id and total spent. On equal dates the earlier entry in
// store order wins the last-order slot.
func (s *Service) CustomerOrders(rc domain.RequestContext) []CustomerRollup {
	customers := s.engine.VisibleCustomers(rc)
	orders := s.engine.VisibleOrders(rc)

	out := make([]CustomerRollup, 0, len(customers))
	for _, c := range customers {
		roll := CustomerRollup{Customer: c, LastOrder: ""}
		var total float64
		var lastIdx = -1
		for i, o := range orders {
			if o.CustomerID != c.ID {
				continue
			}
			roll.Orders++
			total += o.Amount
			if lastIdx == -1 || o.Date.After(orders[lastIdx].Date) {
				lastIdx = i
			}
		}
		if lastIdx >= 0 {
			roll.LastOrder = orders[lastIdx].ID
		}
		roll.TotalSpent = round2(total)
		out = append(out, roll)
	}
	return out
}

// OrdersWithCustomerDetails returns every visible order with its
// customer's name, email and image attached. A customer that is absent
// or hidden from the caller falls back to "Unknown Customer" and empty
// contact fields.
func (s *Service) OrdersWithCustomerDetails(rc domain.RequestContext) []OrderWithCustomer {
	orders := s.engine.VisibleOrders(rc)
	out := make([]OrderWithCustomer, 0, len(orders))
	for _, o := range orders {
		row := OrderWithCustomer{Order: o, CustomerName: UnknownCustomerName}
		if lookup := s.engine.LookupCustomer(rc, o.CustomerID); lookup.Outcome == visibility.Found {
			row.CustomerName = lookup.Customer.Name
			row.CustomerEmail = lookup.Customer.Email
			row.CustomerImage = lookup.Customer.Image
		}
		out = append(out, row)
	}
	return out
}

// TodayOrders returns the visible orders dated on the same calendar day
// as the context's reference date. Component equality, not a rolling
// 24-hour window.
func (s *Service) TodayOrders(rc domain.RequestContext) []domain.Order {
	ref := rc.ReferenceDate
	out := []domain.Order{}
	for _, o := range s.engine.VisibleOrders(rc) {
		oy, om, od := o.Date.Date()
		ry, rm, rd := ref.Date()
		if oy == ry && om == rm && od == rd {
			out = append(out, o)
		}
	}
	return out
}
