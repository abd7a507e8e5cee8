// Package visibility decides which customer and order records an acting
// principal may observe. Role visibility and reseller scoping are separate
// restrictions; a record is shown only when both pass. Lookups never
// distinguish a hidden record from a missing one at the API boundary, so
// callers cannot probe for existence of records they are not allowed to see.
package visibility

import (
	"rslportal/internal/store"
	"rslportal/pkg/contracts/domain"
)

// Outcome tags the internal result of a scoped lookup. The transport layer
// collapses Hidden and NotFound into the same absent response; keeping them
// distinct internally lets tests assert which branch was taken.
type Outcome int

const (
	Found Outcome = iota
	Hidden
	NotFound
)

// CustomerLookup is the tagged result of a customer lookup.
type CustomerLookup struct {
	Outcome  Outcome
	Customer domain.Customer
}

// OrderLookup is the tagged result of an order lookup.
type OrderLookup struct {
	Outcome Outcome
	Order   domain.Order
}

// Engine filters the store's collections down to what a request context
// may observe. It is stateless; all scoping inputs arrive in the context.
type Engine struct {
	store *store.Store
}

// NewEngine creates a visibility engine over the given store.
func NewEngine(s *store.Store) *Engine {
	return &Engine{store: s}
}

// customerVisible applies role visibility plus reseller ownership.
func customerVisible(rc domain.RequestContext, c domain.Customer) bool {
	switch rc.Role {
	case domain.RoleAdmin, domain.RoleCustomer, domain.RoleGuest:
		return c.VisibleTo.Contains(rc.Role)
	case domain.RoleReseller:
		return c.VisibleTo.Contains(rc.Role) && c.ResellerID == rc.ResellerID
	default:
		return false
	}
}

// orderVisible applies role visibility and, for resellers, the transitive
// ownership check through the order's customer. An order is never shown
// for a customer the reseller does not own, even when the order's own
// role set would otherwise permit it.
func (e *Engine) orderVisible(rc domain.RequestContext, o domain.Order) bool {
	switch rc.Role {
	case domain.RoleAdmin, domain.RoleCustomer, domain.RoleGuest:
		return o.VisibleTo.Contains(rc.Role)
	case domain.RoleReseller:
		if !o.VisibleTo.Contains(rc.Role) {
			return false
		}
		c, ok := e.store.Customer(o.CustomerID)
		if !ok {
			return false
		}
		return customerVisible(rc, c)
	default:
		return false
	}
}

// VisibleCustomers returns every customer the context may observe,
// preserving store order.
func (e *Engine) VisibleCustomers(rc domain.RequestContext) []domain.Customer {
	all := e.store.Customers()
	out := make([]domain.Customer, 0, len(all))
	for _, c := range all {
		if customerVisible(rc, c) {
			out = append(out, c)
		}
	}
	return out
}

// VisibleOrders returns every order the context may observe, preserving
// store order.
func (e *Engine) VisibleOrders(rc domain.RequestContext) []domain.Order {
	all := e.store.Orders()
	out := make([]domain.Order, 0, len(all))
	for _, o := range all {
		if e.orderVisible(rc, o) {
			out = append(out, o)
		}
	}
	return out
}

// LookupCustomer resolves a customer id under the context's scope.
func (e *Engine) LookupCustomer(rc domain.RequestContext, id string) CustomerLookup {
	c, ok := e.store.Customer(id)
	if !ok {
		return CustomerLookup{Outcome: NotFound}
	}
	if !customerVisible(rc, c) {
		return CustomerLookup{Outcome: Hidden}
	}
	return CustomerLookup{Outcome: Found, Customer: c}
}

// LookupOrder resolves an order id under the context's scope.
func (e *Engine) LookupOrder(rc domain.RequestContext, id string) OrderLookup {
	o, ok := e.store.Order(id)
	if !ok {
		return OrderLookup{Outcome: NotFound}
	}
	if !e.orderVisible(rc, o) {
		return OrderLookup{Outcome: Hidden}
	}
	return OrderLookup{Outcome: Found, Order: o}
}

// OrdersByCustomer returns the visible orders belonging to one customer.
// A customer the context cannot see yields an empty slice, the same as a
// customer with no orders.
func (e *Engine) OrdersByCustomer(rc domain.RequestContext, customerID string) []domain.Order {
	if lookup := e.LookupCustomer(rc, customerID); lookup.Outcome != Found {
		return []domain.Order{}
	}
	out := []domain.Order{}
	for _, o := range e.VisibleOrders(rc) {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out
}
