// Package store holds the in-memory dataset the portal operates over.
// There is no database engine behind it; the portal is a rules and
// aggregation layer over a snapshot plus whatever orders the workflow
// commits during the process lifetime.
package store

import (
	"fmt"
	"sync"

	"rslportal/pkg/contracts/domain"
)

// Store is a threadsafe in-memory collection of resellers, customers and
// orders plus the static catalog. Insertion order of customers and orders
// is preserved; listing and rollup tie-breaks rely on it.
type Store struct {
	mu        sync.RWMutex
	resellers []domain.Reseller
	customers []domain.Customer
	orders    []domain.Order
	catalog   domain.Catalog

	resellerIdx map[string]int
	customerIdx map[string]int
	orderIdx    map[string]int
}

// New creates an empty store with the given catalog.
func New(catalog domain.Catalog) *Store {
	return &Store{
		catalog:     catalog,
		resellerIdx: make(map[string]int),
		customerIdx: make(map[string]int),
		orderIdx:    make(map[string]int),
	}
}

// Catalog returns the static price lists. The catalog is read-only;
// callers get the value, not a reference into the store.
func (s *Store) Catalog() domain.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// AddReseller registers reference data. Duplicate ids are rejected.
func (s *Store) AddReseller(r domain.Reseller) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.resellerIdx[r.ID]; exists {
		return fmt.Errorf("reseller %s already exists", r.ID)
	}
	s.resellerIdx[r.ID] = len(s.resellers)
	s.resellers = append(s.resellers, r)
	return nil
}

// AddCustomer inserts a customer with a caller-chosen id. The referenced
// reseller must exist. Runtime commits go through CommitOrder instead.
func (s *Store) AddCustomer(c domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.customerIdx[c.ID]; exists {
		return fmt.Errorf("customer %s already exists", c.ID)
	}
	if _, ok := s.resellerIdx[c.ResellerID]; !ok {
		return fmt.Errorf("customer %s references unknown reseller %s", c.ID, c.ResellerID)
	}
	s.customerIdx[c.ID] = len(s.customers)
	s.customers = append(s.customers, c)
	return nil
}

// AddOrder inserts a committed order. The referenced customer must exist.
func (s *Store) AddOrder(o domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orderIdx[o.ID]; exists {
		return fmt.Errorf("order %s already exists", o.ID)
	}
	if _, ok := s.customerIdx[o.CustomerID]; !ok {
		return fmt.Errorf("order %s references unknown customer %s", o.ID, o.CustomerID)
	}
	s.orderIdx[o.ID] = len(s.orders)
	s.orders = append(s.orders, o)
	return nil
}

// Resellers returns a copy of all resellers in insertion order.
func (s *Store) Resellers() []domain.Reseller {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Reseller, len(s.resellers))
	copy(out, s.resellers)
	return out
}

// Customers returns a copy of all customers in insertion order.
func (s *Store) Customers() []domain.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Customer, len(s.customers))
	copy(out, s.customers)
	return out
}

// Orders returns a copy of all orders in insertion order.
func (s *Store) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Reseller looks up a reseller by id.
func (s *Store) Reseller(id string) (domain.Reseller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.resellerIdx[id]
	if !ok {
		return domain.Reseller{}, false
	}
	return s.resellers[i], true
}

// Customer looks up a customer by id without any visibility filtering.
// Callers outside this package go through the visibility engine instead.
func (s *Store) Customer(id string) (domain.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.customerIdx[id]
	if !ok {
		return domain.Customer{}, false
	}
	return s.customers[i], true
}

// Order looks up an order by id without any visibility filtering.
func (s *Store) Order(id string) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.orderIdx[id]
	if !ok {
		return domain.Order{}, false
	}
	return s.orders[i], true
}

// CommitOrder assigns the next sequential order id and inserts the order
// under a single lock, so concurrent commits cannot collide on an id.
// When newCustomer is non-nil it is inserted first, also with a freshly
// assigned id, and the order is pointed at it. All reference checks run
// before the first insert; a failed commit leaves the store untouched.
func (s *Store) CommitOrder(o domain.Order, newCustomer *domain.Customer) (domain.Order, domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created domain.Customer
	if newCustomer != nil {
		c := *newCustomer
		if _, ok := s.resellerIdx[c.ResellerID]; !ok {
			return domain.Order{}, domain.Customer{}, fmt.Errorf("customer references unknown reseller %s", c.ResellerID)
		}
		c.ID = fmt.Sprintf("cust-%03d", len(s.customers)+1)
		s.customerIdx[c.ID] = len(s.customers)
		s.customers = append(s.customers, c)
		created = c
		o.CustomerID = c.ID
	} else if _, ok := s.customerIdx[o.CustomerID]; !ok {
		return domain.Order{}, domain.Customer{}, fmt.Errorf("order references unknown customer %s", o.CustomerID)
	}

	o.ID = fmt.Sprintf("ord-%03d", len(s.orders)+1)
	s.orderIdx[o.ID] = len(s.orders)
	s.orders = append(s.orders, o)
	return o, created, nil
}
