// Package domain contains the core domain models for the reseller license
// portal. These types serve as the Single Source of Truth (SSOT) for all
// layers of the application.
package domain

import (
	"fmt"
	"time"
)

// Role identifies the acting principal class. It is a closed enumeration;
// every visibility decision matches on it exhaustively so that adding a
// role forces a compile-time review of the checks.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleReseller Role = "reseller"
	RoleCustomer Role = "customer"
	RoleGuest    Role = "guest"
)

// ParseRole converts a wire-level role string into a Role.
// Unknown values are rejected rather than defaulted.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleReseller, RoleCustomer, RoleGuest:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether the role is one of the known enumeration values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleReseller, RoleCustomer, RoleGuest:
		return true
	}
	return false
}

// RoleSet is the set of roles a record is exposed to.
type RoleSet []Role

// Contains reports whether the set includes the given role.
func (s RoleSet) Contains(r Role) bool {
	for _, v := range s {
		if v == r {
			return true
		}
	}
	return false
}

// RequestContext carries the acting principal and the reference instant for
// time-relative computations. It replaces ambient "current role / current
// date" globals; every read operation takes one explicitly so concurrent
// multi-tenant use cannot contaminate across requests.
type RequestContext struct {
	Role          Role      `json:"role"`
	ResellerID    string    `json:"reseller_id,omitempty"`
	ReferenceDate time.Time `json:"reference_date"`
}

// NewRequestContext builds a context for a role, defaulting the reference
// date to now when the caller does not supply one.
func NewRequestContext(role Role, resellerID string, ref time.Time) RequestContext {
	if ref.IsZero() {
		ref = time.Now()
	}
	return RequestContext{Role: role, ResellerID: resellerID, ReferenceDate: ref}
}
