package domain

import "time"

// Reseller is immutable reference data. A reseller owns zero or more
// customers through Customer.ResellerID.
type Reseller struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Region string `json:"region"`
}

// Customer is an account a reseller sells into. ResellerID must reference
// an existing Reseller. VisibleTo determines which roles may ever see the
// record; it is independent of, and narrower than, reseller scoping.
type Customer struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ResellerID string    `json:"reseller_id"`
	VisibleTo  RoleSet   `json:"visible_to"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	City       string    `json:"city,omitempty"`
	State      string    `json:"state,omitempty"`
	ZipCode    string    `json:"zip_code,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
}

// NewCustomerInput is the form captured by the order workflow when the
// buyer is not yet a known customer. All fields are presence-validated;
// no format rules beyond that.
type NewCustomerInput struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	ZipCode   string `json:"zip_code" validate:"required"`
}
