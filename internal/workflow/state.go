// Package workflow implements the five-step order wizard as an explicit
// finite-state machine: Product, Stations, Customer, Review, Licenses,
// in strict linear order. Advancing runs the guard for the current step
// and either moves forward or rejects with field-level reasons, keeping
// the wizard on the same step. Backward navigation never re-validates.
//
// A Wizard carries no lock of its own: each instance belongs to a single
// caller and is serialized by the store that hands it out.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"rslportal/internal/pricing"
	"rslportal/pkg/contracts/domain"
)

// Step identifies a wizard state.
type Step string

const (
	StepProduct  Step = "product"
	StepStations Step = "stations"
	StepCustomer Step = "customer"
	StepReview   Step = "review"
	StepLicenses Step = "licenses"
)

// nextStep and prevStep form the linear transition table. Licenses has no
// forward edge; its only exit is Submit.
var nextStep = map[Step]Step{
	StepProduct:  StepStations,
	StepStations: StepCustomer,
	StepCustomer: StepReview,
	StepReview:   StepLicenses,
}

var prevStep = map[Step]Step{
	StepStations: StepProduct,
	StepCustomer: StepStations,
	StepReview:   StepCustomer,
	StepLicenses: StepReview,
}

// CustomerMode selects between an existing customer and a new one.
type CustomerMode string

const (
	CustomerModeExisting CustomerMode = "existing"
	CustomerModeNew      CustomerMode = "new"
)

// ProductSelection is the outcome of the Product step.
type ProductSelection struct {
	OrderType         domain.OrderType `json:"order_type"`
	ItemID            string           `json:"item_id"`
	SoftwareTermYears int              `json:"software_term_years"`
	WarrantyTermYears int              `json:"warranty_term_years,omitempty"`
}

// CustomerSelection is the outcome of the Customer step.
type CustomerSelection struct {
	Mode        CustomerMode             `json:"mode"`
	CustomerID  string                   `json:"customer_id,omitempty"`
	ResellerID  string                   `json:"reseller_id,omitempty"`
	NewCustomer *domain.NewCustomerInput `json:"new_customer,omitempty"`
}

// Wizard is the complete state of one order-creation workflow instance.
// All state is caller-owned; concurrent wizards share nothing.
type Wizard struct {
	ID        string            `json:"id"`
	Step      Step              `json:"step"`
	Product   ProductSelection  `json:"product"`
	Stations  []domain.Station  `json:"stations"`
	Customer  CustomerSelection `json:"customer"`
	Quote     pricing.Quote     `json:"quote"`
	CreatedAt time.Time         `json:"created_at"`

	// KeysIssued records that Review has been advanced at least once.
	// Going back from Licenses does not erase keys; re-advancing
	// regenerates them.
	KeysIssued bool `json:"keys_issued"`
}

// NewWizard starts a workflow instance at the Product step.
func NewWizard(id string, now time.Time) *Wizard {
	return &Wizard{
		ID:        id,
		Step:      StepProduct,
		Stations:  []domain.Station{},
		CreatedAt: now,
	}
}

// Clone returns a deep copy safe to hand outside the store's lock.
func (w *Wizard) Clone() *Wizard {
	c := *w
	c.Stations = make([]domain.Station, len(w.Stations))
	copy(c.Stations, w.Stations)
	if w.Customer.NewCustomer != nil {
		nc := *w.Customer.NewCustomer
		c.Customer.NewCustomer = &nc
	}
	return &c
}

// FieldError flags one failing input field during a guard check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Rejection is a validation failure for the current step. The wizard
// stays where it is; the caller corrects the input and advances again.
type Rejection struct {
	Step   Step         `json:"step"`
	Fields []FieldError `json:"fields"`
}

// Error implements the error interface.
func (r *Rejection) Error() string {
	if len(r.Fields) == 0 {
		return fmt.Sprintf("step %s rejected", r.Step)
	}
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return fmt.Sprintf("step %s rejected: %s", r.Step, strings.Join(parts, "; "))
}

func reject(step Step, fields ...FieldError) *Rejection {
	return &Rejection{Step: step, Fields: fields}
}
