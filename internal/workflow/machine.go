package workflow

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"rslportal/internal/license"
	"rslportal/internal/pricing"
	"rslportal/internal/store"
	"rslportal/pkg/contracts/domain"
)

const (
	minTermYears = 1
	maxTermYears = 5
)

// ErrNotSubmittable is returned when Submit is attempted before the
// wizard has reached the Licenses step.
var ErrNotSubmittable = errors.New("workflow: submit is only valid from the licenses step")

// ErrAtFirstStep is returned when Back is attempted from the Product step.
var ErrAtFirstStep = errors.New("workflow: already at the first step")

// Event carries the input for one Advance call. Exactly the field matching
// the wizard's current step is consulted; Review and Licenses take none.
type Event struct {
	Product  *ProductInput  `json:"product,omitempty"`
	Stations *StationsInput `json:"stations,omitempty"`
	Customer *CustomerInput `json:"customer,omitempty"`
}

// ProductInput selects the order type, catalog item and term lengths.
type ProductInput struct {
	OrderType         string `json:"order_type"`
	ItemID            string `json:"item_id"`
	SoftwareTermYears int    `json:"software_term_years"`
	WarrantyTermYears int    `json:"warranty_term_years"`
}

// StationsInput sets the station count and per-station serial numbers.
// Growing the count preserves existing serials; shrinking truncates from
// the end. Serials are applied positionally.
type StationsInput struct {
	Count   int      `json:"count"`
	Serials []string `json:"serials"`
}

// CustomerInput picks an existing customer or supplies a new one.
type CustomerInput struct {
	Mode        string                   `json:"mode"`
	CustomerID  string                   `json:"customer_id,omitempty"`
	ResellerID  string                   `json:"reseller_id,omitempty"`
	NewCustomer *domain.NewCustomerInput `json:"new_customer,omitempty"`
}

// CommittedOrder is the result of a successful Submit: the persisted
// order plus the transient stations and the licenses synthesized from
// their keys for immediate display.
type CommittedOrder struct {
	Order    domain.Order     `json:"order"`
	Stations []domain.Station `json:"stations"`
	Licenses []domain.License `json:"licenses"`
}

// Machine runs wizards against the store, the license issuer and the
// pricing calculator. It holds no per-wizard state.
type Machine struct {
	store    *store.Store
	issuer   *license.Issuer
	calc     *pricing.Calculator
	validate *validator.Validate
}

// NewMachine creates a workflow machine.
func NewMachine(s *store.Store, issuer *license.Issuer, calc *pricing.Calculator) *Machine {
	return &Machine{
		store:    s,
		issuer:   issuer,
		calc:     calc,
		validate: validator.New(),
	}
}

// Advance runs the current step's guard against the event and moves the
// wizard forward on success. A *Rejection leaves the wizard in place.
func (m *Machine) Advance(w *Wizard, ev Event) error {
	switch w.Step {
	case StepProduct:
		return m.advanceProduct(w, ev.Product)
	case StepStations:
		return m.advanceStations(w, ev.Stations)
	case StepCustomer:
		return m.advanceCustomer(w, ev.Customer)
	case StepReview:
		return m.advanceReview(w)
	case StepLicenses:
		return reject(StepLicenses, FieldError{Field: "step", Message: "submit is the only exit from the licenses step"})
	default:
		return fmt.Errorf("workflow: unknown step %q", w.Step)
	}
}

// Back moves the wizard to its immediate predecessor without
// re-validating anything. Generated license keys survive.
func (m *Machine) Back(w *Wizard) error {
	prev, ok := prevStep[w.Step]
	if !ok {
		return ErrAtFirstStep
	}
	w.Step = prev
	return nil
}

func (m *Machine) advanceProduct(w *Wizard, in *ProductInput) error {
	if in == nil {
		return reject(StepProduct, FieldError{Field: "product", Message: "product selection is required"})
	}

	var fields []FieldError
	orderType := domain.OrderType(in.OrderType)
	switch orderType {
	case domain.OrderTypeSoftware:
		if _, ok := m.store.Catalog().SoftwarePackageByID(in.ItemID); !ok {
			fields = append(fields, FieldError{Field: "item_id", Message: "a software package must be chosen"})
		}
		if in.SoftwareTermYears < minTermYears || in.SoftwareTermYears > maxTermYears {
			fields = append(fields, FieldError{Field: "software_term_years", Message: "software term must be between 1 and 5 years"})
		}
	case domain.OrderTypeBundle:
		if _, ok := m.store.Catalog().BundleByID(in.ItemID); !ok {
			fields = append(fields, FieldError{Field: "item_id", Message: "a bundle must be chosen"})
		}
		if in.SoftwareTermYears < minTermYears || in.SoftwareTermYears > maxTermYears {
			fields = append(fields, FieldError{Field: "software_term_years", Message: "software term must be between 1 and 5 years"})
		}
		if in.WarrantyTermYears < minTermYears || in.WarrantyTermYears > maxTermYears {
			fields = append(fields, FieldError{Field: "warranty_term_years", Message: "warranty term must be between 1 and 5 years"})
		}
	default:
		fields = append(fields, FieldError{Field: "order_type", Message: "order type must be software or bundle"})
	}
	if len(fields) > 0 {
		return reject(StepProduct, fields...)
	}

	w.Product = ProductSelection{
		OrderType:         orderType,
		ItemID:            in.ItemID,
		SoftwareTermYears: in.SoftwareTermYears,
	}
	if orderType == domain.OrderTypeBundle {
		w.Product.WarrantyTermYears = in.WarrantyTermYears
	}
	w.Step = nextStep[StepProduct]
	return nil
}

func (m *Machine) advanceStations(w *Wizard, in *StationsInput) error {
	if in == nil {
		return reject(StepStations, FieldError{Field: "stations", Message: "station input is required"})
	}
	if in.Count < 1 {
		return reject(StepStations, FieldError{Field: "count", Message: "at least one station is required"})
	}

	// Resize to the requested count: existing serials survive a grow,
	// a shrink truncates from the end.
	stations := w.Stations
	if in.Count < len(stations) {
		stations = stations[:in.Count]
	}
	for len(stations) < in.Count {
		stations = append(stations, domain.Station{})
	}
	for i := 0; i < len(in.Serials) && i < len(stations); i++ {
		stations[i].SerialNumber = in.Serials[i]
	}

	var fields []FieldError
	for i := range stations {
		stations[i].IsValid = license.ValidateSerial(stations[i].SerialNumber)
		if !stations[i].IsValid {
			fields = append(fields, FieldError{
				Field:   fmt.Sprintf("stations[%d].serial_number", i),
				Message: "serial number must start with SN- and be at least 5 characters",
			})
		}
	}
	w.Stations = stations
	if len(fields) > 0 {
		return reject(StepStations, fields...)
	}

	w.Step = nextStep[StepStations]
	return nil
}

func (m *Machine) advanceCustomer(w *Wizard, in *CustomerInput) error {
	if in == nil {
		return reject(StepCustomer, FieldError{Field: "customer", Message: "customer selection is required"})
	}

	switch CustomerMode(in.Mode) {
	case CustomerModeExisting:
		if in.CustomerID == "" {
			return reject(StepCustomer, FieldError{Field: "customer_id", Message: "an existing customer must be chosen"})
		}
		if _, ok := m.store.Customer(in.CustomerID); !ok {
			return reject(StepCustomer, FieldError{Field: "customer_id", Message: "customer not found"})
		}
		w.Customer = CustomerSelection{Mode: CustomerModeExisting, CustomerID: in.CustomerID}
	case CustomerModeNew:
		if in.NewCustomer == nil {
			return reject(StepCustomer, FieldError{Field: "new_customer", Message: "new customer details are required"})
		}
		if err := m.validate.Struct(in.NewCustomer); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				fields := make([]FieldError, 0, len(verrs))
				for _, ve := range verrs {
					fields = append(fields, FieldError{Field: ve.Field(), Message: "required"})
				}
				return reject(StepCustomer, fields...)
			}
			return err
		}
		nc := *in.NewCustomer
		w.Customer = CustomerSelection{Mode: CustomerModeNew, ResellerID: in.ResellerID, NewCustomer: &nc}
	default:
		return reject(StepCustomer, FieldError{Field: "mode", Message: "mode must be existing or new"})
	}

	quote, err := m.quote(w)
	if err != nil {
		return err
	}
	w.Quote = quote
	w.Step = nextStep[StepCustomer]
	return nil
}

// advanceReview recomputes the quote and issues license keys for every
// station. Re-entering Review and advancing again regenerates all keys;
// previously displayed keys are not tracked.
func (m *Machine) advanceReview(w *Wizard) error {
	quote, err := m.quote(w)
	if err != nil {
		return err
	}
	w.Quote = quote

	for i := range w.Stations {
		w.Stations[i].SoftwareLicenseKey = ""
		w.Stations[i].WarrantyLicenseKey = ""
		if license.NeedsSoftwareLicense(w.Product.ItemID) {
			w.Stations[i].SoftwareLicenseKey = m.issuer.GenerateKey(domain.LicenseTypeSoftware, w.Stations[i].SerialNumber)
		}
		if license.NeedsWarrantyLicense(w.Product.ItemID) {
			w.Stations[i].WarrantyLicenseKey = m.issuer.GenerateKey(domain.LicenseTypeWarranty, w.Stations[i].SerialNumber)
		}
	}
	w.KeysIssued = true
	w.Step = nextStep[StepReview]
	return nil
}

func (m *Machine) quote(w *Wizard) (pricing.Quote, error) {
	return m.calc.Quote(
		w.Product.OrderType,
		w.Product.ItemID,
		w.Product.SoftwareTermYears,
		w.Product.WarrantyTermYears,
		len(w.Stations),
	)
}

// Submit commits the wizard into a persisted order. Only valid from the
// Licenses step. A new-customer selection creates the customer first,
// owned by the acting reseller (or the reseller chosen at the Customer
// step when the actor is not a reseller).
func (m *Machine) Submit(w *Wizard, rc domain.RequestContext) (*CommittedOrder, error) {
	if w.Step != StepLicenses {
		return nil, ErrNotSubmittable
	}

	var newCustomer *domain.Customer
	if w.Customer.Mode == CustomerModeNew {
		resellerID := rc.ResellerID
		if resellerID == "" {
			resellerID = w.Customer.ResellerID
		}
		if _, ok := m.store.Reseller(resellerID); !ok {
			return nil, fmt.Errorf("workflow: new customer requires an owning reseller, %q is not known", resellerID)
		}
		nc := w.Customer.NewCustomer
		newCustomer = &domain.Customer{
			Name:       nc.FirstName + " " + nc.LastName,
			Email:      nc.Email,
			CreatedAt:  rc.ReferenceDate,
			ResellerID: resellerID,
			VisibleTo:  domain.RoleSet{domain.RoleAdmin, domain.RoleReseller, domain.RoleCustomer},
			Phone:      nc.Phone,
			Address:    nc.Address,
			City:       nc.City,
			State:      nc.State,
			ZipCode:    nc.ZipCode,
		}
	}

	// The store assigns ids atomically with the inserts; concurrent
	// submits each get their own sequence numbers.
	order, _, err := m.store.CommitOrder(domain.Order{
		CustomerID: w.Customer.CustomerID,
		Status:     domain.OrderStatusPending,
		Amount:     w.Quote.Total,
		Date:       rc.ReferenceDate,
		Items:      []string{w.Product.ItemID},
		VisibleTo:  domain.RoleSet{domain.RoleAdmin, domain.RoleReseller, domain.RoleCustomer},
		TotalValue: w.Quote.Total,
		Stations:   len(w.Stations),
	}, newCustomer)
	if err != nil {
		return nil, err
	}

	committed := &CommittedOrder{
		Order:    order,
		Stations: make([]domain.Station, len(w.Stations)),
		Licenses: m.synthesizeLicenses(w, rc),
	}
	copy(committed.Stations, w.Stations)
	return committed, nil
}

// synthesizeLicenses derives display licenses from the stations' keys.
// Licenses are a view-level derivative; only the order is persisted.
func (m *Machine) synthesizeLicenses(w *Wizard, rc domain.RequestContext) []domain.License {
	var out []domain.License
	start := rc.ReferenceDate
	for _, st := range w.Stations {
		if st.SoftwareLicenseKey != "" {
			out = append(out, domain.License{
				ID:        st.SoftwareLicenseKey,
				Type:      domain.LicenseTypeSoftware,
				Key:       st.SoftwareLicenseKey,
				StartDate: start,
				EndDate:   start.AddDate(w.Product.SoftwareTermYears, 0, 0),
				StationID: st.SerialNumber,
			})
		}
		if st.WarrantyLicenseKey != "" {
			years := w.Product.WarrantyTermYears
			if years == 0 {
				years = w.Product.SoftwareTermYears
			}
			out = append(out, domain.License{
				ID:        st.WarrantyLicenseKey,
				Type:      domain.LicenseTypeWarranty,
				Key:       st.WarrantyLicenseKey,
				StartDate: start,
				EndDate:   start.AddDate(years, 0, 0),
				StationID: st.SerialNumber,
			})
		}
	}
	return out
}
