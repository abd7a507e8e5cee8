package workflow_test

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rslportal/internal/license"
	"rslportal/internal/pricing"
	"rslportal/internal/store"
	"rslportal/internal/workflow"
	"rslportal/pkg/contracts/domain"
)

var refDate = time.Date(2025, 3, 6, 12, 0, 0, 0, time.UTC)

func newMachine(t *testing.T) (*workflow.Machine, *store.Store) {
	t.Helper()
	s, err := store.NewSeeded()
	require.NoError(t, err)
	m := workflow.NewMachine(s, license.NewIssuer(rand.NewSource(42)), pricing.NewCalculator(s.Catalog()))
	return m, s
}

func newWizard() *workflow.Wizard {
	return workflow.NewWizard("wiz-1", refDate)
}

// driveTo advances a fresh wizard through the happy path until the wanted
// step is reached.
func driveTo(t *testing.T, m *workflow.Machine, w *workflow.Wizard, target workflow.Step) {
	t.Helper()
	steps := []struct {
		at workflow.Step
		ev workflow.Event
	}{
		{workflow.StepProduct, workflow.Event{Product: &workflow.ProductInput{
			OrderType: "software", ItemID: "sw1", SoftwareTermYears: 2,
		}}},
		{workflow.StepStations, workflow.Event{Stations: &workflow.StationsInput{
			Count: 2, Serials: []string{"SN-12345", "SN-67890"},
		}}},
		{workflow.StepCustomer, workflow.Event{Customer: &workflow.CustomerInput{
			Mode: "existing", CustomerID: "cust-001",
		}}},
		{workflow.StepReview, workflow.Event{}},
	}
	for _, st := range steps {
		if w.Step == target {
			return
		}
		require.Equal(t, st.at, w.Step)
		require.NoError(t, m.Advance(w, st.ev))
	}
	require.Equal(t, target, w.Step)
}

func TestProductStepGuards(t *testing.T) {
	m, _ := newMachine(t)

	tests := []struct {
		name       string
		input      *workflow.ProductInput
		wantFields []string
	}{
		{name: "missing input", input: nil, wantFields: []string{"product"}},
		{
			name:       "unknown order type",
			input:      &workflow.ProductInput{OrderType: "warranty", ItemID: "wr1", SoftwareTermYears: 1},
			wantFields: []string{"order_type"},
		},
		{
			name:       "unknown software package",
			input:      &workflow.ProductInput{OrderType: "software", ItemID: "sw9", SoftwareTermYears: 1},
			wantFields: []string{"item_id"},
		},
		{
			name:       "term below range",
			input:      &workflow.ProductInput{OrderType: "software", ItemID: "sw1", SoftwareTermYears: 0},
			wantFields: []string{"software_term_years"},
		},
		{
			name:       "term above range",
			input:      &workflow.ProductInput{OrderType: "software", ItemID: "sw1", SoftwareTermYears: 6},
			wantFields: []string{"software_term_years"},
		},
		{
			name:       "bundle missing warranty term",
			input:      &workflow.ProductInput{OrderType: "bundle", ItemID: "b1", SoftwareTermYears: 2},
			wantFields: []string{"warranty_term_years"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWizard()
			err := m.Advance(w, workflow.Event{Product: tt.input})
			var rej *workflow.Rejection
			require.ErrorAs(t, err, &rej)
			assert.Equal(t, workflow.StepProduct, rej.Step)
			assert.Equal(t, workflow.StepProduct, w.Step, "rejection must not move the wizard")
			got := make([]string, len(rej.Fields))
			for i, f := range rej.Fields {
				got[i] = f.Field
			}
			for _, f := range tt.wantFields {
				assert.Contains(t, got, f)
			}
		})
	}
}

func TestStationSerialValidation(t *testing.T) {
	m, _ := newMachine(t)
	w := newWizard()
	driveTo(t, m, w, workflow.StepStations)

	err := m.Advance(w, workflow.Event{Stations: &workflow.StationsInput{
		Count: 2, Serials: []string{"BAD", "SN-67890"},
	}})
	var rej *workflow.Rejection
	require.ErrorAs(t, err, &rej)
	require.Len(t, rej.Fields, 1)
	assert.Equal(t, "stations[0].serial_number", rej.Fields[0].Field)
	assert.Equal(t, workflow.StepStations, w.Step)
	assert.False(t, w.Stations[0].IsValid, "per-station validity is recorded on rejection")
	assert.True(t, w.Stations[1].IsValid)

	// Correcting only the failing serial passes; the valid one is kept.
	err = m.Advance(w, workflow.Event{Stations: &workflow.StationsInput{
		Count: 2, Serials: []string{"SN-99999", "SN-67890"},
	}})
	require.NoError(t, err)
	assert.Equal(t, workflow.StepCustomer, w.Step)
	assert.Equal(t, "SN-99999", w.Stations[0].SerialNumber)
}

func TestStationResize(t *testing.T) {
	m, _ := newMachine(t)
	w := newWizard()
	driveTo(t, m, w, workflow.StepStations)

	require.NoError(t, m.Advance(w, workflow.Event{Stations: &workflow.StationsInput{
		Count: 2, Serials: []string{"SN-11111", "SN-22222"},
	}}))
	require.NoError(t, m.Back(w))

	t.Run("grow preserves existing serials", func(t *testing.T) {
		err := m.Advance(w, workflow.Event{Stations: &workflow.StationsInput{Count: 3}})
		var rej *workflow.Rejection
		require.ErrorAs(t, err, &rej, "the added station has no serial yet")
		require.Len(t, w.Stations, 3)
		assert.Equal(t, "SN-11111", w.Stations[0].SerialNumber)
		assert.Equal(t, "SN-22222", w.Stations[1].SerialNumber)
		assert.Empty(t, w.Stations[2].SerialNumber)
	})

	t.Run("shrink truncates from the end", func(t *testing.T) {
		require.NoError(t, m.Advance(w, workflow.Event{Stations: &workflow.StationsInput{Count: 1}}))
		require.Len(t, w.Stations, 1)
		assert.Equal(t, "SN-11111", w.Stations[0].SerialNumber)
	})

	t.Run("zero stations rejected", func(t *testing.T) {
		w := newWizard()
		driveTo(t, m, w, workflow.StepStations)
		err := m.Advance(w, workflow.Event{Stations: &workflow.StationsInput{Count: 0}})
		var rej *workflow.Rejection
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, "count", rej.Fields[0].Field)
	})
}

func TestCustomerStepGuards(t *testing.T) {
	m, _ := newMachine(t)

	t.Run("unknown existing customer", func(t *testing.T) {
		w := newWizard()
		driveTo(t, m, w, workflow.StepCustomer)
		err := m.Advance(w, workflow.Event{Customer: &workflow.CustomerInput{
			Mode: "existing", CustomerID: "cust-999",
		}})
		var rej *workflow.Rejection
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, "customer_id", rej.Fields[0].Field)
	})

	t.Run("new customer missing fields", func(t *testing.T) {
		w := newWizard()
		driveTo(t, m, w, workflow.StepCustomer)
		err := m.Advance(w, workflow.Event{Customer: &workflow.CustomerInput{
			Mode:        "new",
			NewCustomer: &domain.NewCustomerInput{FirstName: "Ada"},
		}})
		var rej *workflow.Rejection
		require.ErrorAs(t, err, &rej)
		assert.Len(t, rej.Fields, 7, "every absent field is reported")
	})

	t.Run("existing customer computes quote", func(t *testing.T) {
		w := newWizard()
		driveTo(t, m, w, workflow.StepReview)
		// sw1 at 350.00 for 2 years and 2 stations.
		assert.InDelta(t, 700.00, w.Quote.PricePerStation, 1e-9)
		assert.InDelta(t, 1400.00, w.Quote.Total, 1e-9)
	})
}

func TestReviewIssuesKeys(t *testing.T) {
	m, _ := newMachine(t)
	w := newWizard()
	driveTo(t, m, w, workflow.StepReview)

	require.NoError(t, m.Advance(w, workflow.Event{}))
	assert.Equal(t, workflow.StepLicenses, w.Step)
	assert.True(t, w.KeysIssued)
	for _, st := range w.Stations {
		assert.NotEmpty(t, st.SoftwareLicenseKey)
		assert.Empty(t, st.WarrantyLicenseKey, "software-only order gets no warranty keys")
	}
}

func TestBackKeepsKeysAndReAdvanceRegenerates(t *testing.T) {
	m, _ := newMachine(t)
	w := newWizard()
	driveTo(t, m, w, workflow.StepReview)
	require.NoError(t, m.Advance(w, workflow.Event{}))
	first := w.Stations[0].SoftwareLicenseKey

	require.NoError(t, m.Back(w))
	assert.Equal(t, workflow.StepReview, w.Step)
	assert.Equal(t, first, w.Stations[0].SoftwareLicenseKey, "going back does not erase keys")

	require.NoError(t, m.Advance(w, workflow.Event{}))
	assert.NotEqual(t, first, w.Stations[0].SoftwareLicenseKey, "re-advancing review issues fresh keys")
}

func TestBackFromFirstStep(t *testing.T) {
	m, _ := newMachine(t)
	w := newWizard()
	assert.ErrorIs(t, m.Back(w), workflow.ErrAtFirstStep)
}

func TestAdvanceFromLicensesRejected(t *testing.T) {
	m, _ := newMachine(t)
	w := newWizard()
	driveTo(t, m, w, workflow.StepReview)
	require.NoError(t, m.Advance(w, workflow.Event{}))

	var rej *workflow.Rejection
	require.ErrorAs(t, m.Advance(w, workflow.Event{}), &rej)
	assert.Equal(t, workflow.StepLicenses, rej.Step)
}

func TestSubmitExistingCustomer(t *testing.T) {
	m, s := newMachine(t)
	w := newWizard()
	driveTo(t, m, w, workflow.StepReview)
	require.NoError(t, m.Advance(w, workflow.Event{}))

	rc := domain.NewRequestContext(domain.RoleAdmin, "", refDate)
	committed, err := m.Submit(w, rc)
	require.NoError(t, err)

	assert.Equal(t, "cust-001", committed.Order.CustomerID)
	assert.Equal(t, domain.OrderStatusPending, committed.Order.Status)
	assert.InDelta(t, 1400.00, committed.Order.Amount, 1e-9)
	assert.Equal(t, refDate, committed.Order.Date)
	assert.Equal(t, []string{"sw1"}, committed.Order.Items)
	assert.Equal(t, 2, committed.Order.Stations)

	require.Len(t, committed.Licenses, 2)
	for _, lic := range committed.Licenses {
		assert.Equal(t, domain.LicenseTypeSoftware, lic.Type)
		assert.Equal(t, refDate, lic.StartDate)
		assert.Equal(t, refDate.AddDate(2, 0, 0), lic.EndDate)
	}

	persisted, ok := s.Order(committed.Order.ID)
	require.True(t, ok, "submitted order must be in the store")
	assert.Equal(t, committed.Order, persisted)
}

func TestSubmitBundleSynthesizesBothLicenses(t *testing.T) {
	m, _ := newMachine(t)
	w := newWizard()
	require.NoError(t, m.Advance(w, workflow.Event{Product: &workflow.ProductInput{
		OrderType: "bundle", ItemID: "b1", SoftwareTermYears: 3, WarrantyTermYears: 1,
	}}))
	require.NoError(t, m.Advance(w, workflow.Event{Stations: &workflow.StationsInput{
		Count: 1, Serials: []string{"SN-12345"},
	}}))
	require.NoError(t, m.Advance(w, workflow.Event{Customer: &workflow.CustomerInput{
		Mode: "existing", CustomerID: "cust-001",
	}}))
	require.NoError(t, m.Advance(w, workflow.Event{}))

	committed, err := m.Submit(w, domain.NewRequestContext(domain.RoleAdmin, "", refDate))
	require.NoError(t, err)

	// Bundle pricing follows the longer term: 429.99 x 3.
	assert.InDelta(t, 1289.97, committed.Order.Amount, 1e-9)

	require.Len(t, committed.Licenses, 2)
	byType := map[domain.LicenseType]domain.License{}
	for _, lic := range committed.Licenses {
		byType[lic.Type] = lic
	}
	assert.Equal(t, refDate.AddDate(3, 0, 0), byType[domain.LicenseTypeSoftware].EndDate)
	assert.Equal(t, refDate.AddDate(1, 0, 0), byType[domain.LicenseTypeWarranty].EndDate)
}

func TestSubmitNewCustomer(t *testing.T) {
	newCustomer := &domain.NewCustomerInput{
		FirstName: "Ada", LastName: "Byrne", Email: "ada@byrne.example",
		Phone: "555-0199", Address: "3 Dock Lane", City: "Salem", State: "OR", ZipCode: "97301",
	}
	drive := func(t *testing.T, m *workflow.Machine, resellerID string) *workflow.Wizard {
		t.Helper()
		w := newWizard()
		driveTo(t, m, w, workflow.StepCustomer)
		require.NoError(t, m.Advance(w, workflow.Event{Customer: &workflow.CustomerInput{
			Mode: "new", ResellerID: resellerID, NewCustomer: newCustomer,
		}}))
		require.NoError(t, m.Advance(w, workflow.Event{}))
		return w
	}

	t.Run("acting reseller owns the customer", func(t *testing.T) {
		m, s := newMachine(t)
		w := drive(t, m, "")
		committed, err := m.Submit(w, domain.NewRequestContext(domain.RoleReseller, "rs2", refDate))
		require.NoError(t, err)

		c, ok := s.Customer(committed.Order.CustomerID)
		require.True(t, ok)
		assert.Equal(t, "rs2", c.ResellerID)
		assert.Equal(t, "Ada Byrne", c.Name)
		assert.Equal(t, refDate, c.CreatedAt)
	})

	t.Run("admin falls back to the selected reseller", func(t *testing.T) {
		m, s := newMachine(t)
		w := drive(t, m, "rs1")
		committed, err := m.Submit(w, domain.NewRequestContext(domain.RoleAdmin, "", refDate))
		require.NoError(t, err)

		c, ok := s.Customer(committed.Order.CustomerID)
		require.True(t, ok)
		assert.Equal(t, "rs1", c.ResellerID)
	})

	t.Run("no resolvable reseller fails", func(t *testing.T) {
		m, _ := newMachine(t)
		w := drive(t, m, "")
		_, err := m.Submit(w, domain.NewRequestContext(domain.RoleAdmin, "", refDate))
		assert.Error(t, err)
	})
}

func TestSubmitConcurrent(t *testing.T) {
	m, s := newMachine(t)
	rc := domain.NewRequestContext(domain.RoleReseller, "rs1", refDate)

	const submits = 16
	wizards := make([]*workflow.Wizard, submits)
	for i := range wizards {
		w := workflow.NewWizard(fmt.Sprintf("wiz-%d", i), refDate)
		driveTo(t, m, w, workflow.StepReview)
		require.NoError(t, m.Advance(w, workflow.Event{}))
		wizards[i] = w
	}

	start := make(chan struct{})
	committed := make([]*workflow.CommittedOrder, submits)
	errs := make([]error, submits)
	var wg sync.WaitGroup
	for i, w := range wizards {
		wg.Add(1)
		go func(i int, w *workflow.Wizard) {
			defer wg.Done()
			<-start
			committed[i], errs[i] = m.Submit(w, rc)
		}(i, w)
	}
	close(start)
	wg.Wait()

	seen := make(map[string]bool, submits)
	for i := range wizards {
		require.NoError(t, errs[i], "submit %d", i)
		id := committed[i].Order.ID
		assert.False(t, seen[id], "duplicate order id %s", id)
		seen[id] = true
		_, ok := s.Order(id)
		assert.True(t, ok)
	}
}

func TestSubmitOnlyFromLicenses(t *testing.T) {
	m, _ := newMachine(t)
	w := newWizard()
	driveTo(t, m, w, workflow.StepReview)

	_, err := m.Submit(w, domain.NewRequestContext(domain.RoleAdmin, "", refDate))
	assert.ErrorIs(t, err, workflow.ErrNotSubmittable)
}
