package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rslportal/internal/config"
	"rslportal/internal/license"
	"rslportal/internal/middleware"
	"rslportal/internal/pricing"
	"rslportal/internal/reports"
	"rslportal/internal/services"
	"rslportal/internal/store"
	"rslportal/internal/visibility"
	"rslportal/internal/workflow"
	"rslportal/pkg/contracts/domain"
)

const refDateHeader = "2025-03-06T12:00:00Z"

// newTestServer wires the full stack over the seeded dataset, with
// metrics and rate limiting disabled.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	s, err := store.NewSeeded()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := visibility.NewEngine(s)
	issuer := license.NewIssuer(rand.NewSource(1))
	machine := workflow.NewMachine(s, issuer, pricing.NewCalculator(s.Catalog()))

	router := NewRouter(RouterDeps{
		Portal:   services.NewPortalService(engine, reports.NewService(engine), logger),
		Workflow: services.NewWorkflowService(machine, workflow.NewMemoryStore(), nil, logger),
		License:  services.NewLicenseService(issuer, logger),
		Logger:   logger,
		Security: config.SecurityConfig{},
	})

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

// doJSON performs a request with the identity headers and decodes the
// JSON body into out.
func doJSON(t *testing.T, ts *httptest.Server, method, path string, headers map[string]string, body, out any) int {
	t.Helper()

	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func asRole(role, resellerID string) map[string]string {
	h := map[string]string{
		middleware.HeaderRole:          role,
		middleware.HeaderReferenceDate: refDateHeader,
	}
	if resellerID != "" {
		h[middleware.HeaderResellerID] = resellerID
	}
	return h
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	var body map[string]any
	status := doJSON(t, ts, http.MethodGet, "/healthz", nil, nil, &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestCustomerListByRole(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name    string
		headers map[string]string
		wantIDs []string
	}{
		{name: "admin", headers: asRole("admin", ""), wantIDs: []string{"cust-001", "cust-002", "cust-003", "cust-004"}},
		{name: "reseller rs1", headers: asRole("reseller", "rs1"), wantIDs: []string{"cust-001"}},
		{name: "reseller rs2", headers: asRole("reseller", "rs2"), wantIDs: []string{"cust-003", "cust-004"}},
		{name: "customer", headers: asRole("customer", ""), wantIDs: []string{"cust-001", "cust-003", "cust-004"}},
		{name: "guest", headers: asRole("guest", ""), wantIDs: []string{}},
		{name: "unknown role treated as guest", headers: asRole("superuser", ""), wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var customers []domain.Customer
			status := doJSON(t, ts, http.MethodGet, "/api/customers", tt.headers, nil, &customers)
			require.Equal(t, http.StatusOK, status)
			ids := make([]string, len(customers))
			for i, c := range customers {
				ids[i] = c.ID
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestHiddenCustomerLooksMissing(t *testing.T) {
	ts := newTestServer(t)
	headers := asRole("customer", "")

	// cust-002 exists but is admin-only; cust-999 does not exist. The
	// responses must be byte-for-byte identical.
	get := func(id string) (int, string) {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/customers/"+id, nil)
		require.NoError(t, err)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		resp, err := ts.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	hiddenStatus, hiddenBody := get("cust-002")
	missingStatus, missingBody := get("cust-999")

	assert.Equal(t, http.StatusNotFound, hiddenStatus)
	assert.Equal(t, missingStatus, hiddenStatus)
	assert.Equal(t, missingBody, hiddenBody)

	// Admin still sees it.
	var c domain.Customer
	status := doJSON(t, ts, http.MethodGet, "/api/customers/cust-002", asRole("admin", ""), nil, &c)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cust-002", c.ID)
}

func TestOrderListByRole(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name    string
		headers map[string]string
		wantIDs []string
	}{
		{name: "admin", headers: asRole("admin", ""), wantIDs: []string{"ord-001", "ord-002", "ord-003", "ord-004", "ord-005", "ord-006"}},
		{name: "reseller rs1", headers: asRole("reseller", "rs1"), wantIDs: []string{"ord-001", "ord-002"}},
		{name: "customer", headers: asRole("customer", ""), wantIDs: []string{"ord-001", "ord-002", "ord-004", "ord-005", "ord-006"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var orders []domain.Order
			status := doJSON(t, ts, http.MethodGet, "/api/orders", tt.headers, nil, &orders)
			require.Equal(t, http.StatusOK, status)
			ids := make([]string, len(orders))
			for i, o := range orders {
				ids[i] = o.ID
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestCustomerOrdersEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var orders []domain.Order
	status := doJSON(t, ts, http.MethodGet, "/api/customers/cust-001/orders", asRole("reseller", "rs1"), nil, &orders)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, orders, 2)

	// A customer the caller cannot see yields an empty list, not a 404.
	status = doJSON(t, ts, http.MethodGet, "/api/customers/cust-002/orders", asRole("customer", ""), nil, &orders)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, orders)
}

func TestReportEndpoints(t *testing.T) {
	ts := newTestServer(t)

	t.Run("customer-orders rollup", func(t *testing.T) {
		var rows []struct {
			reports.CustomerRollup
			CreatedAgo string `json:"created_ago"`
		}
		status := doJSON(t, ts, http.MethodGet, "/api/reports/customer-orders", asRole("admin", ""), nil, &rows)
		require.Equal(t, http.StatusOK, status)
		require.Len(t, rows, 4)
		assert.Equal(t, "cust-001", rows[0].ID)
		assert.Equal(t, 2, rows[0].Orders)
		assert.Equal(t, "ord-002", rows[0].LastOrder)
		assert.InDelta(t, 2959.98, rows[0].TotalSpent, 1e-9)
		assert.NotEmpty(t, rows[0].CreatedAgo)
	})

	t.Run("order-details unknown customer fallback", func(t *testing.T) {
		var rows []struct {
			reports.OrderWithCustomer
			PlacedAgo string `json:"placed_ago"`
		}
		status := doJSON(t, ts, http.MethodGet, "/api/reports/order-details", asRole("customer", ""), nil, &rows)
		require.Equal(t, http.StatusOK, status)
		for _, row := range rows {
			assert.NotEmpty(t, row.CustomerName)
			assert.NotEmpty(t, row.PlacedAgo)
		}
	})

	t.Run("today", func(t *testing.T) {
		var orders []domain.Order
		status := doJSON(t, ts, http.MethodGet, "/api/reports/today", asRole("admin", ""), nil, &orders)
		require.Equal(t, http.StatusOK, status)
		ids := make([]string, len(orders))
		for i, o := range orders {
			ids[i] = o.ID
		}
		assert.Equal(t, []string{"ord-003", "ord-004"}, ids)

		status = doJSON(t, ts, http.MethodGet, "/api/reports/today", asRole("customer", ""), nil, &orders)
		require.Equal(t, http.StatusOK, status)
		require.Len(t, orders, 1)
		assert.Equal(t, "ord-004", orders[0].ID)
	})

	t.Run("orders workbook", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/reports/orders.xlsx", nil)
		require.NoError(t, err)
		for k, v := range asRole("admin", "") {
			req.Header.Set(k, v)
		}
		resp, err := ts.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "orders-2025-03-06.xlsx")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.NotEmpty(t, body)
	})
}

func TestLicenseEndpoints(t *testing.T) {
	ts := newTestServer(t)
	headers := asRole("admin", "")

	t.Run("validate serial", func(t *testing.T) {
		var resp ValidateSerialResponse
		status := doJSON(t, ts, http.MethodPost, "/api/license/validate-serial", headers,
			ValidateSerialRequest{SerialNumber: "SN-12345"}, &resp)
		require.Equal(t, http.StatusOK, status)
		assert.True(t, resp.Valid)

		status = doJSON(t, ts, http.MethodPost, "/api/license/validate-serial", headers,
			ValidateSerialRequest{SerialNumber: "AB-12345"}, &resp)
		require.Equal(t, http.StatusOK, status)
		assert.False(t, resp.Valid)
	})

	t.Run("generate key", func(t *testing.T) {
		var resp GenerateKeyResponse
		status := doJSON(t, ts, http.MethodPost, "/api/license/generate", headers,
			GenerateKeyRequest{Kind: "software", SerialNumber: "SN-12345"}, &resp)
		require.Equal(t, http.StatusOK, status)
		assert.Regexp(t, `^SW-[0-9A-Z]{8}-12345$`, resp.Key)
	})

	t.Run("generate rejects invalid serial", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodPost, "/api/license/generate", headers,
			GenerateKeyRequest{Kind: "warranty", SerialNumber: "BAD"}, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("generate rejects unknown kind", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodPost, "/api/license/generate", headers,
			GenerateKeyRequest{Kind: "hardware", SerialNumber: "SN-12345"}, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestWorkflowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	headers := asRole("reseller", "rs1")

	var wizard workflow.Wizard
	status := doJSON(t, ts, http.MethodPost, "/api/workflow", headers, nil, &wizard)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, wizard.ID)
	assert.Equal(t, workflow.StepProduct, wizard.Step)
	base := "/api/workflow/" + wizard.ID

	t.Run("guard rejection returns 400 with fields", func(t *testing.T) {
		var resp AdvanceResponse
		status := doJSON(t, ts, http.MethodPost, base+"/advance", headers,
			workflow.Event{Product: &workflow.ProductInput{OrderType: "software", ItemID: "sw9", SoftwareTermYears: 2}}, &resp)
		require.Equal(t, http.StatusBadRequest, status)
		require.NotNil(t, resp.Rejection)
		assert.Equal(t, workflow.StepProduct, resp.Rejection.Step)
		assert.Equal(t, workflow.StepProduct, resp.Wizard.Step)
	})

	advance := func(t *testing.T, ev workflow.Event, wantStep workflow.Step) {
		t.Helper()
		var resp AdvanceResponse
		status := doJSON(t, ts, http.MethodPost, base+"/advance", headers, ev, &resp)
		require.Equal(t, http.StatusOK, status)
		require.Nil(t, resp.Rejection)
		require.Equal(t, wantStep, resp.Wizard.Step)
	}

	advance(t, workflow.Event{Product: &workflow.ProductInput{
		OrderType: "software", ItemID: "sw1", SoftwareTermYears: 2,
	}}, workflow.StepStations)
	advance(t, workflow.Event{Stations: &workflow.StationsInput{
		Count: 2, Serials: []string{"SN-12345", "SN-67890"},
	}}, workflow.StepCustomer)
	advance(t, workflow.Event{Customer: &workflow.CustomerInput{
		Mode: "existing", CustomerID: "cust-001",
	}}, workflow.StepReview)
	advance(t, workflow.Event{}, workflow.StepLicenses)

	t.Run("premature submit before licenses step", func(t *testing.T) {
		var other workflow.Wizard
		status := doJSON(t, ts, http.MethodPost, "/api/workflow", headers, nil, &other)
		require.Equal(t, http.StatusCreated, status)
		status = doJSON(t, ts, http.MethodPost, "/api/workflow/"+other.ID+"/submit", headers, nil, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	var committed workflow.CommittedOrder
	status = doJSON(t, ts, http.MethodPost, base+"/submit", headers, nil, &committed)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "cust-001", committed.Order.CustomerID)
	assert.InDelta(t, 1400.00, committed.Order.Amount, 1e-9)
	require.Len(t, committed.Licenses, 2)

	t.Run("wizard is gone after submit", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodGet, base, headers, nil, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("committed order shows up in listings", func(t *testing.T) {
		var order domain.Order
		status := doJSON(t, ts, http.MethodGet, "/api/orders/"+committed.Order.ID, headers, nil, &order)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, domain.OrderStatusPending, order.Status)
	})

	t.Run("unknown wizard id", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodPost, "/api/workflow/nope/advance", headers, workflow.Event{}, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestWorkflowBackOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	headers := asRole("admin", "")

	var wizard workflow.Wizard
	status := doJSON(t, ts, http.MethodPost, "/api/workflow", headers, nil, &wizard)
	require.Equal(t, http.StatusCreated, status)
	base := "/api/workflow/" + wizard.ID

	t.Run("back from the first step is rejected", func(t *testing.T) {
		status := doJSON(t, ts, http.MethodPost, base+"/back", headers, nil, nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	var resp AdvanceResponse
	status = doJSON(t, ts, http.MethodPost, base+"/advance", headers,
		workflow.Event{Product: &workflow.ProductInput{OrderType: "bundle", ItemID: "b1", SoftwareTermYears: 1, WarrantyTermYears: 1}}, &resp)
	require.Equal(t, http.StatusOK, status)

	status = doJSON(t, ts, http.MethodPost, base+"/back", headers, nil, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, workflow.StepProduct, resp.Wizard.Step)
}
