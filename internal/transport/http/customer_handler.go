package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "rslportal/internal/errors"
	"rslportal/internal/middleware"
	"rslportal/internal/services"
)

// CustomerHandler serves visibility-scoped customer reads.
type CustomerHandler struct {
	service services.PortalService
	logger  *slog.Logger
}

// NewCustomerHandler creates a customer handler.
func NewCustomerHandler(service services.PortalService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "customer")),
	}
}

// Routes returns the chi router for customer endpoints.
func (h *CustomerHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/orders", h.Orders)
	return r
}

// List handles GET /api/customers.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := middleware.IdentityFromContext(ctx)

	customers := h.service.GetVisibleCustomers(ctx, rc)
	render.JSON(w, r, customers)
}

// Get handles GET /api/customers/{id}. A customer that exists but is not
// visible to the caller renders the same 404 as one that does not exist.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := middleware.IdentityFromContext(ctx)
	id := chi.URLParam(r, "id")

	customer, ok := h.service.GetCustomerByID(ctx, rc, id)
	if !ok {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrCustomerNotFound))
		return
	}
	render.JSON(w, r, customer)
}

// Orders handles GET /api/customers/{id}/orders. An invisible customer
// yields an empty list, the same as a customer with no orders.
func (h *CustomerHandler) Orders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := middleware.IdentityFromContext(ctx)
	id := chi.URLParam(r, "id")

	orders := h.service.GetOrdersByCustomerID(ctx, rc, id)
	render.JSON(w, r, orders)
}
