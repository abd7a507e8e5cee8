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

// OrderHandler serves visibility-scoped order reads.
type OrderHandler struct {
	service services.PortalService
	logger  *slog.Logger
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(service services.PortalService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "order")),
	}
}

// Routes returns the chi router for order endpoints.
func (h *OrderHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	return r
}

// List handles GET /api/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := middleware.IdentityFromContext(ctx)

	orders := h.service.GetVisibleOrders(ctx, rc)
	render.JSON(w, r, orders)
}

// Get handles GET /api/orders/{id} with the absent-on-hidden contract.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := middleware.IdentityFromContext(ctx)
	id := chi.URLParam(r, "id")

	order, ok := h.service.GetOrderByID(ctx, rc, id)
	if !ok {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrOrderNotFound))
		return
	}
	render.JSON(w, r, order)
}
