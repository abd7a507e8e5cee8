package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "rslportal/internal/errors"
	"rslportal/internal/exporter"
	"rslportal/internal/middleware"
	"rslportal/internal/reports"
	"rslportal/internal/services"
)

// ReportHandler serves the aggregation layer's rollups and the XLSX
// order report.
type ReportHandler struct {
	service services.PortalService
	logger  *slog.Logger
}

// NewReportHandler creates a report handler.
func NewReportHandler(service services.PortalService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "report")),
	}
}

// Routes returns the chi router for report endpoints.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/customer-orders", h.CustomerOrders)
	r.Get("/order-details", h.OrderDetails)
	r.Get("/today", h.Today)
	r.Get("/orders.xlsx", h.OrdersWorkbook)
	return r
}

// customerOrdersRow augments the rollup with a relative-date rendering
// of the customer's creation for display.
type customerOrdersRow struct {
	reports.CustomerRollup
	CreatedAgo string `json:"created_ago"`
}

// CustomerOrders handles GET /api/reports/customer-orders.
func (h *ReportHandler) CustomerOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := middleware.IdentityFromContext(ctx)

	rollups := h.service.GetCustomerOrders(ctx, rc)
	rows := make([]customerOrdersRow, len(rollups))
	for i, roll := range rollups {
		rows[i] = customerOrdersRow{
			CustomerRollup: roll,
			CreatedAgo:     reports.RelativeDate(roll.CreatedAt, rc.ReferenceDate),
		}
	}
	render.JSON(w, r, rows)
}

// orderDetailsRow augments the denormalized order with a relative date.
type orderDetailsRow struct {
	reports.OrderWithCustomer
	PlacedAgo string `json:"placed_ago"`
}

// OrderDetails handles GET /api/reports/order-details.
func (h *ReportHandler) OrderDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := middleware.IdentityFromContext(ctx)

	orders := h.service.GetOrdersWithCustomerDetails(ctx, rc)
	rows := make([]orderDetailsRow, len(orders))
	for i, o := range orders {
		rows[i] = orderDetailsRow{
			OrderWithCustomer: o,
			PlacedAgo:         reports.RelativeDate(o.Date, rc.ReferenceDate),
		}
	}
	render.JSON(w, r, rows)
}

// Today handles GET /api/reports/today: orders dated on the caller's
// reference calendar day.
func (h *ReportHandler) Today(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := middleware.IdentityFromContext(ctx)

	render.JSON(w, r, h.service.GetTodayOrders(ctx, rc))
}

// OrdersWorkbook handles GET /api/reports/orders.xlsx, streaming the
// visible orders with customer details as a spreadsheet.
func (h *ReportHandler) OrdersWorkbook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := middleware.IdentityFromContext(ctx)

	rows := h.service.GetOrdersWithCustomerDetails(ctx, rc)
	wb, err := exporter.OrdersWorkbook(rows)
	if err != nil {
		h.logger.ErrorContext(ctx, "order workbook build failed",
			slog.String("error", err.Error()),
		)
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
		return
	}
	defer wb.Close()

	filename := fmt.Sprintf("orders-%s.xlsx", rc.ReferenceDate.Format(time.DateOnly))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	if err := wb.Write(w); err != nil {
		h.logger.ErrorContext(ctx, "order workbook write failed",
			slog.String("error", err.Error()),
		)
	}
}
