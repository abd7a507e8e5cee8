package services

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"rslportal/internal/reports"
	"rslportal/internal/visibility"
	"rslportal/pkg/contracts/domain"
)

// PortalService is the read path: visibility-scoped lookups and the
// aggregation layer's rollups. Every method takes the caller's request
// context; nothing here consults ambient role or date state.
type PortalService interface {
	GetCustomerByID(ctx context.Context, rc domain.RequestContext, id string) (domain.Customer, bool)
	GetOrderByID(ctx context.Context, rc domain.RequestContext, id string) (domain.Order, bool)
	GetOrdersByCustomerID(ctx context.Context, rc domain.RequestContext, customerID string) []domain.Order
	GetVisibleCustomers(ctx context.Context, rc domain.RequestContext) []domain.Customer
	GetVisibleOrders(ctx context.Context, rc domain.RequestContext) []domain.Order
	GetCustomerOrders(ctx context.Context, rc domain.RequestContext) []reports.CustomerRollup
	GetOrdersWithCustomerDetails(ctx context.Context, rc domain.RequestContext) []reports.OrderWithCustomer
	GetTodayOrders(ctx context.Context, rc domain.RequestContext) []domain.Order
}

type portalService struct {
	engine  *visibility.Engine
	reports *reports.Service
	logger  *slog.Logger
}

// NewPortalService creates the read-path service.
func NewPortalService(engine *visibility.Engine, rep *reports.Service, logger *slog.Logger) PortalService {
	return &portalService{
		engine:  engine,
		reports: rep,
		logger:  logger.With(slog.String("service", "portal")),
	}
}

// GetCustomerByID resolves a customer under the caller's scope. A record
// that exists but is hidden returns false exactly like a record that does
// not exist; callers cannot tell the two apart.
func (s *portalService) GetCustomerByID(ctx context.Context, rc domain.RequestContext, id string) (domain.Customer, bool) {
	tracer := otel.Tracer("portal-service")
	ctx, span := tracer.Start(ctx, "portal_service.get_customer_by_id")
	defer span.End()
	span.SetAttributes(
		attribute.String("customer.id", id),
		attribute.String("request.role", string(rc.Role)),
	)

	lookup := s.engine.LookupCustomer(rc, id)
	if lookup.Outcome != visibility.Found {
		s.logger.DebugContext(ctx, "customer lookup returned absent",
			slog.String("customer_id", id),
			slog.String("role", string(rc.Role)),
		)
		return domain.Customer{}, false
	}
	return lookup.Customer, true
}

// GetOrderByID resolves an order under the caller's scope with the same
// absent-on-hidden contract as GetCustomerByID.
func (s *portalService) GetOrderByID(ctx context.Context, rc domain.RequestContext, id string) (domain.Order, bool) {
	tracer := otel.Tracer("portal-service")
	ctx, span := tracer.Start(ctx, "portal_service.get_order_by_id")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", id),
		attribute.String("request.role", string(rc.Role)),
	)

	lookup := s.engine.LookupOrder(rc, id)
	if lookup.Outcome != visibility.Found {
		s.logger.DebugContext(ctx, "order lookup returned absent",
			slog.String("order_id", id),
			slog.String("role", string(rc.Role)),
		)
		return domain.Order{}, false
	}
	return lookup.Order, true
}

func (s *portalService) GetOrdersByCustomerID(ctx context.Context, rc domain.RequestContext, customerID string) []domain.Order {
	return s.engine.OrdersByCustomer(rc, customerID)
}

func (s *portalService) GetVisibleCustomers(ctx context.Context, rc domain.RequestContext) []domain.Customer {
	tracer := otel.Tracer("portal-service")
	_, span := tracer.Start(ctx, "portal_service.get_visible_customers")
	defer span.End()

	out := s.engine.VisibleCustomers(rc)
	span.SetAttributes(attribute.Int("customers.visible", len(out)))
	return out
}

func (s *portalService) GetVisibleOrders(ctx context.Context, rc domain.RequestContext) []domain.Order {
	tracer := otel.Tracer("portal-service")
	_, span := tracer.Start(ctx, "portal_service.get_visible_orders")
	defer span.End()

	out := s.engine.VisibleOrders(rc)
	span.SetAttributes(attribute.Int("orders.visible", len(out)))
	return out
}

func (s *portalService) GetCustomerOrders(ctx context.Context, rc domain.RequestContext) []reports.CustomerRollup {
	tracer := otel.Tracer("portal-service")
	_, span := tracer.Start(ctx, "portal_service.get_customer_orders")
	defer span.End()

	return s.reports.CustomerOrders(rc)
}

func (s *portalService) GetOrdersWithCustomerDetails(ctx context.Context, rc domain.RequestContext) []reports.OrderWithCustomer {
	tracer := otel.Tracer("portal-service")
	_, span := tracer.Start(ctx, "portal_service.get_orders_with_customer_details")
	defer span.End()

	return s.reports.OrdersWithCustomerDetails(rc)
}

func (s *portalService) GetTodayOrders(ctx context.Context, rc domain.RequestContext) []domain.Order {
	tracer := otel.Tracer("portal-service")
	_, span := tracer.Start(ctx, "portal_service.get_today_orders")
	defer span.End()

	return s.reports.TodayOrders(rc)
}
