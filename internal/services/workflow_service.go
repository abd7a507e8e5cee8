package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"rslportal/internal/infrastructure"
	"rslportal/internal/workflow"
	"rslportal/pkg/contracts/domain"
)

// ErrWorkflowNotFound is returned for an unknown wizard id.
var ErrWorkflowNotFound = errors.New("workflow not found")

// WorkflowService drives order-creation wizards for the transport layer.
// Each wizard is an independent instance; two browser tabs get two
// wizards that share nothing.
type WorkflowService interface {
	Start(ctx context.Context) *workflow.Wizard
	Get(ctx context.Context, id string) (*workflow.Wizard, error)
	Advance(ctx context.Context, id string, ev workflow.Event) (*workflow.Wizard, error)
	Back(ctx context.Context, id string) (*workflow.Wizard, error)
	Submit(ctx context.Context, id string, rc domain.RequestContext) (*workflow.CommittedOrder, error)
}

type workflowService struct {
	machine *workflow.Machine
	wizards *workflow.MemoryStore
	metrics *infrastructure.PortalMetrics
	logger  *slog.Logger
}

// NewWorkflowService creates the workflow facade. Metrics may be nil in
// tests.
func NewWorkflowService(machine *workflow.Machine, wizards *workflow.MemoryStore, metrics *infrastructure.PortalMetrics, logger *slog.Logger) WorkflowService {
	return &workflowService{
		machine: machine,
		wizards: wizards,
		metrics: metrics,
		logger:  logger.With(slog.String("service", "workflow")),
	}
}

func (s *workflowService) Start(ctx context.Context) *workflow.Wizard {
	id := uuid.New().String()
	w := s.wizards.Create(id, time.Now())
	s.logger.InfoContext(ctx, "workflow started",
		slog.String("workflow_id", id),
	)
	return w
}

func (s *workflowService) Get(ctx context.Context, id string) (*workflow.Wizard, error) {
	w, ok := s.wizards.Snapshot(id)
	if !ok {
		return nil, ErrWorkflowNotFound
	}
	return w, nil
}

func (s *workflowService) Advance(ctx context.Context, id string, ev workflow.Event) (*workflow.Wizard, error) {
	tracer := otel.Tracer("workflow-service")
	ctx, span := tracer.Start(ctx, "workflow_service.advance")
	defer span.End()
	span.SetAttributes(attribute.String("workflow.id", id))

	var snapshot *workflow.Wizard
	err := s.wizards.Do(id, func(w *workflow.Wizard) error {
		from := w.Step
		err := s.machine.Advance(w, ev)
		snapshot = w.Clone()
		if err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "workflow advanced",
			slog.String("workflow_id", id),
			slog.String("from", string(from)),
			slog.String("to", string(w.Step)),
		)
		return nil
	})
	if err != nil {
		var rej *workflow.Rejection
		if errors.As(err, &rej) {
			if s.metrics != nil {
				s.metrics.WorkflowRejections.Add(ctx, 1,
					metric.WithAttributes(attribute.String("step", string(rej.Step))))
			}
			span.SetAttributes(attribute.Bool("workflow.rejected", true))
			s.logger.WarnContext(ctx, "workflow step rejected",
				slog.String("workflow_id", id),
				slog.String("step", string(rej.Step)),
				slog.Int("failing_fields", len(rej.Fields)),
			)
			// The wizard stayed in place; hand its state back with the
			// rejection so the caller can flag the failing fields.
			return snapshot, err
		}
		if snapshot == nil {
			return nil, ErrWorkflowNotFound
		}
		return snapshot, err
	}
	if s.metrics != nil {
		s.metrics.WorkflowAdvances.Add(ctx, 1,
			metric.WithAttributes(attribute.String("step", string(snapshot.Step))))
	}
	return snapshot, nil
}

func (s *workflowService) Back(ctx context.Context, id string) (*workflow.Wizard, error) {
	var snapshot *workflow.Wizard
	err := s.wizards.Do(id, func(w *workflow.Wizard) error {
		err := s.machine.Back(w)
		snapshot = w.Clone()
		return err
	})
	if err != nil {
		if snapshot == nil {
			return nil, ErrWorkflowNotFound
		}
		return snapshot, err
	}
	return snapshot, nil
}

func (s *workflowService) Submit(ctx context.Context, id string, rc domain.RequestContext) (*workflow.CommittedOrder, error) {
	tracer := otel.Tracer("workflow-service")
	ctx, span := tracer.Start(ctx, "workflow_service.submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("workflow.id", id),
		attribute.String("request.role", string(rc.Role)),
	)

	if _, ok := s.wizards.Snapshot(id); !ok {
		return nil, ErrWorkflowNotFound
	}

	var committed *workflow.CommittedOrder
	err := s.wizards.Do(id, func(w *workflow.Wizard) error {
		var err error
		committed, err = s.machine.Submit(w, rc)
		return err
	})
	if err != nil {
		return nil, err
	}

	// The wizard is terminal after submit.
	s.wizards.Delete(id)

	if s.metrics != nil {
		s.metrics.OrdersCommitted.Add(ctx, 1)
		s.metrics.LicenseKeysIssued.Add(ctx, int64(len(committed.Licenses)))
	}
	s.logger.InfoContext(ctx, "order committed",
		slog.String("workflow_id", id),
		slog.String("order_id", committed.Order.ID),
		slog.String("customer_id", committed.Order.CustomerID),
		slog.Float64("total", committed.Order.TotalValue),
		slog.Int("stations", committed.Order.Stations),
		slog.Int("licenses", len(committed.Licenses)),
	)
	return committed, nil
}
