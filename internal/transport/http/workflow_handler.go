package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "rslportal/internal/errors"
	"rslportal/internal/middleware"
	"rslportal/internal/services"
	"rslportal/internal/workflow"
)

// WorkflowHandler drives the order-creation wizard over HTTP. Each
// wizard instance is identified by the id returned from Start; clients
// keep the id and thread it through advance/back/submit.
type WorkflowHandler struct {
	service services.WorkflowService
	logger  *slog.Logger
}

// NewWorkflowHandler creates a workflow handler.
func NewWorkflowHandler(service services.WorkflowService, logger *slog.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "workflow")),
	}
}

// Routes returns the chi router for workflow endpoints.
func (h *WorkflowHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Start)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/advance", h.Advance)
	r.Post("/{id}/back", h.Back)
	r.Post("/{id}/submit", h.Submit)
	return r
}

// Start handles POST /api/workflow: a fresh wizard at the product step.
func (h *WorkflowHandler) Start(w http.ResponseWriter, r *http.Request) {
	wizard := h.service.Start(r.Context())
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, wizard)
}

// Get handles GET /api/workflow/{id}.
func (h *WorkflowHandler) Get(w http.ResponseWriter, r *http.Request) {
	wizard, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrWorkflowNotFound))
		return
	}
	render.JSON(w, r, wizard)
}

// AdvanceRequest wraps the event for the wizard's current step.
type AdvanceRequest struct {
	workflow.Event
}

// Bind implements the render.Binder interface. Step-specific validation
// belongs to the workflow machine; the payload only has to be JSON.
func (a *AdvanceRequest) Bind(r *http.Request) error {
	return nil
}

// AdvanceResponse returns the wizard after an advance attempt. On a
// guard rejection the wizard is unchanged and the rejection describes
// the failing fields.
type AdvanceResponse struct {
	Wizard    *workflow.Wizard    `json:"wizard"`
	Rejection *workflow.Rejection `json:"rejection,omitempty"`
}

// Advance handles POST /api/workflow/{id}/advance.
func (h *WorkflowHandler) Advance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req AdvanceRequest
	if err := render.Bind(r, &req); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}

	wizard, err := h.service.Advance(ctx, id, req.Event)
	if err != nil {
		var rej *workflow.Rejection
		if errors.As(err, &rej) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, AdvanceResponse{Wizard: wizard, Rejection: rej})
			return
		}
		if errors.Is(err, services.ErrWorkflowNotFound) {
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrWorkflowNotFound))
			return
		}
		h.logger.ErrorContext(ctx, "workflow advance failed",
			slog.String("workflow_id", id),
			slog.String("error", err.Error()),
		)
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
		return
	}
	render.JSON(w, r, AdvanceResponse{Wizard: wizard})
}

// Back handles POST /api/workflow/{id}/back.
func (h *WorkflowHandler) Back(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	wizard, err := h.service.Back(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrWorkflowNotFound) {
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrWorkflowNotFound))
			return
		}
		if errors.Is(err, workflow.ErrAtFirstStep) {
			render.Render(w, r, apierrors.NewErrorResponse(
				apierrors.ErrValidation("step", "already at the first step")))
			return
		}
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
		return
	}
	render.JSON(w, r, AdvanceResponse{Wizard: wizard})
}

// Submit handles POST /api/workflow/{id}/submit, the terminal action.
func (h *WorkflowHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := middleware.IdentityFromContext(ctx)
	id := chi.URLParam(r, "id")

	committed, err := h.service.Submit(ctx, id, rc)
	if err != nil {
		if errors.Is(err, services.ErrWorkflowNotFound) {
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrWorkflowNotFound))
			return
		}
		if errors.Is(err, workflow.ErrNotSubmittable) {
			render.Render(w, r, apierrors.NewErrorResponse(
				apierrors.ErrValidation("step", "submit is only valid from the licenses step")))
			return
		}
		h.logger.ErrorContext(ctx, "workflow submit failed",
			slog.String("workflow_id", id),
			slog.String("error", err.Error()),
		)
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, committed)
}
