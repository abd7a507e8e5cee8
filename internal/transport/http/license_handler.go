package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "rslportal/internal/errors"
	"rslportal/internal/services"
	"rslportal/pkg/contracts/domain"
)

// LicenseHandler serves serial validation and license key generation.
type LicenseHandler struct {
	service services.LicenseService
	logger  *slog.Logger
}

// NewLicenseHandler creates a license handler.
func NewLicenseHandler(service services.LicenseService, logger *slog.Logger) *LicenseHandler {
	return &LicenseHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "license")),
	}
}

// Routes returns the chi router for license endpoints.
func (h *LicenseHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/validate-serial", h.ValidateSerial)
	r.Post("/generate", h.Generate)
	return r
}

// ValidateSerialRequest is the serial validation payload.
type ValidateSerialRequest struct {
	SerialNumber string `json:"serial_number"`
}

// Bind implements the render.Binder interface.
func (v *ValidateSerialRequest) Bind(r *http.Request) error {
	if v.SerialNumber == "" {
		return errors.New("serial_number is required")
	}
	return nil
}

// ValidateSerialResponse reports a validation verdict.
type ValidateSerialResponse struct {
	SerialNumber string    `json:"serial_number"`
	Valid        bool      `json:"valid"`
	Timestamp    time.Time `json:"timestamp"`
}

// ValidateSerial handles POST /api/license/validate-serial.
func (h *LicenseHandler) ValidateSerial(w http.ResponseWriter, r *http.Request) {
	var req ValidateSerialRequest
	if err := render.Bind(r, &req); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}

	render.JSON(w, r, ValidateSerialResponse{
		SerialNumber: req.SerialNumber,
		Valid:        h.service.ValidateSerial(r.Context(), req.SerialNumber),
		Timestamp:    time.Now().UTC(),
	})
}

// GenerateKeyRequest is the key generation payload.
type GenerateKeyRequest struct {
	Kind         string `json:"kind"`
	SerialNumber string `json:"serial_number"`
}

// Bind implements the render.Binder interface.
func (g *GenerateKeyRequest) Bind(r *http.Request) error {
	switch domain.LicenseType(g.Kind) {
	case domain.LicenseTypeSoftware, domain.LicenseTypeWarranty:
	default:
		return errors.New("kind must be software or warranty")
	}
	if g.SerialNumber == "" {
		return errors.New("serial_number is required")
	}
	return nil
}

// GenerateKeyResponse carries a freshly minted key.
type GenerateKeyResponse struct {
	Kind         string `json:"kind"`
	SerialNumber string `json:"serial_number"`
	Key          string `json:"key"`
}

// Generate handles POST /api/license/generate. The serial must pass
// validation before a key is minted for it.
func (h *LicenseHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateKeyRequest
	if err := render.Bind(r, &req); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}
	if !h.service.ValidateSerial(r.Context(), req.SerialNumber) {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.ErrValidation("serial_number", "serial number must start with SN- and be at least 5 characters")))
		return
	}

	key := h.service.GenerateKey(r.Context(), domain.LicenseType(req.Kind), req.SerialNumber)
	render.JSON(w, r, GenerateKeyResponse{
		Kind:         req.Kind,
		SerialNumber: req.SerialNumber,
		Key:          key,
	})
}
