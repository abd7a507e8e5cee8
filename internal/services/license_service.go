package services

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"rslportal/internal/license"
	"rslportal/pkg/contracts/domain"
)

// LicenseService exposes serial validation and ad hoc key generation to
// the transport layer, outside the workflow.
type LicenseService interface {
	ValidateSerial(ctx context.Context, serial string) bool
	GenerateKey(ctx context.Context, kind domain.LicenseType, serial string) string
}

type licenseService struct {
	issuer *license.Issuer
	logger *slog.Logger
}

// NewLicenseService creates the license facade.
func NewLicenseService(issuer *license.Issuer, logger *slog.Logger) LicenseService {
	return &licenseService{
		issuer: issuer,
		logger: logger.With(slog.String("service", "license")),
	}
}

func (s *licenseService) ValidateSerial(ctx context.Context, serial string) bool {
	valid := license.ValidateSerial(serial)
	if !valid {
		s.logger.DebugContext(ctx, "serial number rejected",
			slog.String("serial", serial),
		)
	}
	return valid
}

func (s *licenseService) GenerateKey(ctx context.Context, kind domain.LicenseType, serial string) string {
	tracer := otel.Tracer("license-service")
	ctx, span := tracer.Start(ctx, "license_service.generate_key")
	defer span.End()
	span.SetAttributes(attribute.String("license.kind", string(kind)))

	key := s.issuer.GenerateKey(kind, serial)
	s.logger.InfoContext(ctx, "license key generated",
		slog.String("kind", string(kind)),
		slog.String("serial", serial),
	)
	return key
}
