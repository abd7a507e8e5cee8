package middleware

import (
	"context"
	"net/http"
	"time"

	"rslportal/pkg/contracts/domain"
)

// Header names the auth collaborator sets on each request. Authentication
// itself happens upstream; this middleware only adapts its output into a
// RequestContext.
const (
	HeaderRole          = "X-Role"
	HeaderResellerID    = "X-Reseller-ID"
	HeaderReferenceDate = "X-Reference-Date"
)

type identityKey struct{}

// Identity extracts the acting principal from request headers into a
// domain.RequestContext stored on the request context. A missing or
// unknown role defaults to guest rather than failing: guests simply see
// nothing the visibility engine does not grant them. The reference date
// header (RFC 3339) exists so reporting clients and tests can pin
// time-relative output; absent, it is the wall clock.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, err := domain.ParseRole(r.Header.Get(HeaderRole))
		if err != nil {
			role = domain.RoleGuest
		}

		ref := time.Now()
		if raw := r.Header.Get(HeaderReferenceDate); raw != "" {
			if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
				ref = parsed
			}
		}

		rc := domain.NewRequestContext(role, r.Header.Get(HeaderResellerID), ref)
		ctx := context.WithValue(r.Context(), identityKey{}, rc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext returns the RequestContext placed by Identity.
// Handlers running outside the middleware chain get a guest context.
func IdentityFromContext(ctx context.Context) domain.RequestContext {
	if rc, ok := ctx.Value(identityKey{}).(domain.RequestContext); ok {
		return rc
	}
	return domain.NewRequestContext(domain.RoleGuest, "", time.Time{})
}
