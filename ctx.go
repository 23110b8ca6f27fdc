package auth

import (
	"context"

	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

var claimsCtxKey = &contextKey{"claims"}
var companyCtxKey = &contextKey{"company_id"}

type contextKey struct {
	name string
}

// WithClaimsContext sets the verified access claims in the given context
func WithClaimsContext(ctx context.Context, claims *AccessClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// ClaimsFromContext extracts the access claims from the standard context
func ClaimsFromContext(ctx context.Context) (*AccessClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*AccessClaims)
	return raw, ok && raw != nil
}

// WithCompanyContext sets the tenant scope in the given context
func WithCompanyContext(ctx context.Context, companyID uuid.UUID) context.Context {
	return context.WithValue(ctx, companyCtxKey, companyID)
}

// CompanyFromContext returns the tenant scope, if any
func CompanyFromContext(ctx context.Context) (uuid.UUID, bool) {
	raw, ok := ctx.Value(companyCtxKey).(uuid.UUID)
	return raw, ok && raw != uuid.Nil
}

// GetRouterClaims returns the access claims the authenticate gate stored
// under key.
func GetRouterClaims(ctx router.Context, key string) (*AccessClaims, bool) {
	if key == "" {
		key = "user"
	}
	claims, ok := ctx.Locals(key).(*AccessClaims)
	return claims, ok && claims != nil
}

// GetRouterCompany returns the tenant scope stored under key
func GetRouterCompany(ctx router.Context, key string) (uuid.UUID, bool) {
	if key == "" {
		key = "companyId"
	}
	id, ok := ctx.Locals(key).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
