package jwtware

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	auth "github.com/goliatone/go-tenant-auth"
	"github.com/google/uuid"
)

var ErrNoToken = goerrors.New("No token provided. Please include Authorization header with Bearer token.", goerrors.CategoryAuth).
	WithCode(http.StatusUnauthorized).
	WithTextCode("TOKEN_MISSING")

var ErrInvalidToken = goerrors.New("Invalid or expired token. Please log in again.", goerrors.CategoryAuth).
	WithCode(http.StatusUnauthorized).
	WithTextCode(auth.TextCodeTokenInvalid)

var ErrPlatformAdminRequired = forbidden("This action requires platform admin privileges.")
var ErrCompanyUserRequired = forbidden("This action requires company user access.")
var ErrCompanyApprovalRequired = forbidden("Your company must be approved to access this resource. Please wait for admin approval.")

func forbidden(msg string) *goerrors.Error {
	return goerrors.New(msg, goerrors.CategoryAuthz).
		WithCode(http.StatusForbidden).
		WithTextCode("FORBIDDEN")
}

// RoleRequiredError lists the roles a route accepts
func RoleRequiredError(roles ...string) error {
	clone := forbidden("This action requires one of these roles: " + strings.Join(roles, ", "))
	return clone.WithMetadata(map[string]any{"roles": roles})
}

// Gates are the authorization checks that run after authenticate. They
// read claims from ContextKey and write the tenant scope to CompanyKey,
// so they must agree with the authenticate Config; Config.Gates builds
// a matching set.
type Gates struct {
	ContextKey   string
	CompanyKey   string
	ErrorHandler router.ErrorHandler
}

var defaultGates = Gates{
	ContextKey:   DefaultContextKey,
	CompanyKey:   DefaultCompanyKey,
	ErrorHandler: ErrorHandler,
}

// Claims returns the access claims attached by the authenticate gate
func (g Gates) Claims(ctx router.Context) (*auth.AccessClaims, bool) {
	return auth.GetRouterClaims(ctx, g.contextKey())
}

// CompanyID returns the tenant scope attached by authenticate or
// ScopeToCompany.
func (g Gates) CompanyID(ctx router.Context) (uuid.UUID, bool) {
	return auth.GetRouterCompany(ctx, g.companyKey())
}

// RequirePlatformAdmin passes only platform admin tokens
func (g Gates) RequirePlatformAdmin() router.MiddlewareFunc {
	return g.gate(func(claims *auth.AccessClaims) error {
		if !claims.IsPlatformAdmin() {
			return ErrPlatformAdminRequired
		}
		return nil
	}, ErrPlatformAdminRequired)
}

// RequireCompanyUser passes only company user tokens
func (g Gates) RequireCompanyUser() router.MiddlewareFunc {
	return g.gate(func(claims *auth.AccessClaims) error {
		if !claims.IsCompanyUser() {
			return ErrCompanyUserRequired
		}
		return nil
	}, ErrCompanyUserRequired)
}

// RequireApprovedCompany checks the companyStatus claim. The claim is
// fixed at issue time, so a status change applies from the next login
// or refresh.
func (g Gates) RequireApprovedCompany() router.MiddlewareFunc {
	return g.gate(func(claims *auth.AccessClaims) error {
		if claims.CompanyStatus != auth.CompanyStatusApproved {
			return ErrCompanyApprovalRequired
		}
		return nil
	}, ErrCompanyApprovalRequired)
}

// RequireRole passes when the role claim is one of roles
func (g Gates) RequireRole(roles ...string) router.MiddlewareFunc {
	return g.gate(func(claims *auth.AccessClaims) error {
		if !claims.HasRole(roles...) {
			return RoleRequiredError(roles...)
		}
		return nil
	}, RoleRequiredError(roles...))
}

// ScopeToCompany copies the companyId claim of company users onto the
// request. It never rejects.
func (g Gates) ScopeToCompany() router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			claims, ok := g.Claims(ctx)
			if !ok {
				return next(ctx)
			}
			if id, ok := companyFromClaims(claims); ok {
				ctx.Locals(g.companyKey(), id)
				ctx.SetContext(auth.WithCompanyContext(ctx.Context(), id))
			}
			return next(ctx)
		}
	}
}

// gate rejects with missing when no claims are attached, otherwise with
// whatever check returns.
func (g Gates) gate(check func(*auth.AccessClaims) error, missing error) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			claims, ok := g.Claims(ctx)
			if !ok {
				return g.errorHandler()(ctx, missing)
			}
			if err := check(claims); err != nil {
				return g.errorHandler()(ctx, err)
			}
			return next(ctx)
		}
	}
}

func (g Gates) contextKey() string {
	if g.ContextKey == "" {
		return DefaultContextKey
	}
	return g.ContextKey
}

func (g Gates) companyKey() string {
	if g.CompanyKey == "" {
		return DefaultCompanyKey
	}
	return g.CompanyKey
}

func (g Gates) errorHandler() router.ErrorHandler {
	if g.ErrorHandler == nil {
		return ErrorHandler
	}
	return g.ErrorHandler
}

// Claims reads the default context key
func Claims(ctx router.Context) (*auth.AccessClaims, bool) {
	return defaultGates.Claims(ctx)
}

// CompanyID reads the default company key
func CompanyID(ctx router.Context) (uuid.UUID, bool) {
	return defaultGates.CompanyID(ctx)
}

func RequirePlatformAdmin() router.MiddlewareFunc   { return defaultGates.RequirePlatformAdmin() }
func RequireCompanyUser() router.MiddlewareFunc     { return defaultGates.RequireCompanyUser() }
func RequireApprovedCompany() router.MiddlewareFunc { return defaultGates.RequireApprovedCompany() }
func ScopeToCompany() router.MiddlewareFunc         { return defaultGates.ScopeToCompany() }

func RequireRole(roles ...string) router.MiddlewareFunc {
	return defaultGates.RequireRole(roles...)
}
