package jwtware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-router"
	auth "github.com/goliatone/go-tenant-auth"
	"github.com/google/uuid"
)

const (
	DefaultContextKey = "user"
	DefaultCompanyKey = "companyId"
)

var (
	defaultTokenLookup       = "header:" + router.HeaderAuthorization
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
)

// TokenVerifier verifies access tokens. *auth.TokenService implements it.
type TokenVerifier interface {
	VerifyAccess(token string) *auth.AccessClaims
}

// ValidationListener is invoked after a token has been validated and
// before the claims are attached to the request.
type ValidationListener func(ctx router.Context, claims *auth.AccessClaims) error

type Config struct {
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler
	// ContextKey is the Locals key holding *auth.AccessClaims
	ContextKey string
	// CompanyKey is the Locals key holding the tenant uuid.UUID
	CompanyKey  string
	TokenLookup string
	AuthScheme  string
	// TokenVerifier is required
	TokenVerifier TokenVerifier

	// ContextEnricher propagates claims to the standard context returned
	// by ctx.Context(). Defaults to auth.WithClaimsContext.
	ContextEnricher func(c context.Context, claims *auth.AccessClaims) context.Context

	ValidationListeners []ValidationListener
}

// New returns the authenticate gate: extract the bearer token, verify it
// as an access token and attach the claims.
func New(config ...Config) router.MiddlewareFunc {
	cfg := GetDefaultConfig(config...)
	extractors := cfg.getExtractors()

	return func(next router.HandlerFunc) router.HandlerFunc {
		success := cfg.SuccessHandler
		if success == nil {
			success = next
		}

		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return next(ctx)
			}

			raw, err := ExtractRawTokenFromContext(ctx, extractors)
			if err != nil || raw == "" {
				return cfg.ErrorHandler(ctx, ErrNoToken)
			}

			claims := cfg.TokenVerifier.VerifyAccess(raw)
			if claims == nil {
				return cfg.ErrorHandler(ctx, ErrInvalidToken)
			}

			if err := cfg.runValidationListeners(ctx, claims); err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, claims)
			companyID, scoped := companyFromClaims(claims)
			if scoped {
				ctx.Locals(cfg.CompanyKey, companyID)
			}

			if cfg.ContextEnricher != nil {
				stdCtx := cfg.ContextEnricher(ctx.Context(), claims)
				if scoped {
					stdCtx = auth.WithCompanyContext(stdCtx, companyID)
				}
				ctx.SetContext(stdCtx)
			}

			return success(ctx)
		}
	}
}

// Authenticate is New with only a verifier
func Authenticate(verifier TokenVerifier) router.MiddlewareFunc {
	return New(Config{TokenVerifier: verifier})
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = ErrorHandler
	}

	if cfg.TokenVerifier == nil {
		panic("AUTH: JWT middleware configuration: TokenVerifier is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.CompanyKey == "" {
		cfg.CompanyKey = DefaultCompanyKey
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.ContextEnricher == nil {
		cfg.ContextEnricher = auth.WithClaimsContext
	}

	return cfg
}

// Gates returns the authorization gates reading the keys this config
// writes.
func (cfg Config) Gates() Gates {
	cfg = GetDefaultConfig(cfg)
	return Gates{
		ContextKey:   cfg.ContextKey,
		CompanyKey:   cfg.CompanyKey,
		ErrorHandler: cfg.ErrorHandler,
	}
}

// ErrorHandler writes {success:false, error} with the status carried by err
func ErrorHandler(ctx router.Context, err error) error {
	return ctx.JSON(auth.HTTPStatus(err), map[string]any{
		"success":   false,
		"error":     errorMessage(err),
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func errorMessage(err error) string {
	if msg := auth.ErrorMessage(err); msg != "" {
		return msg
	}
	if auth.HTTPStatus(err) >= http.StatusInternalServerError {
		return http.StatusText(http.StatusInternalServerError)
	}
	return err.Error()
}

func ExtractRawTokenFromContext(ctx router.Context, extractors []JWTExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(ctx)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func (cfg *Config) getExtractors() []JWTExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func (cfg *Config) runValidationListeners(ctx router.Context, claims *auth.AccessClaims) error {
	for _, listener := range cfg.ValidationListeners {
		if listener == nil {
			continue
		}
		if err := listener(ctx, claims); err != nil {
			return err
		}
	}
	return nil
}

// GetExtractors parses a lookup such as "header:Authorization,cookie:jwt"
func GetExtractors(tokenLookup string, authSchemes ...string) []JWTExtractor {
	extractors := make([]JWTExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 && authSchemes[0] != "" {
		authScheme = authSchemes[0]
	}

	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, jwtFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, jwtFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, jwtFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, jwtFromCookie(parts[1]))
		}
	}

	return extractors
}

type JWTExtractor func(ctx router.Context) (string, error)

// jwtFromHeader accepts exactly "<scheme> <token>"; anything else counts
// as a missing token.
func jwtFromHeader(header string, authScheme string) JWTExtractor {
	return func(ctx router.Context) (string, error) {
		value := ctx.Header(header)
		if authScheme == "Bearer" {
			if token, ok := auth.ExtractBearer(value); ok {
				return token, nil
			}
			return "", ErrJWTMissingOrMalformed
		}

		parts := strings.Split(value, " ")
		if len(parts) == 2 && parts[0] == authScheme && parts[1] != "" {
			return parts[1], nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

func jwtFromQuery(param string) JWTExtractor {
	return func(ctx router.Context) (string, error) {
		token := ctx.Query(param, "")
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

func jwtFromParam(param string) JWTExtractor {
	return func(ctx router.Context) (string, error) {
		token := ctx.Param(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

func jwtFromCookie(name string) JWTExtractor {
	return func(ctx router.Context) (string, error) {
		token := ctx.Cookies(name)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

func companyFromClaims(claims *auth.AccessClaims) (uuid.UUID, bool) {
	if !claims.IsCompanyUser() || claims.CompanyID == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.CompanyID)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
