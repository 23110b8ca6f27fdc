package jwtware_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	auth "github.com/goliatone/go-tenant-auth"
	"github.com/goliatone/go-tenant-auth/middleware/jwtware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var tokens = auth.NewTokenService([]byte("access"), []byte("refresh"),
	auth.WithTokenLogger(auth.NoopLogger{}),
)

func companyToken(t *testing.T, companyID uuid.UUID, status auth.CompanyStatus) string {
	t.Helper()
	token, err := tokens.IssueAccess(auth.AccessClaims{
		UserID:        uuid.NewString(),
		Email:         "asha@acme.test",
		UserType:      auth.UserTypeCompanyUser,
		Role:          "admin",
		CompanyID:     companyID.String(),
		CompanyStatus: status,
	})
	require.NoError(t, err)
	return token
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := tokens.IssueAccess(auth.AccessClaims{
		UserID:   uuid.NewString(),
		Email:    "root@platform.test",
		UserType: auth.UserTypePlatformAdmin,
		Role:     "super_admin",
	})
	require.NoError(t, err)
	return token
}

func echoScope(gates jwtware.Gates) router.HandlerFunc {
	return func(ctx router.Context) error {
		companyID, _ := gates.CompanyID(ctx)
		ctxCompany, _ := auth.CompanyFromContext(ctx.Context())
		body := map[string]any{
			"companyId":  companyID.String(),
			"ctxCompany": ctxCompany.String(),
		}
		if claims, ok := gates.Claims(ctx); ok {
			ctxClaims, found := auth.ClaimsFromContext(ctx.Context())
			body["userType"] = claims.UserType
			body["ctxUser"] = found && ctxClaims.UserID == claims.UserID
		}
		return ctx.JSON(http.StatusOK, body)
	}
}

// newApp mounts authenticate followed by mw in front of echoScope
func newApp(cfg jwtware.Config, mw ...router.MiddlewareFunc) *fiber.App {
	if cfg.TokenVerifier == nil {
		cfg.TokenVerifier = tokens
	}
	srv := router.NewFiberAdapter(func(*fiber.App) *fiber.App {
		return fiber.New(fiber.Config{DisableStartupMessage: true})
	})
	chain := append([]router.MiddlewareFunc{jwtware.New(cfg)}, mw...)
	srv.Router().Get("/", echoScope(cfg.Gates()), chain...)
	return srv.WrappedRouter()
}

func do(t *testing.T, app *fiber.App, target, header string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if header != "" {
		req.Header.Set(router.HeaderAuthorization, header)
	}
	res, err := app.Test(req)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	body := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return res.StatusCode, body
}

func TestAuthenticate(t *testing.T) {
	app := newApp(jwtware.Config{})
	companyID := uuid.New()

	tests := []struct {
		name   string
		header string
		status int
		msg    string
	}{
		{"missing header", "", 401, jwtware.ErrNoToken.Message},
		{"wrong scheme", "Basic abc", 401, jwtware.ErrNoToken.Message},
		{"lowercase scheme", "bearer abc.def.ghi", 401, jwtware.ErrNoToken.Message},
		{"extra parts", "Bearer abc def", 401, jwtware.ErrNoToken.Message},
		{"empty bearer", "Bearer ", 401, jwtware.ErrNoToken.Message},
		{"garbage token", "Bearer abc.def.ghi", 401, jwtware.ErrInvalidToken.Message},
		{"valid", "Bearer " + companyToken(t, companyID, auth.CompanyStatusApproved), 200, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, "/", tt.header)
			assert.Equal(t, tt.status, status)
			if tt.msg != "" {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tt.msg, body["error"])
			}
		})
	}
}

func TestAuthenticate_RejectsRefreshToken(t *testing.T) {
	refresh, err := tokens.IssueRefresh(auth.RefreshClaims{
		UserID:   uuid.NewString(),
		UserType: auth.UserTypeCompanyUser,
	})
	require.NoError(t, err)

	status, body := do(t, newApp(jwtware.Config{}), "/", "Bearer "+refresh)
	assert.Equal(t, 401, status)
	assert.Equal(t, jwtware.ErrInvalidToken.Message, body["error"])
}

func TestAuthenticate_AttachesScope(t *testing.T) {
	companyID := uuid.New()

	status, body := do(t, newApp(jwtware.Config{}), "/", "Bearer "+companyToken(t, companyID, auth.CompanyStatusPending))
	require.Equal(t, 200, status)
	assert.Equal(t, string(auth.UserTypeCompanyUser), body["userType"])
	assert.Equal(t, companyID.String(), body["companyId"])
	assert.Equal(t, companyID.String(), body["ctxCompany"])
	assert.Equal(t, true, body["ctxUser"])

	status, body = do(t, newApp(jwtware.Config{}), "/", "Bearer "+adminToken(t))
	require.Equal(t, 200, status)
	assert.Equal(t, uuid.Nil.String(), body["companyId"])
	assert.Equal(t, uuid.Nil.String(), body["ctxCompany"])
}

func TestAuthenticate_CustomKeys(t *testing.T) {
	cfg := jwtware.Config{ContextKey: "session", CompanyKey: "tenant"}
	gates := cfg.Gates()
	companyID := uuid.New()

	app := newApp(cfg, gates.RequireCompanyUser(), gates.RequireApprovedCompany())
	status, body := do(t, app, "/", "Bearer "+companyToken(t, companyID, auth.CompanyStatusApproved))
	require.Equal(t, 200, status, body)
	assert.Equal(t, companyID.String(), body["companyId"])

	status, body = do(t, app, "/", "Bearer "+companyToken(t, companyID, auth.CompanyStatusPending))
	assert.Equal(t, 403, status)
	assert.Equal(t, jwtware.ErrCompanyApprovalRequired.Message, body["error"])
}

func TestAuthenticate_ValidationListener(t *testing.T) {
	var seen string
	app := newApp(jwtware.Config{
		ValidationListeners: []jwtware.ValidationListener{
			func(_ router.Context, claims *auth.AccessClaims) error {
				seen = claims.Email
				if claims.IsPlatformAdmin() {
					return jwtware.ErrCompanyUserRequired
				}
				return nil
			},
		},
	})

	status, _ := do(t, app, "/", "Bearer "+companyToken(t, uuid.New(), auth.CompanyStatusApproved))
	assert.Equal(t, 200, status)
	assert.Equal(t, "asha@acme.test", seen)

	status, body := do(t, app, "/", "Bearer "+adminToken(t))
	assert.Equal(t, 403, status)
	assert.Equal(t, jwtware.ErrCompanyUserRequired.Message, body["error"])
}

func TestAuthenticate_TokenLookup(t *testing.T) {
	token := adminToken(t)
	app := newApp(jwtware.Config{TokenLookup: "header:Authorization,query:token,cookie:jwt"})

	status, _ := do(t, app, "/?token="+token, "")
	assert.Equal(t, 200, status)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Cookie", "jwt="+token)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, res.StatusCode)

	assert.Len(t, jwtware.GetExtractors("header:Authorization, bogus, query:token, param:token"), 3)
}

func TestAuthenticate_Filter(t *testing.T) {
	app := newApp(jwtware.Config{
		Filter: func(ctx router.Context) bool { return ctx.Query("skip", "") == "1" },
	})

	status, body := do(t, app, "/?skip=1", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, uuid.Nil.String(), body["companyId"])
}

func TestNew_PanicsWithoutVerifier(t *testing.T) {
	assert.Panics(t, func() { jwtware.New() })
}

func TestGates(t *testing.T) {
	companyID := uuid.New()
	approved := &auth.AccessClaims{
		UserID:        uuid.NewString(),
		UserType:      auth.UserTypeCompanyUser,
		Role:          "admin",
		CompanyID:     companyID.String(),
		CompanyStatus: auth.CompanyStatusApproved,
	}
	pending := &auth.AccessClaims{
		UserID:        uuid.NewString(),
		UserType:      auth.UserTypeCompanyUser,
		Role:          "admin",
		CompanyID:     companyID.String(),
		CompanyStatus: auth.CompanyStatusPending,
	}
	admin := &auth.AccessClaims{
		UserID:   uuid.NewString(),
		UserType: auth.UserTypePlatformAdmin,
		Role:     "super_admin",
	}

	tests := []struct {
		name   string
		gate   router.MiddlewareFunc
		claims *auth.AccessClaims
		status int
		msg    string
	}{
		{"admin gate passes admin", jwtware.RequirePlatformAdmin(), admin, 0, ""},
		{"admin gate rejects tenant", jwtware.RequirePlatformAdmin(), approved, 403, jwtware.ErrPlatformAdminRequired.Message},
		{"admin gate rejects anonymous", jwtware.RequirePlatformAdmin(), nil, 403, jwtware.ErrPlatformAdminRequired.Message},
		{"tenant gate passes tenant", jwtware.RequireCompanyUser(), pending, 0, ""},
		{"tenant gate rejects admin", jwtware.RequireCompanyUser(), admin, 403, jwtware.ErrCompanyUserRequired.Message},
		{"approval gate passes approved", jwtware.RequireApprovedCompany(), approved, 0, ""},
		{"approval gate rejects pending", jwtware.RequireApprovedCompany(), pending, 403, jwtware.ErrCompanyApprovalRequired.Message},
		{"approval gate rejects admin", jwtware.RequireApprovedCompany(), admin, 403, jwtware.ErrCompanyApprovalRequired.Message},
		{"role gate passes", jwtware.RequireRole("admin", "owner"), approved, 0, ""},
		{"role gate rejects", jwtware.RequireRole("owner"), approved, 403, "This action requires one of these roles: owner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := router.NewMockContext()
			if tt.claims != nil {
				ctx.LocalsMock[jwtware.DefaultContextKey] = tt.claims
			}

			var payload map[string]any
			if tt.status != 0 {
				ctx.On("JSON", tt.status, mock.Anything).Run(func(args mock.Arguments) {
					payload = args.Get(1).(map[string]any)
				}).Return(nil).Once()
			}

			reached := false
			handler := tt.gate(func(router.Context) error {
				reached = true
				return nil
			})

			require.NoError(t, handler(ctx))
			if tt.status == 0 {
				assert.True(t, reached)
				return
			}
			assert.False(t, reached)
			assert.Equal(t, false, payload["success"])
			assert.Equal(t, tt.msg, payload["error"])
			ctx.AssertExpectations(t)
		})
	}
}

func TestScopeToCompany(t *testing.T) {
	companyID := uuid.New()

	ctx := router.NewMockContext()
	ctx.LocalsMock[jwtware.DefaultContextKey] = &auth.AccessClaims{
		UserID:    uuid.NewString(),
		UserType:  auth.UserTypeCompanyUser,
		CompanyID: companyID.String(),
	}
	ctx.On("Locals", jwtware.DefaultCompanyKey, companyID).Return(nil).Maybe()
	ctx.On("Context").Return(context.Background()).Maybe()
	ctx.On("SetContext", mock.Anything).Return().Maybe()

	reached := false
	err := jwtware.ScopeToCompany()(func(router.Context) error {
		reached = true
		return nil
	})(ctx)
	require.NoError(t, err)
	assert.True(t, reached)

	anonymous := router.NewMockContext()
	reached = false
	err = jwtware.ScopeToCompany()(func(c router.Context) error {
		reached = true
		_, ok := jwtware.CompanyID(c)
		assert.False(t, ok)
		return nil
	})(anonymous)
	require.NoError(t, err)
	assert.True(t, reached)
}
