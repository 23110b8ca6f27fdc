package server

import (
	"github.com/goliatone/go-router"
	auth "github.com/goliatone/go-tenant-auth"
)

const (
	msgCompanyRegistered = "Company registered successfully. Waiting for admin approval."
	msgLoggedOut         = "Logged out successfully"
)

// AuthController serves the tenant auth routes under /api/auth
type AuthController struct {
	service *auth.AuthService
}

func (a *AuthController) RegisterCompany(ctx router.Context) error {
	var req auth.RegisterCompanyRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	result, err := a.service.RegisterCompany(ctx.Context(), req)
	if err != nil {
		return err
	}

	return created(ctx, result, msgCompanyRegistered)
}

func (a *AuthController) Login(ctx router.Context) error {
	var req auth.LoginRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	session, err := a.service.Login(ctx.Context(), req)
	if err != nil {
		return err
	}

	return ok(ctx, session)
}

func (a *AuthController) Refresh(ctx router.Context) error {
	var req auth.RefreshRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	pair, err := a.service.Refresh(ctx.Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return ok(ctx, pair)
}

// Logout has no server side effect, tokens stay valid until they expire
func (a *AuthController) Logout(ctx router.Context) error {
	return message(ctx, msgLoggedOut)
}

func (a *AuthController) Me(ctx router.Context) error {
	userID, _, err := claimsUserID(ctx)
	if err != nil {
		return err
	}

	uwc, err := a.service.GetUserWithCompany(ctx.Context(), userID)
	if err != nil {
		return err
	}
	if uwc == nil {
		return auth.ErrUserNotFound
	}

	return ok(ctx, uwc)
}
