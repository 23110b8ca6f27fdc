package server

import (
	"github.com/goliatone/go-router"
	auth "github.com/goliatone/go-tenant-auth"
)

// AdminAuthController serves the platform admin auth routes
type AdminAuthController struct {
	service *auth.PlatformAdminService
}

func (a *AdminAuthController) Login(ctx router.Context) error {
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

func (a *AdminAuthController) Refresh(ctx router.Context) error {
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

func (a *AdminAuthController) Logout(ctx router.Context) error {
	return message(ctx, msgLoggedOut)
}

func (a *AdminAuthController) Me(ctx router.Context) error {
	adminID, _, err := claimsUserID(ctx)
	if err != nil {
		return err
	}

	profile, err := a.service.GetByID(ctx.Context(), adminID)
	if err != nil {
		return err
	}
	if profile == nil {
		return auth.ErrAdminNotFound
	}

	return ok(ctx, map[string]any{"user": profile})
}
