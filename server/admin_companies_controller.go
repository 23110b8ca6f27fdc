package server

import (
	"strconv"

	"github.com/goliatone/go-router"
	auth "github.com/goliatone/go-tenant-auth"
)

// AdminCompaniesController lets platform admins review tenants
type AdminCompaniesController struct {
	service *auth.AdminCompanyService
}

func (a *AdminCompaniesController) List(ctx router.Context) error {
	page := positiveQuery(ctx, "page", auth.DefaultPage)
	limit := positiveQuery(ctx, "limit", auth.DefaultPageLimit)

	result, err := a.service.List(ctx.Context(), page, limit)
	if err != nil {
		return err
	}

	return ok(ctx, result)
}

func (a *AdminCompaniesController) Detail(ctx router.Context) error {
	id, err := paramID(ctx, "companyId", auth.ErrCompanyNotFound)
	if err != nil {
		return err
	}

	detail, err := a.service.Detail(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ok(ctx, detail)
}

func (a *AdminCompaniesController) UpdateStatus(ctx router.Context) error {
	id, err := paramID(ctx, "companyId", auth.ErrCompanyNotFound)
	if err != nil {
		return err
	}

	var req auth.CompanyStatusRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return firstViolation(err)
	}

	adminID, _, err := claimsUserID(ctx)
	if err != nil {
		return err
	}

	item, err := a.service.UpdateCompanyStatus(ctx.Context(), id, auth.CompanyStatus(req.Status), adminID)
	if err != nil {
		return err
	}

	return ok(ctx, item)
}

func (a *AdminCompaniesController) UpdatePlan(ctx router.Context) error {
	id, err := paramID(ctx, "companyId", auth.ErrCompanyNotFound)
	if err != nil {
		return err
	}

	var req auth.CompanyPlanRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return firstViolation(err)
	}

	item, err := a.service.UpdateCompanyPlan(ctx.Context(), id, auth.CompanyPlan(req.Plan))
	if err != nil {
		return err
	}

	return ok(ctx, item)
}

// positiveQuery falls back to def for missing, non numeric or non
// positive values.
func positiveQuery(ctx router.Context, key string, def int) int {
	n, err := strconv.Atoi(ctx.Query(key, ""))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
