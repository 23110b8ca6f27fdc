package server

import (
	"github.com/goliatone/go-router"
	auth "github.com/goliatone/go-tenant-auth"
)

// ProductsController exposes the product catalog of the caller's company
type ProductsController struct {
	service *auth.ProductService
}

func (a *ProductsController) List(ctx router.Context) error {
	companyID, err := tenantID(ctx)
	if err != nil {
		return err
	}

	records, err := a.service.List(ctx.Context(), companyID)
	if err != nil {
		return err
	}

	return ok(ctx, records)
}

func (a *ProductsController) Get(ctx router.Context) error {
	companyID, err := tenantID(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id", auth.ErrProductNotFound)
	if err != nil {
		return err
	}

	record, err := a.service.Get(ctx.Context(), companyID, id)
	if err != nil {
		return err
	}

	return ok(ctx, record)
}

func (a *ProductsController) Create(ctx router.Context) error {
	companyID, err := tenantID(ctx)
	if err != nil {
		return err
	}

	var req auth.ProductInput
	if err := bind(ctx, &req); err != nil {
		return err
	}

	record, err := a.service.Create(ctx.Context(), companyID, req)
	if err != nil {
		return err
	}

	return created(ctx, record)
}

func (a *ProductsController) Update(ctx router.Context) error {
	companyID, err := tenantID(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id", auth.ErrProductNotFound)
	if err != nil {
		return err
	}

	var req auth.ProductUpdate
	if err := bind(ctx, &req); err != nil {
		return err
	}

	record, err := a.service.Update(ctx.Context(), companyID, id, req)
	if err != nil {
		return err
	}

	return ok(ctx, record)
}

func (a *ProductsController) Delete(ctx router.Context) error {
	companyID, err := tenantID(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id", auth.ErrProductNotFound)
	if err != nil {
		return err
	}

	if err := a.service.Delete(ctx.Context(), companyID, id); err != nil {
		return err
	}

	return ok(ctx, map[string]any{"id": id})
}
