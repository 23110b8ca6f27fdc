package server

import (
	"github.com/goliatone/go-router"
	auth "github.com/goliatone/go-tenant-auth"
)

// CustomersController exposes the customer CRUD of the caller's company
type CustomersController struct {
	service *auth.CustomerService
}

func (a *CustomersController) List(ctx router.Context) error {
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

func (a *CustomersController) Get(ctx router.Context) error {
	companyID, err := tenantID(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id", auth.ErrCustomerNotFound)
	if err != nil {
		return err
	}

	record, err := a.service.Get(ctx.Context(), companyID, id)
	if err != nil {
		return err
	}

	return ok(ctx, record)
}

func (a *CustomersController) Create(ctx router.Context) error {
	companyID, err := tenantID(ctx)
	if err != nil {
		return err
	}

	var req auth.CustomerInput
	if err := bind(ctx, &req); err != nil {
		return err
	}

	record, err := a.service.Create(ctx.Context(), companyID, req)
	if err != nil {
		return err
	}

	return created(ctx, record)
}

func (a *CustomersController) Update(ctx router.Context) error {
	companyID, err := tenantID(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id", auth.ErrCustomerNotFound)
	if err != nil {
		return err
	}

	var req auth.CustomerUpdate
	if err := bind(ctx, &req); err != nil {
		return err
	}

	record, err := a.service.Update(ctx.Context(), companyID, id, req)
	if err != nil {
		return err
	}

	return ok(ctx, record)
}

func (a *CustomersController) Delete(ctx router.Context) error {
	companyID, err := tenantID(ctx)
	if err != nil {
		return err
	}
	id, err := paramID(ctx, "id", auth.ErrCustomerNotFound)
	if err != nil {
		return err
	}

	if err := a.service.Delete(ctx.Context(), companyID, id); err != nil {
		return err
	}

	return ok(ctx, map[string]any{"id": id})
}
