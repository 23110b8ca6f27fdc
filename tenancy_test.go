package auth_test

import (
	"context"
	"testing"

	auth "github.com/goliatone/go-tenant-auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoTenants registers two companies and returns their ids
func twoTenants(t *testing.T, repo auth.RepositoryManager) (uuid.UUID, uuid.UUID) {
	t.Helper()
	svc := newTestAuthService(repo)
	a := registerCompany(t, svc, "a@tenant.test", "user@a.test")
	b := registerCompany(t, svc, "b@tenant.test", "user@b.test")
	return a.CompanyID, b.CompanyID
}

func TestCustomerService_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	tenantA, tenantB := twoTenants(t, repo)
	svc := auth.NewCustomerService(repo).WithLogger(auth.NoopLogger{})

	created, err := svc.Create(ctx, tenantA, auth.CustomerInput{
		Name:  "Globex",
		Email: "billing@globex.test",
	})
	require.NoError(t, err)
	assert.Equal(t, tenantA, created.CompanyID)
	assert.True(t, created.IsActive)

	_, err = svc.Get(ctx, tenantB, created.ID)
	assert.ErrorIs(t, err, auth.ErrCustomerNotFound)

	_, err = svc.Update(ctx, tenantB, created.ID, auth.CustomerUpdate{Name: ptr("Hijacked")})
	assert.ErrorIs(t, err, auth.ErrCustomerNotFound)

	err = svc.Delete(ctx, tenantB, created.ID)
	assert.ErrorIs(t, err, auth.ErrCustomerNotFound)

	listB, err := svc.List(ctx, tenantB)
	require.NoError(t, err)
	assert.Empty(t, listB)

	listA, err := svc.List(ctx, tenantA)
	require.NoError(t, err)
	require.Len(t, listA, 1)
	assert.Equal(t, "Globex", listA[0].Name)

	same, err := svc.Create(ctx, tenantB, auth.CustomerInput{
		Name:  "Globex",
		Email: "billing@globex.test",
	})
	require.NoError(t, err)
	assert.Equal(t, tenantB, same.CompanyID)
}

func TestCustomerService_DuplicateEmailInCompany(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	tenantA, _ := twoTenants(t, repo)
	svc := auth.NewCustomerService(repo).WithLogger(auth.NoopLogger{})

	_, err := svc.Create(ctx, tenantA, auth.CustomerInput{Name: "One", Email: "dup@globex.test"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, tenantA, auth.CustomerInput{Name: "Two", Email: "dup@globex.test"})
	assert.ErrorIs(t, err, auth.ErrCustomerEmailTaken)
	assert.Equal(t, 400, auth.HTTPStatus(err))

	_, err = svc.Create(ctx, tenantA, auth.CustomerInput{Name: "No email 1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, tenantA, auth.CustomerInput{Name: "No email 2"})
	require.NoError(t, err)
}

func TestCustomerService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	tenantA, _ := twoTenants(t, repo)
	svc := auth.NewCustomerService(repo).WithLogger(auth.NoopLogger{})

	created, err := svc.Create(ctx, tenantA, auth.CustomerInput{
		Name:    "Globex",
		Notes:   "net 30",
		Address: &auth.Address{City: "Pune", Country: "IN"},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, tenantA, created.ID, auth.CustomerUpdate{
		Name:     ptr("Globex Corp"),
		IsActive: ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Globex Corp", updated.Name)
	assert.Equal(t, "net 30", updated.Notes)
	assert.False(t, updated.IsActive)

	reloaded, err := svc.Get(ctx, tenantA, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Globex Corp", reloaded.Name)
	require.NotNil(t, reloaded.Address)
	assert.Equal(t, "Pune", reloaded.Address.City)

	_, err = svc.Update(ctx, tenantA, created.ID, auth.CustomerUpdate{Name: ptr("")})
	assert.ErrorIs(t, err, auth.ErrValidation)

	require.NoError(t, svc.Delete(ctx, tenantA, created.ID))
	_, err = svc.Get(ctx, tenantA, created.ID)
	assert.ErrorIs(t, err, auth.ErrCustomerNotFound)
}

func TestCustomerService_Validation(t *testing.T) {
	svc := auth.NewCustomerService(newTestRepo(t)).WithLogger(auth.NoopLogger{})

	_, err := svc.Create(context.Background(), uuid.New(), auth.CustomerInput{Email: "nope"})
	require.Error(t, err)
	assert.Equal(t, []auth.FieldError{
		{Field: "email", Message: "Invalid email address"},
		{Field: "name", Message: "Customer name is required"},
	}, auth.ValidationDetails(err))
}

func TestProductService_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	tenantA, tenantB := twoTenants(t, repo)
	svc := auth.NewProductService(repo).WithLogger(auth.NoopLogger{})

	created, err := svc.Create(ctx, tenantA, auth.ProductInput{
		Name:      "Widget",
		SKU:       "W-1",
		UnitPrice: ptr(12.5),
		TaxRate:   ptr(18.0),
	})
	require.NoError(t, err)
	assert.Equal(t, 12.5, created.UnitPrice)
	assert.Equal(t, 18.0, created.TaxRate)

	_, err = svc.Get(ctx, tenantB, created.ID)
	assert.ErrorIs(t, err, auth.ErrProductNotFound)

	err = svc.Delete(ctx, tenantB, created.ID)
	assert.ErrorIs(t, err, auth.ErrProductNotFound)

	_, err = svc.Create(ctx, tenantB, auth.ProductInput{Name: "Widget", SKU: "W-1", UnitPrice: ptr(10.0)})
	require.NoError(t, err)

	_, err = svc.Create(ctx, tenantA, auth.ProductInput{Name: "Widget 2", SKU: "W-1", UnitPrice: ptr(10.0)})
	assert.ErrorIs(t, err, auth.ErrProductSKUTaken)

	listA, err := svc.List(ctx, tenantA)
	require.NoError(t, err)
	assert.Len(t, listA, 1)
}

func TestProductService_UpdateAndValidation(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	tenantA, _ := twoTenants(t, repo)
	svc := auth.NewProductService(repo).WithLogger(auth.NoopLogger{})

	created, err := svc.Create(ctx, tenantA, auth.ProductInput{Name: "Widget", UnitPrice: ptr(0.0)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, created.TaxRate)

	updated, err := svc.Update(ctx, tenantA, created.ID, auth.ProductUpdate{
		UnitPrice: ptr(99.0),
		Category:  ptr("hardware"),
	})
	require.NoError(t, err)
	assert.Equal(t, 99.0, updated.UnitPrice)
	assert.Equal(t, "hardware", updated.Category)
	assert.Equal(t, "Widget", updated.Name)

	tests := []struct {
		name  string
		input auth.ProductInput
		field string
		msg   string
	}{
		{"missing price", auth.ProductInput{Name: "X"}, "unitPrice", "Unit price is required"},
		{"negative price", auth.ProductInput{Name: "X", UnitPrice: ptr(-1.0)}, "unitPrice", "Unit price must be 0 or more"},
		{"tax above 100", auth.ProductInput{Name: "X", UnitPrice: ptr(1.0), TaxRate: ptr(101.0)}, "taxRate", "Tax rate must be between 0 and 100"},
		{"missing name", auth.ProductInput{UnitPrice: ptr(1.0)}, "name", "Product name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tenantA, tt.input)
			require.Error(t, err)
			assert.Contains(t, auth.ValidationDetails(err), auth.FieldError{Field: tt.field, Message: tt.msg})
		})
	}
}

func TestProductService_WholeNumberPrices(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	tenantA, _ := twoTenants(t, repo)
	svc := auth.NewProductService(repo).WithLogger(auth.NoopLogger{})

	created, err := svc.Create(ctx, tenantA, auth.ProductInput{
		Name:      "Gadget",
		UnitPrice: ptr(100.0),
		TaxRate:   ptr(16.0),
	})
	require.NoError(t, err)

	found, err := svc.Get(ctx, tenantA, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, found.UnitPrice)
	assert.Equal(t, 16.0, found.TaxRate)

	list, err := svc.List(ctx, tenantA)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 100.0, list[0].UnitPrice)
}
