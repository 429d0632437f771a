package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchantry/backend/internal/application/apptest"
	"github.com/merchantry/backend/internal/domain/catalog"
	"github.com/merchantry/backend/internal/domain/shared"
)

func TestService_Create(t *testing.T) {
	fixture := apptest.NewFixture()
	svc := NewService(fixture.Scope())
	tenantID := uuid.New()
	ctx := context.Background()

	resp, err := svc.Create(ctx, tenantID, CreateProductRequest{
		Code:         "widget-a",
		Name:         "Widget A",
		Unit:         "pcs",
		SellingPrice: decimal.NewFromInt(150),
	})
	require.NoError(t, err)
	assert.Equal(t, "WIDGET-A", resp.Code)
	assert.Equal(t, catalog.ProductStatusActive, resp.Status)
	assert.True(t, resp.SellingPrice.Equal(decimal.NewFromInt(150)))
	assert.True(t, resp.CurrentQuantity.IsZero())
}

func TestService_Create_RejectsDuplicateCode(t *testing.T) {
	fixture := apptest.NewFixture()
	svc := NewService(fixture.Scope())
	tenantID := uuid.New()
	ctx := context.Background()

	_, err := svc.Create(ctx, tenantID, CreateProductRequest{Code: "SKU-1", Name: "First"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, tenantID, CreateProductRequest{Code: "sku-1", Name: "Second"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
}

func TestService_AddVariant(t *testing.T) {
	fixture := apptest.NewFixture()
	svc := NewService(fixture.Scope())
	tenantID := uuid.New()
	ctx := context.Background()

	created, err := svc.Create(ctx, tenantID, CreateProductRequest{Code: "SHIRT", Name: "Shirt"})
	require.NoError(t, err)

	resp, err := svc.AddVariant(ctx, tenantID, created.ID, AddVariantRequest{Name: "Large", SKU: "SHIRT-L"})
	require.NoError(t, err)
	assert.True(t, resp.HasVariants)
	require.Len(t, resp.Variants, 1)
	assert.Equal(t, "Large", resp.Variants[0].Name)

	_, err = svc.AddVariant(ctx, tenantID, created.ID, AddVariantRequest{Name: "Large again", SKU: "SHIRT-L"})
	require.Error(t, err)
}

func TestService_Deactivate(t *testing.T) {
	fixture := apptest.NewFixture()
	svc := NewService(fixture.Scope())
	tenantID := uuid.New()
	ctx := context.Background()

	created, err := svc.Create(ctx, tenantID, CreateProductRequest{Code: "OLD", Name: "Old product"})
	require.NoError(t, err)

	resp, err := svc.Deactivate(ctx, tenantID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.ProductStatusInactive, resp.Status)

	// disabled products disappear from the default listing
	active, err := svc.List(ctx, tenantID, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(ctx, tenantID, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestService_GetByCode_IsCaseInsensitive(t *testing.T) {
	fixture := apptest.NewFixture()
	svc := NewService(fixture.Scope())
	tenantID := uuid.New()
	ctx := context.Background()

	_, err := svc.Create(ctx, tenantID, CreateProductRequest{Code: "MUG-01", Name: "Mug"})
	require.NoError(t, err)

	resp, err := svc.GetByCode(ctx, tenantID, "mug-01")
	require.NoError(t, err)
	assert.Equal(t, "MUG-01", resp.Code)
}
