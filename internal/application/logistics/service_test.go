package logistics

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchantry/backend/internal/application/apptest"
	"github.com/merchantry/backend/internal/domain/logistics"
)

func TestService_Create_WithRangeFees(t *testing.T) {
	fixture := apptest.NewFixture()
	svc := NewService(fixture.Scope())
	tenantID := uuid.New()
	ctx := context.Background()

	resp, err := svc.Create(ctx, tenantID, CreateCompanyRequest{
		Name:         "Fast Couriers",
		CodFeePaidBy: logistics.CodFeePaidByCustomer,
		FeeConfig: &ConfigureFeesRequest{
			FeeType: logistics.CodFeeTypeRangeBased,
			Ranges: []FeeRangeInput{
				{Min: decimal.Zero, Max: decimal.NewFromInt(10000), Fee: decimal.NewFromInt(100)},
				{Min: decimal.NewFromInt(10000), Max: decimal.NewFromInt(50000), Fee: decimal.NewFromInt(250)},
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, logistics.CodFeeTypeRangeBased, resp.FeeType)
	assert.Len(t, resp.FeeRanges, 2)
	assert.True(t, resp.Active)
}

func TestService_Create_RejectsInvalidPayer(t *testing.T) {
	fixture := apptest.NewFixture()
	svc := NewService(fixture.Scope())

	_, err := svc.Create(context.Background(), uuid.New(), CreateCompanyRequest{
		Name:         "Nobody Pays",
		CodFeePaidBy: "SOMEONE_ELSE",
	})
	require.Error(t, err)
}

func TestService_ConfigureFees_SwitchesStrategy(t *testing.T) {
	fixture := apptest.NewFixture()
	svc := NewService(fixture.Scope())
	tenantID := uuid.New()
	ctx := context.Background()

	created, err := svc.Create(ctx, tenantID, CreateCompanyRequest{
		Name:         "Metro Express",
		CodFeePaidBy: logistics.CodFeePaidByBusinessOwner,
	})
	require.NoError(t, err)
	assert.Equal(t, logistics.CodFeeTypeFixed, created.FeeType)

	resp, err := svc.ConfigureFees(ctx, tenantID, created.ID, ConfigureFeesRequest{
		FeeType:    logistics.CodFeeTypePercentage,
		Percentage: decimal.NewFromFloat(1.5),
	})
	require.NoError(t, err)
	assert.Equal(t, logistics.CodFeeTypePercentage, resp.FeeType)
	assert.True(t, resp.FeePercentage.Equal(decimal.NewFromFloat(1.5)))
}

func TestService_Deactivate_HidesFromActiveListing(t *testing.T) {
	fixture := apptest.NewFixture()
	svc := NewService(fixture.Scope())
	tenantID := uuid.New()
	ctx := context.Background()

	created, err := svc.Create(ctx, tenantID, CreateCompanyRequest{
		Name:         "Retired Couriers",
		CodFeePaidBy: logistics.CodFeePaidByBusinessOwner,
	})
	require.NoError(t, err)

	_, err = svc.Deactivate(ctx, tenantID, created.ID)
	require.NoError(t, err)

	active, err := svc.List(ctx, tenantID, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(ctx, tenantID, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.False(t, all[0].Active)
}
