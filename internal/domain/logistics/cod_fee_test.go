package logistics

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rangeTable() []CodFeeRange {
	mk := func(min, max, fee int64) CodFeeRange {
		return CodFeeRange{
			Min: decimal.NewFromInt(min),
			Max: decimal.NewFromInt(max),
			Fee: decimal.NewFromInt(fee),
		}
	}
	return []CodFeeRange{
		mk(0, 10000, 75),
		mk(10000, 20000, 100),
		mk(20000, 50000, 200),
	}
}

func TestCalculateCodFee_RangeBased(t *testing.T) {
	config := CodFeeConfig{FeeType: CodFeeTypeRangeBased, Ranges: rangeTable()}

	tests := []struct {
		name      string
		codAmount int64
		wantFee   int64
	}{
		{"bottom of lowest bracket", 1, 75},
		{"just below bracket boundary", 9999, 75},
		{"exactly at bracket boundary", 10000, 100},
		{"inside second bracket", 15000, 100},
		{"top bracket", 25000, 200},
		{"beyond the table uses highest bracket fee", 90000, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CalculateCodFee(config, decimal.NewFromInt(tt.codAmount))
			require.NoError(t, err)
			assert.True(t, result.Fee.Equal(decimal.NewFromInt(tt.wantFee)),
				"amount %d: want fee %d, got %s", tt.codAmount, tt.wantFee, result.Fee)
			assert.Equal(t, CodFeeTypeRangeBased, result.CalculationType)
		})
	}
}

func TestCalculateCodFee_Percentage(t *testing.T) {
	config := CodFeeConfig{FeeType: CodFeeTypePercentage, Percentage: decimal.NewFromFloat(2.5)}

	result, err := CalculateCodFee(config, decimal.NewFromInt(10000))
	require.NoError(t, err)
	assert.True(t, result.Fee.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, CodFeeTypePercentage, result.CalculationType)
}

func TestCalculateCodFee_Fixed(t *testing.T) {
	config := CodFeeConfig{FeeType: CodFeeTypeFixed, FixedFee: decimal.NewFromInt(150)}

	for _, amount := range []int64{1, 500, 100000} {
		result, err := CalculateCodFee(config, decimal.NewFromInt(amount))
		require.NoError(t, err)
		assert.True(t, result.Fee.Equal(decimal.NewFromInt(150)))
	}
}

func TestCalculateCodFee_PrepaidOrder(t *testing.T) {
	config := CodFeeConfig{FeeType: CodFeeTypeFixed, FixedFee: decimal.NewFromInt(150)}

	for _, amount := range []int64{0, -500} {
		result, err := CalculateCodFee(config, decimal.NewFromInt(amount))
		require.NoError(t, err)
		assert.True(t, result.Fee.IsZero(), "prepaid order must carry no COD fee")
	}
}

func TestCalculateCodFee_IsPure(t *testing.T) {
	config := CodFeeConfig{FeeType: CodFeeTypeRangeBased, Ranges: rangeTable()}
	amount := decimal.NewFromInt(12345)

	first, err := CalculateCodFee(config, amount)
	require.NoError(t, err)
	second, err := CalculateCodFee(config, amount)
	require.NoError(t, err)
	assert.True(t, first.Fee.Equal(second.Fee))
	assert.Equal(t, first.CalculationType, second.CalculationType)
}

func TestCalculateCodAmount(t *testing.T) {
	got := CalculateCodAmount(decimal.NewFromInt(5000), decimal.NewFromInt(200), decimal.NewFromInt(1000))
	assert.True(t, got.Equal(decimal.NewFromInt(4200)))

	fullyPrepaid := CalculateCodAmount(decimal.NewFromInt(5000), decimal.NewFromInt(200), decimal.NewFromInt(5200))
	assert.True(t, fullyPrepaid.IsZero())
}

func TestValidateCodFeeRanges(t *testing.T) {
	t.Run("accepts contiguous ascending brackets", func(t *testing.T) {
		assert.NoError(t, ValidateCodFeeRanges(rangeTable()))
	})

	t.Run("rejects empty table", func(t *testing.T) {
		assert.Error(t, ValidateCodFeeRanges(nil))
	})

	t.Run("rejects inverted bracket", func(t *testing.T) {
		bad := []CodFeeRange{{Min: decimal.NewFromInt(100), Max: decimal.NewFromInt(50), Fee: decimal.NewFromInt(10)}}
		assert.Error(t, ValidateCodFeeRanges(bad))
	})

	t.Run("rejects overlapping brackets", func(t *testing.T) {
		bad := []CodFeeRange{
			{Min: decimal.NewFromInt(0), Max: decimal.NewFromInt(100), Fee: decimal.NewFromInt(10)},
			{Min: decimal.NewFromInt(50), Max: decimal.NewFromInt(200), Fee: decimal.NewFromInt(20)},
		}
		assert.Error(t, ValidateCodFeeRanges(bad))
	})
}

func TestCalculateShippingVariance(t *testing.T) {
	t.Run("under estimate is income", func(t *testing.T) {
		v := CalculateShippingVariance(decimal.NewFromInt(200), decimal.NewFromInt(150))
		assert.True(t, v.Equal(decimal.NewFromInt(50)))
	})

	t.Run("overrun is expense", func(t *testing.T) {
		v := CalculateShippingVariance(decimal.NewFromInt(200), decimal.NewFromInt(500))
		assert.True(t, v.Equal(decimal.NewFromInt(-300)))
	})

	t.Run("exact cost has zero variance", func(t *testing.T) {
		v := CalculateShippingVariance(decimal.NewFromInt(200), decimal.NewFromInt(200))
		assert.True(t, v.IsZero())
	})
}

func TestLogisticsCompany_Configure(t *testing.T) {
	tenantID := uuid.New()
	c, err := NewLogisticsCompany(tenantID, "Swift Couriers", CodFeePaidByCustomer)
	require.NoError(t, err)
	assert.Equal(t, CodFeeTypeFixed, c.FeeType)

	require.NoError(t, c.ConfigurePercentageFee(decimal.NewFromFloat(2.5)))
	assert.Equal(t, CodFeeTypePercentage, c.FeeType)

	assert.Error(t, c.ConfigurePercentageFee(decimal.NewFromInt(101)))
	assert.Error(t, c.ConfigureFixedFee(decimal.NewFromInt(-5)))

	require.NoError(t, c.ConfigureRangeFee(rangeTable()))
	assert.Equal(t, CodFeeTypeRangeBased, c.FeeType)
	for _, r := range c.FeeRanges {
		assert.Equal(t, c.ID, r.CompanyID)
		assert.Equal(t, tenantID, r.TenantID)
	}

	config := c.FeeConfig()
	result, err := CalculateCodFee(config, decimal.NewFromInt(9999))
	require.NoError(t, err)
	assert.True(t, result.Fee.Equal(decimal.NewFromInt(75)))
}
