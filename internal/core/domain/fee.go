package domain

import "github.com/shopspring/decimal"

// FeePercentageSettingKey is the global setting holding the platform fee percentage.
const FeePercentageSettingKey = "feePercentage"

var (
	defaultFeePercentage = decimal.RequireFromString("1.5")
	hundred              = decimal.NewFromInt(100)
)

// FeeConfig is the fee configuration in force for one request.
type FeeConfig struct {
	Percentage decimal.Decimal
}

// DefaultFeeConfig is the 1.5% fallback used when no setting is available.
func DefaultFeeConfig() FeeConfig {
	return FeeConfig{Percentage: defaultFeePercentage}
}

// Compute returns round(amount * percentage / 100, 2) with halves rounded up.
func (c FeeConfig) Compute(amount decimal.Decimal) decimal.Decimal {
	return RoundFiat(amount.Mul(c.Percentage).Div(hundred))
}
