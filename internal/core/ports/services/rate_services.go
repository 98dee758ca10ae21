package services

import (
	"context"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RateProvider is the external source of live rates. Any error means "use the fallback".
type RateProvider interface {
	// PriceOf returns the USD price of one unit of symbol.
	PriceOf(ctx context.Context, symbol string) (decimal.Decimal, error)

	// MadToUsd returns how many USD one MAD buys.
	MadToUsd(ctx context.Context) (decimal.Decimal, error)
}

// RateSvc resolves rates with fallback and reports where each came from.
type RateSvc interface {
	// ResolveMadToUsd never fails; provider errors produce a MOCK_FALLBACK quote.
	ResolveMadToUsd(ctx context.Context, realtime bool) domain.RateQuote

	// ResolveCryptoPrice fails only with ErrUnsupportedAsset.
	ResolveCryptoPrice(ctx context.Context, symbol string, realtime bool) (domain.RateQuote, error)

	// GetRates builds the rate board for every supported asset.
	GetRates(ctx context.Context, realtime bool) (*domain.RateBoard, error)

	// Warmup queries the provider for every supported rate so caches are hot.
	Warmup(ctx context.Context) error
}
