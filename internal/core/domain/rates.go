package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSource tells where a quote came from.
type RateSource string

const (
	RateSourceBinance      RateSource = "BINANCE"
	RateSourceMock         RateSource = "MOCK"
	RateSourceMockFallback RateSource = "MOCK_FALLBACK"
)

// RateQuote is a resolved rate with its provenance.
type RateQuote struct {
	Rate      decimal.Decimal `json:"rate"`
	Source    RateSource      `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
}

// IsFallback reports whether the quote did not come from the live provider.
func (q RateQuote) IsFallback() bool {
	return q.Source != RateSourceBinance
}

// CombineSources returns the weakest source among quotes.
func CombineSources(quotes ...RateQuote) RateSource {
	combined := RateSourceBinance
	for _, q := range quotes {
		switch q.Source {
		case RateSourceMockFallback:
			return RateSourceMockFallback
		case RateSourceMock:
			combined = RateSourceMock
		}
	}
	return combined
}

// FallbackMadToUsd is the approximate MAD to USD rate used when the live rate is unavailable.
var FallbackMadToUsd = decimal.RequireFromString("0.10")

// FallbackCryptoUsdPrices are the USD prices used when live prices are unavailable.
var FallbackCryptoUsdPrices = map[string]decimal.Decimal{
	AssetBTC:  decimal.NewFromInt(45000),
	AssetETH:  decimal.NewFromInt(3000),
	AssetUSDT: decimal.NewFromInt(1),
	AssetBNB:  decimal.NewFromInt(300),
}

// AssetRate is one entry of the public rate board.
type AssetRate struct {
	Symbol   string          `json:"symbol"`
	UsdPrice decimal.Decimal `json:"usdPrice"`
	MadPrice decimal.Decimal `json:"madPrice"`
	Source   RateSource      `json:"source"`
}

// RateBoard is the set of current crypto rates.
type RateBoard struct {
	MadToUsd  RateQuote   `json:"madToUsd"`
	Assets    []AssetRate `json:"assets"`
	FetchedAt time.Time   `json:"fetchedAt"`
}
