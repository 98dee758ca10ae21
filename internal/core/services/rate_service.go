package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ebank_backoffice/internal/apperrors"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// rateService owns the fallback table. Provider failures are logged and replaced by fallback quotes.
type rateService struct {
	BaseService
	provider portssvc.RateProvider
}

// NewRateService creates a rate service. A nil provider always yields fallback quotes.
func NewRateService(provider portssvc.RateProvider) portssvc.RateSvc {
	return &rateService{provider: provider}
}

var _ portssvc.RateSvc = (*rateService)(nil)

func (s *rateService) ResolveMadToUsd(ctx context.Context, realtime bool) domain.RateQuote {
	now := s.Now()
	if !realtime {
		return domain.RateQuote{Rate: domain.FallbackMadToUsd, Source: domain.RateSourceMock, Timestamp: now}
	}
	rate, err := s.live(ctx, func(p portssvc.RateProvider) (decimal.Decimal, error) { return p.MadToUsd(ctx) })
	if err != nil {
		s.LogWarn(ctx, "MAD to USD rate unavailable, using fallback", slog.String("error", err.Error()))
		return domain.RateQuote{Rate: domain.FallbackMadToUsd, Source: domain.RateSourceMockFallback, Timestamp: now}
	}
	return domain.RateQuote{Rate: rate, Source: domain.RateSourceBinance, Timestamp: now}
}

func (s *rateService) ResolveCryptoPrice(ctx context.Context, symbol string, realtime bool) (domain.RateQuote, error) {
	symbol = domain.NormalizeAsset(symbol)
	fallback, ok := domain.FallbackCryptoUsdPrices[symbol]
	if !ok {
		return domain.RateQuote{}, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedAsset, symbol)
	}
	now := s.Now()
	if !realtime {
		return domain.RateQuote{Rate: fallback, Source: domain.RateSourceMock, Timestamp: now}, nil
	}
	price, err := s.live(ctx, func(p portssvc.RateProvider) (decimal.Decimal, error) { return p.PriceOf(ctx, symbol) })
	if err != nil {
		s.LogWarn(ctx, "Crypto price unavailable, using fallback",
			slog.String("symbol", symbol), slog.String("error", err.Error()))
		return domain.RateQuote{Rate: fallback, Source: domain.RateSourceMockFallback, Timestamp: now}, nil
	}
	return domain.RateQuote{Rate: price, Source: domain.RateSourceBinance, Timestamp: now}, nil
}

// live calls the provider and treats missing, failing or non-positive answers alike.
func (s *rateService) live(ctx context.Context, fetch func(portssvc.RateProvider) (decimal.Decimal, error)) (decimal.Decimal, error) {
	if s.provider == nil {
		return decimal.Zero, apperrors.ErrRateProviderUnavailable
	}
	v, err := fetch(s.provider)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", apperrors.ErrRateProviderUnavailable, err)
	}
	if !v.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive rate %s", apperrors.ErrRateProviderUnavailable, v)
	}
	return v, nil
}

func (s *rateService) GetRates(ctx context.Context, realtime bool) (*domain.RateBoard, error) {
	madToUsd := s.ResolveMadToUsd(ctx, realtime)
	board := &domain.RateBoard{
		MadToUsd:  madToUsd,
		Assets:    make([]domain.AssetRate, 0, len(domain.SupportedAssets)),
		FetchedAt: s.Now(),
	}
	for _, symbol := range domain.SupportedAssets {
		quote, err := s.ResolveCryptoPrice(ctx, symbol, realtime)
		if err != nil {
			return nil, err
		}
		board.Assets = append(board.Assets, domain.AssetRate{
			Symbol:   symbol,
			UsdPrice: quote.Rate,
			MadPrice: domain.RoundFiat(quote.Rate.Div(madToUsd.Rate)),
			Source:   domain.CombineSources(quote, madToUsd),
		})
	}
	return board, nil
}

func (s *rateService) Warmup(ctx context.Context) error {
	if s.provider == nil {
		return apperrors.ErrRateProviderUnavailable
	}
	var errs []error
	if _, err := s.provider.MadToUsd(ctx); err != nil {
		errs = append(errs, fmt.Errorf("MAD/USD: %w", err))
	}
	for _, symbol := range domain.SupportedAssets {
		if _, err := s.provider.PriceOf(ctx, symbol); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", symbol, err))
		}
	}
	return errors.Join(errs...)
}
