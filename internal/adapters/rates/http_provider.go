package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

// HTTPProviderConfig holds the endpoints and limits of the live rate sources.
type HTTPProviderConfig struct {
	BinanceBaseURL string
	FxBaseURL      string
	Timeout        time.Duration

	// ConsecutiveFailures trips the breaker. Zero means 5.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open. Zero means 30s.
	OpenTimeout time.Duration
}

// HTTPProvider reads crypto prices from the Binance ticker API and the MAD/USD
// rate from an exchangerate-api compatible endpoint. Every call goes through a
// circuit breaker so a dead upstream fails fast.
type HTTPProvider struct {
	cfg     HTTPProviderConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

var _ portssvc.RateProvider = (*HTTPProvider)(nil)

// NewHTTPProvider builds the provider. A nil logger uses slog.Default().
func NewHTTPProvider(cfg HTTPProviderConfig, logger *slog.Logger) *HTTPProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	p := &HTTPProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "rate-provider",
		MaxRequests: 1,
		Interval:    2 * time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Rate provider circuit breaker changed state",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
	return p
}

type binanceTicker struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

type fxLatest struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// PriceOf returns the USD price of one unit of symbol. USDT is pegged at 1.
func (p *HTTPProvider) PriceOf(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = domain.NormalizeAsset(symbol)
	if symbol == domain.AssetUSDT {
		return decimal.NewFromInt(1), nil
	}

	endpoint := p.cfg.BinanceBaseURL + "/api/v3/ticker/price?symbol=" + url.QueryEscape(symbol+"USDT")
	var ticker binanceTicker
	if err := p.fetch(ctx, endpoint, &ticker); err != nil {
		return decimal.Zero, fmt.Errorf("binance price for %s: %w", symbol, err)
	}
	if !ticker.Price.IsPositive() {
		return decimal.Zero, fmt.Errorf("binance returned non-positive price %s for %s", ticker.Price, symbol)
	}
	return ticker.Price, nil
}

// MadToUsd returns how many USD one MAD buys.
func (p *HTTPProvider) MadToUsd(ctx context.Context) (decimal.Decimal, error) {
	var latest fxLatest
	if err := p.fetch(ctx, p.cfg.FxBaseURL+"/v4/latest/"+domain.BaseCurrency, &latest); err != nil {
		return decimal.Zero, fmt.Errorf("MAD/USD rate: %w", err)
	}
	rate, ok := latest.Rates["USD"]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, errors.New("MAD/USD rate missing from response")
	}
	return rate, nil
}

// fetch runs a GET through the breaker and decodes a 2xx JSON body into out.
func (p *HTTPProvider) fetch(ctx context.Context, endpoint string, out any) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("rate provider unavailable (circuit breaker): %w", err)
	}
	return err
}
