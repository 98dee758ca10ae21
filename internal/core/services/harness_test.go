package services_test

import (
	"context"
	"errors"
	"time"

	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/SscSPs/ebank_backoffice/internal/core/services"
	"github.com/SscSPs/ebank_backoffice/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock RateProvider ---
type MockRateProvider struct {
	mock.Mock
}

var _ portssvc.RateProvider = (*MockRateProvider)(nil)

func (m *MockRateProvider) PriceOf(ctx context.Context, symbol string) (decimal.Decimal, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRateProvider) MadToUsd(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

var errProviderDown = errors.New("provider down")

// newTestContainer wires the real services over the in-memory store.
func newTestContainer(store *memStore, provider portssvc.RateProvider) *portssvc.ServiceContainer {
	cfg := &config.Config{
		JWTSecret:            "test-secret",
		JWTExpiryDuration:    time.Hour,
		JWTIssuer:            "ebank-test",
		NotificationExchange: "ebank.test",
	}
	return services.NewServiceContainer(cfg, store.provider(), provider)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
