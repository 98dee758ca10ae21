package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	"github.com/SscSPs/ebank_backoffice/internal/core/services"
	"github.com/stretchr/testify/assert"
)

func TestFeeService_ComputeFee(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*memStore)
		amount  string
		wantFee string
	}{
		{
			name:    "configured 1.5 percent",
			setup:   func(m *memStore) { m.seedSetting(domain.FeePercentageSettingKey, "1.5", domain.SettingTypeDecimal) },
			amount:  "1000.00",
			wantFee: "15.00",
		},
		{
			name:    "setting absent falls back to 1.5 percent",
			setup:   func(m *memStore) {},
			amount:  "1000.00",
			wantFee: "15.00",
		},
		{
			name:    "unparseable setting falls back",
			setup:   func(m *memStore) { m.seedSetting(domain.FeePercentageSettingKey, "abc", domain.SettingTypeDecimal) },
			amount:  "1000.00",
			wantFee: "15.00",
		},
		{
			name:    "negative setting falls back",
			setup:   func(m *memStore) { m.seedSetting(domain.FeePercentageSettingKey, "-2", domain.SettingTypeDecimal) },
			amount:  "200.00",
			wantFee: "3.00",
		},
		{
			name:    "store failure falls back",
			setup:   func(m *memStore) { m.failOn["FindSettingByKey"] = errors.New("connection refused") },
			amount:  "1000.00",
			wantFee: "15.00",
		},
		{
			name:    "one percent",
			setup:   func(m *memStore) { m.seedSetting(domain.FeePercentageSettingKey, "1", domain.SettingTypeDecimal) },
			amount:  "100.00",
			wantFee: "1.00",
		},
		{
			name:    "sub-cent fee rounds to zero",
			setup:   func(m *memStore) { m.seedSetting(domain.FeePercentageSettingKey, "1.5", domain.SettingTypeDecimal) },
			amount:  "0.10",
			wantFee: "0.00",
		},
		{
			name:    "half cent rounds away from zero",
			setup:   func(m *memStore) { m.seedSetting(domain.FeePercentageSettingKey, "1", domain.SettingTypeDecimal) },
			amount:  "50.50",
			wantFee: "0.51",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			tt.setup(store)
			svc := services.NewFeeService(store)
			got := svc.ComputeFee(context.Background(), dec(tt.amount))
			assert.True(t, dec(tt.wantFee).Equal(got), "want %s, got %s", tt.wantFee, got)
		})
	}
}

func TestFeeService_NilRepositoryUsesDefault(t *testing.T) {
	svc := services.NewFeeService(nil)
	assert.True(t, dec("1.5").Equal(svc.LoadFeeConfig(context.Background()).Percentage))
}
