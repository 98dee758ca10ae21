package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ebank_backoffice/internal/apperrors"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ebank_backoffice/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

type feeService struct {
	BaseService
	settingRepo portsrepo.SettingRepository
}

// NewFeeService creates a fee engine reading its percentage from global settings.
func NewFeeService(settingRepo portsrepo.SettingRepository) portssvc.FeeSvc {
	return &feeService{settingRepo: settingRepo}
}

var _ portssvc.FeeSvc = (*feeService)(nil)

// LoadFeeConfig reads feePercentage once. Missing, unreadable or negative values fall back to the default.
func (s *feeService) LoadFeeConfig(ctx context.Context) domain.FeeConfig {
	cfg, err := s.readFeeConfig(ctx)
	if err != nil {
		s.LogWarn(ctx, "Using default fee percentage",
			slog.String("error", err.Error()),
			slog.String("default", domain.DefaultFeeConfig().Percentage.String()))
		return domain.DefaultFeeConfig()
	}
	return cfg
}

func (s *feeService) readFeeConfig(ctx context.Context) (domain.FeeConfig, error) {
	if s.settingRepo == nil {
		return domain.FeeConfig{}, apperrors.ErrConfigMissing
	}
	setting, err := s.settingRepo.FindSettingByKey(ctx, domain.FeePercentageSettingKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.FeeConfig{}, apperrors.ErrConfigMissing
		}
		return domain.FeeConfig{}, fmt.Errorf("%w: %v", apperrors.ErrConfigMissing, err)
	}
	pct, err := decimal.NewFromString(setting.Value)
	if err != nil {
		return domain.FeeConfig{}, fmt.Errorf("%w: unparseable %s %q", apperrors.ErrConfigMissing, setting.Key, setting.Value)
	}
	if pct.IsNegative() {
		return domain.FeeConfig{}, fmt.Errorf("%w: negative %s %q", apperrors.ErrConfigMissing, setting.Key, setting.Value)
	}
	return domain.FeeConfig{Percentage: pct}, nil
}

// ComputeFee returns round(amount * percentage / 100, 2).
func (s *feeService) ComputeFee(ctx context.Context, amount decimal.Decimal) decimal.Decimal {
	return s.LoadFeeConfig(ctx).Compute(amount)
}

// validateFeePercentage accepts percentages in [0, 100].
func validateFeePercentage(value string) error {
	pct, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Errorf("%w: fee percentage %q is not a decimal", apperrors.ErrValidation, value)
	}
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: fee percentage must be between 0 and 100", apperrors.ErrValidation)
	}
	return nil
}
