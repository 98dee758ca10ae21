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
	"github.com/SscSPs/ebank_backoffice/internal/dto"
)

type settingsService struct {
	BaseService
	settingRepo portsrepo.SettingRepository
}

// NewSettingsService creates a settings service.
func NewSettingsService(settingRepo portsrepo.SettingRepository) portssvc.SettingsSvc {
	return &settingsService{settingRepo: settingRepo}
}

var _ portssvc.SettingsSvc = (*settingsService)(nil)

func (s *settingsService) GetAllSettings(ctx context.Context) ([]domain.GlobalSetting, error) {
	settings, err := s.settingRepo.ListSettings(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list settings")
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

func (s *settingsService) GetSetting(ctx context.Context, key string) (*domain.GlobalSetting, error) {
	setting, err := s.settingRepo.FindSettingByKey(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("setting %s: %w", key, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return setting, nil
}

func (s *settingsService) UpdateSetting(ctx context.Context, key string, req dto.UpdateSettingRequest, adminID string) (*domain.GlobalSetting, error) {
	setting, err := s.GetSetting(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := setting.Type.ValidateValue(req.Value); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if key == domain.FeePercentageSettingKey {
		if err := validateFeePercentage(req.Value); err != nil {
			return nil, err
		}
	}

	previous := setting.Value
	setting.Value = req.Value
	setting.LastUpdatedAt = s.Now()
	setting.LastUpdatedBy = adminID
	if err := s.settingRepo.UpdateSettingValue(ctx, *setting); err != nil {
		s.LogError(ctx, err, "Failed to update setting", slog.String("key", key))
		return nil, fmt.Errorf("failed to update setting %s: %w", key, err)
	}

	s.LogInfo(ctx, "Setting updated",
		slog.String("key", key),
		slog.String("old_value", previous),
		slog.String("new_value", req.Value),
		slog.String("admin_id", adminID))
	return setting, nil
}

// InitializeDefaults seeds the default settings that are not present yet.
func (s *settingsService) InitializeDefaults(ctx context.Context) error {
	now := s.Now()
	var errs []error
	for _, def := range domain.DefaultSettings {
		setting := def
		setting.AuditFields = domain.NewAuditFields("SYSTEM", now)
		inserted, err := s.settingRepo.InsertSettingIfAbsent(ctx, setting)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to seed setting %s: %w", setting.Key, err))
			continue
		}
		if inserted {
			s.LogInfo(ctx, "Seeded default setting", slog.String("key", setting.Key), slog.String("value", setting.Value))
		}
	}
	return errors.Join(errs...)
}
