package services

import (
	"context"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	"github.com/SscSPs/ebank_backoffice/internal/dto"
)

// SettingsSvc manages global settings
type SettingsSvc interface {
	GetAllSettings(ctx context.Context) ([]domain.GlobalSetting, error)
	GetSetting(ctx context.Context, key string) (*domain.GlobalSetting, error)

	// UpdateSetting validates the value against the declared type before saving.
	UpdateSetting(ctx context.Context, key string, req dto.UpdateSettingRequest, adminID string) (*domain.GlobalSetting, error)

	// InitializeDefaults seeds every default setting that is absent.
	InitializeDefaults(ctx context.Context) error
}
