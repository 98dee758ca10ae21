package repositories

import (
	"context"

	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
)

// SettingRepository persists global settings.
type SettingRepository interface {
	// FindSettingByKey returns apperrors.ErrNotFound when the key is absent.
	FindSettingByKey(ctx context.Context, key string) (*domain.GlobalSetting, error)

	ListSettings(ctx context.Context) ([]domain.GlobalSetting, error)

	// UpdateSettingValue changes the value of an existing key.
	UpdateSettingValue(ctx context.Context, setting domain.GlobalSetting) error

	// InsertSettingIfAbsent seeds a setting and reports whether it was inserted.
	InsertSettingIfAbsent(ctx context.Context, setting domain.GlobalSetting) (bool, error)
}

// IdentifierRegistry answers whether a generated business ID is already taken.
type IdentifierRegistry interface {
	IdentifierExists(ctx context.Context, kind domain.IDKind, id string) (bool, error)
}
