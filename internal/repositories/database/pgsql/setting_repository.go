package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/ebank_backoffice/internal/apperrors"
	"github.com/SscSPs/ebank_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/ebank_backoffice/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const settingColumns = `setting_key, setting_value, setting_type, description, created_at, created_by, last_updated_at, last_updated_by`

type PgxSettingRepository struct {
	pool *pgxpool.Pool
}

func newPgxSettingRepository(pool *pgxpool.Pool) portsrepo.SettingRepository {
	return &PgxSettingRepository{pool: pool}
}

var _ portsrepo.SettingRepository = (*PgxSettingRepository)(nil)

func scanSetting(row rowScanner) (domain.GlobalSetting, error) {
	var s domain.GlobalSetting
	var typ string
	err := row.Scan(&s.Key, &s.Value, &typ, &s.Description, &s.CreatedAt, &s.CreatedBy, &s.LastUpdatedAt, &s.LastUpdatedBy)
	s.Type = domain.SettingType(typ)
	return s, err
}

func (r *PgxSettingRepository) FindSettingByKey(ctx context.Context, key string) (*domain.GlobalSetting, error) {
	s, err := scanSetting(r.pool.QueryRow(ctx, `SELECT `+settingColumns+` FROM global_settings WHERE setting_key = $1;`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find setting %s: %w", key, err)
	}
	return &s, nil
}

func (r *PgxSettingRepository) ListSettings(ctx context.Context) ([]domain.GlobalSetting, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+settingColumns+` FROM global_settings ORDER BY setting_key;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	settings := []domain.GlobalSetting{}
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan setting row: %w", err)
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating setting rows: %w", err)
	}
	return settings, nil
}

func (r *PgxSettingRepository) UpdateSettingValue(ctx context.Context, setting domain.GlobalSetting) error {
	query := `
		UPDATE global_settings
		SET setting_value = $2, last_updated_at = $3, last_updated_by = $4
		WHERE setting_key = $1;
	`
	cmdTag, err := r.pool.Exec(ctx, query, setting.Key, setting.Value, setting.LastUpdatedAt, setting.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update setting %s: %w", setting.Key, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxSettingRepository) InsertSettingIfAbsent(ctx context.Context, setting domain.GlobalSetting) (bool, error) {
	query := `
		INSERT INTO global_settings (` + settingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (setting_key) DO NOTHING;
	`
	cmdTag, err := r.pool.Exec(ctx, query,
		setting.Key,
		setting.Value,
		string(setting.Type),
		setting.Description,
		setting.CreatedAt,
		setting.CreatedBy,
		setting.LastUpdatedAt,
		setting.LastUpdatedBy,
	)
	if err != nil {
		return false, fmt.Errorf("failed to seed setting %s: %w", setting.Key, err)
	}
	return cmdTag.RowsAffected() == 1, nil
}
