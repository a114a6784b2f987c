package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vishnu-krishnan/expenze/internal/models"
)

const settingColumns = `id, key_name, key_value, setting_type, description, category, is_public`

type SettingsRepository struct {
	db *pgxpool.Pool
}

// NewSettingsRepository создает репозиторий системных настроек.
func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func scanSetting(row pgx.Row) (models.SystemSetting, error) {
	var s models.SystemSetting
	err := row.Scan(&s.ID, &s.Key, &s.Value, &s.SettingType, &s.Description, &s.Category, &s.IsPublic, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s, ErrNotFound
		}
		return s, err
	}

	return s, nil
}

// GetByKey возвращает настройку по ключу.
func (r *SettingsRepository) GetByKey(ctx context.Context, key string) (models.SystemSetting, error) {
	return scanSetting(r.db.QueryRow(ctx,
		`SELECT `+settingColumns+`, updated_at
		 FROM system_settings
		 WHERE key_name = $1`,
		key,
	))
}

// List возвращает все настройки по категориям.
func (r *SettingsRepository) List(ctx context.Context) ([]models.SystemSetting, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+settingColumns+`, updated_at
		 FROM system_settings
		 ORDER BY category, key_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []models.SystemSetting
	for rows.Next() {
		var s models.SystemSetting
		if err := rows.Scan(&s.ID, &s.Key, &s.Value, &s.SettingType, &s.Description, &s.Category, &s.IsPublic, &s.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}

	return settings, rows.Err()
}

// Update меняет значение существующей настройки.
func (r *SettingsRepository) Update(ctx context.Context, key, value string) (models.SystemSetting, error) {
	return scanSetting(r.db.QueryRow(ctx,
		`UPDATE system_settings
		 SET key_value = $2,
		     updated_at = NOW()
		 WHERE key_name = $1
		 RETURNING `+settingColumns+`, updated_at`,
		key, value,
	))
}
