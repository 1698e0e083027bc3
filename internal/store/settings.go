package store

import (
	"context"
	"fmt"

	"facilitypay/pkg/types"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const settingsTableName = "facilitypay.settings"

type SettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Settings returns every stored key/value, with defaults filled in for
// keys that have no row yet.
func (r *SettingsRepository) Settings(ctx context.Context) (map[string]string, error) {

	query, args, err := psql().Select("key", "value").From(settingsTableName).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate settings query: %w", err)
	}

	var rows []*types.Setting
	err = pgxscan.Select(ctx, r.pool, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch settings: %w", err)
	}

	out := make(map[string]string, len(types.SettingDefaults))
	for key, value := range types.SettingDefaults {
		out[key] = value
	}
	for _, row := range rows {
		out[row.Key] = row.Value
	}

	return out, nil
}

func (r *SettingsRepository) SetSetting(ctx context.Context, key, value string) error {

	query := `
		INSERT INTO facilitypay.settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value`

	_, err := r.pool.Exec(ctx, query, key, value)
	if err != nil {
		return fmt.Errorf("failed to upsert setting %s: %w", key, err)
	}

	return nil
}
