package repository

import (
	"context"

	"vkmod/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) List(ctx context.Context) ([]*models.Setting, error) {
	rows, err := r.db.Query(ctx, `SELECT key, value, type, description, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Setting
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Type, &s.Description, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

func (r *SettingsRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	var s models.Setting
	err := r.db.QueryRow(ctx,
		`SELECT key, value, type, description, updated_at FROM settings WHERE key = $1`, key,
	).Scan(&s.Key, &s.Value, &s.Type, &s.Description, &s.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &s, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, s *models.Setting) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO settings (key, value, type, description) VALUES ($1,$2,$3,$4)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, type = EXCLUDED.type, description = EXCLUDED.description, updated_at = NOW()
		RETURNING updated_at`,
		s.Key, s.Value, s.Type, s.Description,
	).Scan(&s.UpdatedAt)
}
