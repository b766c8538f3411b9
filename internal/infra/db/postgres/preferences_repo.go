package postgres

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/bryanwahyu/finsight/internal/domain/preferences"
)

type PreferencesRepository struct {
	db *sql.DB
}

func NewPreferencesRepository(db *sql.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

func (r *PreferencesRepository) Get(ctx context.Context, userID string) (*domain.Preferences, error) {
	const q = `
SELECT user_id, model_type, temperature, profession, style, custom_prompt, created_at, updated_at
FROM user_preferences WHERE user_id=$1 LIMIT 1;`
	var (
		p      domain.Preferences
		custom sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&p.UserID, &p.ModelType, &p.Temperature, &p.Profession, &p.Style, &custom, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.CustomPrompt = custom.String
	return &p, nil
}

func (r *PreferencesRepository) Upsert(ctx context.Context, p *domain.Preferences) error {
	const q = `
INSERT INTO user_preferences
  (user_id, model_type, temperature, profession, style, custom_prompt, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (user_id) DO UPDATE SET
  model_type=EXCLUDED.model_type,
  temperature=EXCLUDED.temperature,
  profession=EXCLUDED.profession,
  style=EXCLUDED.style,
  custom_prompt=EXCLUDED.custom_prompt,
  updated_at=EXCLUDED.updated_at;
`
	p.UpdatedAt = nowIfZero(p.UpdatedAt)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}
	_, err := r.db.ExecContext(ctx, q,
		p.UserID, string(p.ModelType), p.Temperature, p.Profession, string(p.Style), p.CustomPrompt,
		p.CreatedAt, p.UpdatedAt,
	)
	return err
}
