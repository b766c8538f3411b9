package mysql

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
FROM user_preferences WHERE user_id=? LIMIT 1;`
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

// Upsert keeps one record per user; created_at survives updates.
func (r *PreferencesRepository) Upsert(ctx context.Context, p *domain.Preferences) error {
	const q = `
INSERT INTO user_preferences
(user_id, model_type, temperature, profession, style, custom_prompt, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 model_type=VALUES(model_type), temperature=VALUES(temperature), profession=VALUES(profession),
 style=VALUES(style), custom_prompt=VALUES(custom_prompt), updated_at=VALUES(updated_at);
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
