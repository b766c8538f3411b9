package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	domain "github.com/bryanwahyu/finsight/internal/domain/failures"
)

type FailureRepository struct {
	db *sql.DB
}

func NewFailureRepository(db *sql.DB) *FailureRepository { return &FailureRepository{db: db} }

func (r *FailureRepository) Save(ctx context.Context, f *domain.Failure) error {
	const q = `
INSERT INTO analysis_failures
  (user_id, project_ids, operation, phase, message, raw_response, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id;`
	ids := f.ProjectIDs
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	msg := f.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	f.CreatedAt = nowIfZero(f.CreatedAt)
	return r.db.QueryRowContext(ctx, q,
		stringOrDash(f.UserID), string(b), stringOrDash(string(f.Operation)), stringOrDash(f.Phase),
		msg, domain.Truncate(f.RawResponse), f.CreatedAt,
	).Scan(&f.ID)
}

func (r *FailureRepository) ListByProject(ctx context.Context, userID string, projectID string, limit int) ([]*domain.Failure, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, user_id, project_ids, operation, phase, message, raw_response, created_at
FROM analysis_failures
WHERE user_id = $1 AND project_ids @> jsonb_build_array($2::text)
ORDER BY created_at DESC, id DESC
LIMIT $3;`
	rows, err := r.db.QueryContext(ctx, q, userID, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Failure
	for rows.Next() {
		var (
			f   domain.Failure
			ids []byte
			raw sql.NullString
		)
		if err := rows.Scan(&f.ID, &f.UserID, &ids, &f.Operation, &f.Phase, &f.Message, &raw, &f.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(ids, &f.ProjectIDs); err != nil {
			return nil, err
		}
		f.RawResponse = raw.String
		out = append(out, &f)
	}
	return out, rows.Err()
}
