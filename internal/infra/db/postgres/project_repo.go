package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	domain "github.com/bryanwahyu/finsight/internal/domain/projects"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, user_id, filename, mime_type, size, file_path, status,
       summary, insights, chart_data, future_predictions, forecast, improvement_suggestions, uploaded_at`

// Save inserts or updates a project; only derived analysis fields change on conflict.
func (r *ProjectRepository) Save(ctx context.Context, p *domain.Project) error {
	const q = `
INSERT INTO projects
  (id, user_id, filename, mime_type, size, file_path, status,
   summary, insights, chart_data, future_predictions, forecast, improvement_suggestions, uploaded_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (id) DO UPDATE SET
  status=EXCLUDED.status,
  summary=EXCLUDED.summary,
  insights=EXCLUDED.insights,
  chart_data=EXCLUDED.chart_data,
  future_predictions=EXCLUDED.future_predictions,
  forecast=EXCLUDED.forecast,
  improvement_suggestions=EXCLUDED.improvement_suggestions;
`
	status := p.Status
	if !status.Valid() {
		status = domain.StatusPending
	}
	insights, err := jsonValue(p.Insights)
	if err != nil {
		return fmt.Errorf("encode insights: %w", err)
	}
	suggestions, err := jsonValue(p.ImprovementSuggestions)
	if err != nil {
		return fmt.Errorf("encode suggestions: %w", err)
	}
	charts, err := jsonValue(p.ChartData)
	if err != nil {
		return fmt.Errorf("encode chart data: %w", err)
	}
	predictions, err := jsonValue(p.FuturePredictions)
	if err != nil {
		return fmt.Errorf("encode predictions: %w", err)
	}
	p.UploadedAt = nowIfZero(p.UploadedAt)

	_, err = r.db.ExecContext(ctx, q,
		p.ID, p.UserID, stringOrDash(p.Filename), stringOrDash(p.MimeType), p.Size, p.FilePath, string(status),
		p.Summary, insights, charts, predictions, p.Forecast, suggestions, p.UploadedAt,
	)
	return err
}

func (r *ProjectRepository) Get(ctx context.Context, userID string, id domain.ProjectID) (*domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE user_id=$1 AND id=$2 LIMIT 1;`
	p, err := scanProject(r.db.QueryRowContext(ctx, q, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (r *ProjectRepository) List(ctx context.Context, userID string) ([]*domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE user_id=$1 ORDER BY uploaded_at DESC;`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

func (r *ProjectRepository) FindMany(ctx context.Context, userID string, ids []domain.ProjectID) ([]*domain.Project, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = string(id)
	}
	q := `SELECT ` + projectColumns + ` FROM projects WHERE user_id=$1 AND id = ANY($2);`
	rows, err := r.db.QueryContext(ctx, q, userID, pq.Array(keys))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

func (r *ProjectRepository) Delete(ctx context.Context, userID string, id domain.ProjectID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE user_id=$1 AND id=$2;`, userID, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*domain.Project, error) {
	var (
		p                                   domain.Project
		summary, forecast                   sql.NullString
		insights, charts, preds, suggestion []byte
	)
	if err := s.Scan(
		&p.ID, &p.UserID, &p.Filename, &p.MimeType, &p.Size, &p.FilePath, &p.Status,
		&summary, &insights, &charts, &preds, &forecast, &suggestion, &p.UploadedAt,
	); err != nil {
		return nil, err
	}
	p.Summary = summary.String
	p.Forecast = forecast.String
	p.ChartData = rawJSON(charts)
	p.FuturePredictions = rawJSON(preds)
	var err error
	if p.Insights, err = unmarshalStrings(insights); err != nil {
		return nil, fmt.Errorf("decode insights: %w", err)
	}
	if p.ImprovementSuggestions, err = unmarshalStrings(suggestion); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	return &p, nil
}

func collectProjects(rows *sql.Rows) ([]*domain.Project, error) {
	var out []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
