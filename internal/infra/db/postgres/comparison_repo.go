package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/bryanwahyu/finsight/internal/domain/comparisons"
)

type ComparisonRepository struct {
	db *sql.DB
}

func NewComparisonRepository(db *sql.DB) *ComparisonRepository {
	return &ComparisonRepository{db: db}
}

// Save validates through Prepare before writing.
func (r *ComparisonRepository) Save(ctx context.Context, c *domain.ComparativeAnalysis) error {
	if err := c.Prepare(); err != nil {
		return err
	}
	const q = `
INSERT INTO comparative_analyses
  (id, created_by, uploaded_files, analysis_result, best_performing_company, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  analysis_result=EXCLUDED.analysis_result,
  best_performing_company=EXCLUDED.best_performing_company;
`
	files, err := json.Marshal(c.UploadedFiles)
	if err != nil {
		return fmt.Errorf("encode files: %w", err)
	}
	result, err := json.Marshal(c.AnalysisResult)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	c.CreatedAt = nowIfZero(c.CreatedAt)
	_, err = r.db.ExecContext(ctx, q, c.ID, c.CreatedBy, string(files), string(result), c.BestPerformingCompany, c.CreatedAt)
	return err
}

const comparisonColumns = `id, created_by, uploaded_files, analysis_result, best_performing_company, created_at`

func (r *ComparisonRepository) Get(ctx context.Context, owner string, id domain.ID) (*domain.ComparativeAnalysis, error) {
	q := `SELECT ` + comparisonColumns + ` FROM comparative_analyses WHERE created_by=$1 AND id=$2 LIMIT 1;`
	c, err := scanComparison(r.db.QueryRowContext(ctx, q, owner, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return c, err
}

// Paginate returns a page of analyses ordered by created_at desc
func (r *ComparisonRepository) Paginate(ctx context.Context, owner string, page, pageSize int) ([]*domain.ComparativeAnalysis, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comparative_analyses WHERE created_by=$1;`, owner).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + comparisonColumns + ` FROM comparative_analyses WHERE created_by=$1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3;`
	rows, err := r.db.QueryContext(ctx, q, owner, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*domain.ComparativeAnalysis
	for rows.Next() {
		c, err := scanComparison(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func scanComparison(s scanner) (*domain.ComparativeAnalysis, error) {
	var (
		c             domain.ComparativeAnalysis
		files, result []byte
	)
	if err := s.Scan(&c.ID, &c.CreatedBy, &files, &result, &c.BestPerformingCompany, &c.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(files, &c.UploadedFiles); err != nil {
		return nil, fmt.Errorf("decode files: %w", err)
	}
	if err := json.Unmarshal(result, &c.AnalysisResult); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &c, nil
}
