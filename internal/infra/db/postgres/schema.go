package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
  id            TEXT PRIMARY KEY,
  username      TEXT NOT NULL,
  email         TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS projects (
  id                      TEXT PRIMARY KEY,
  user_id                 TEXT NOT NULL,
  filename                TEXT NOT NULL,
  mime_type               TEXT NOT NULL,
  size                    BIGINT NOT NULL,
  file_path               TEXT NOT NULL,
  status                  TEXT NOT NULL,
  summary                 TEXT,
  insights                JSONB,
  chart_data              JSONB,
  future_predictions      JSONB,
  forecast                TEXT,
  improvement_suggestions JSONB,
  uploaded_at             TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_user ON projects (user_id, uploaded_at DESC)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
  user_id       TEXT PRIMARY KEY,
  model_type    TEXT NOT NULL,
  temperature   DOUBLE PRECISION NOT NULL,
  profession    TEXT NOT NULL,
  style         TEXT NOT NULL,
  custom_prompt TEXT,
  created_at    TIMESTAMPTZ NOT NULL,
  updated_at    TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS comparative_analyses (
  id                      TEXT PRIMARY KEY,
  created_by              TEXT NOT NULL,
  uploaded_files          JSONB NOT NULL,
  analysis_result         JSONB NOT NULL,
  best_performing_company TEXT NOT NULL,
  created_at              TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_comparisons_owner ON comparative_analyses (created_by, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS analysis_failures (
  id           BIGSERIAL PRIMARY KEY,
  user_id      TEXT NOT NULL,
  project_ids  JSONB NOT NULL,
  operation    TEXT NOT NULL,
  phase        TEXT NOT NULL,
  message      TEXT NOT NULL,
  raw_response TEXT,
  created_at   TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_failures_user ON analysis_failures (user_id, created_at DESC)`,
}

// Migrate creates every table and index that does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
