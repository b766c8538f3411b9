package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
  id            VARCHAR(36)  NOT NULL PRIMARY KEY,
  username      VARCHAR(255) NOT NULL,
  email         VARCHAR(255) NOT NULL,
  password_hash VARCHAR(255) NOT NULL,
  created_at    DATETIME(6)  NOT NULL,
  UNIQUE KEY uq_users_email (email)
)`,
	`CREATE TABLE IF NOT EXISTS projects (
  id                      VARCHAR(36)   NOT NULL PRIMARY KEY,
  user_id                 VARCHAR(36)   NOT NULL,
  filename                VARCHAR(512)  NOT NULL,
  mime_type               VARCHAR(255)  NOT NULL,
  size                    BIGINT        NOT NULL,
  file_path               VARCHAR(1024) NOT NULL,
  status                  VARCHAR(16)   NOT NULL,
  summary                 TEXT          NULL,
  insights                JSON          NULL,
  chart_data              JSON          NULL,
  future_predictions      JSON          NULL,
  forecast                TEXT          NULL,
  improvement_suggestions JSON          NULL,
  uploaded_at             DATETIME(6)   NOT NULL,
  KEY idx_projects_user (user_id, uploaded_at)
)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
  user_id       VARCHAR(36)  NOT NULL PRIMARY KEY,
  model_type    VARCHAR(64)  NOT NULL,
  temperature   DOUBLE       NOT NULL,
  profession    VARCHAR(255) NOT NULL,
  style         VARCHAR(32)  NOT NULL,
  custom_prompt TEXT         NULL,
  created_at    DATETIME(6)  NOT NULL,
  updated_at    DATETIME(6)  NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS comparative_analyses (
  id                      VARCHAR(36)  NOT NULL PRIMARY KEY,
  created_by              VARCHAR(36)  NOT NULL,
  uploaded_files          JSON         NOT NULL,
  analysis_result         JSON         NOT NULL,
  best_performing_company VARCHAR(255) NOT NULL,
  created_at              DATETIME(6)  NOT NULL,
  KEY idx_comparisons_owner (created_by, created_at)
)`,
	`CREATE TABLE IF NOT EXISTS analysis_failures (
  id           BIGINT      NOT NULL AUTO_INCREMENT PRIMARY KEY,
  user_id      VARCHAR(36) NOT NULL,
  project_ids  JSON        NOT NULL,
  operation    VARCHAR(16) NOT NULL,
  phase        VARCHAR(16) NOT NULL,
  message      TEXT        NOT NULL,
  raw_response MEDIUMTEXT  NULL,
  created_at   DATETIME(6) NOT NULL,
  KEY idx_failures_user (user_id, created_at)
)`,
}

// Migrate creates every table that does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
