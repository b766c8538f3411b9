package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bryanwahyu/finsight/internal/config"
	"github.com/bryanwahyu/finsight/internal/domain/comparisons"
	"github.com/bryanwahyu/finsight/internal/domain/failures"
	"github.com/bryanwahyu/finsight/internal/domain/preferences"
	"github.com/bryanwahyu/finsight/internal/domain/projects"
	"github.com/bryanwahyu/finsight/internal/domain/users"
	"github.com/bryanwahyu/finsight/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/finsight/internal/infra/db/mysql"
	"github.com/bryanwahyu/finsight/internal/infra/db/postgres"
)

// stores groups the repositories of the configured driver.
type stores struct {
	db          *sql.DB // nil for memory
	users       users.Repository
	projects    projects.Repository
	preferences preferences.Repository
	comparisons comparisons.Repository
	failures    failures.Repository
}

func (s *stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, fmt.Errorf("mysql connect error: %w", err)
		}
		return &stores{
			db:          db,
			users:       mysqlp.NewUserRepository(db),
			projects:    mysqlp.NewProjectRepository(db),
			preferences: mysqlp.NewPreferencesRepository(db),
			comparisons: mysqlp.NewComparisonRepository(db),
			failures:    mysqlp.NewFailureRepository(db),
		}, nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("postgres connect error: %w", err)
		}
		return &stores{
			db:          db,
			users:       postgres.NewUserRepository(db),
			projects:    postgres.NewProjectRepository(db),
			preferences: postgres.NewPreferencesRepository(db),
			comparisons: postgres.NewComparisonRepository(db),
			failures:    postgres.NewFailureRepository(db),
		}, nil
	case "memory":
		return &stores{
			users:       memory.NewUserRepository(),
			projects:    memory.NewProjectRepository(),
			preferences: memory.NewPreferencesRepository(),
			comparisons: memory.NewComparisonRepository(),
			failures:    memory.NewFailureRepository(),
		}, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func migrate(ctx context.Context, cfg *config.Config, db *sql.DB) error {
	switch cfg.Database.Driver {
	case "mysql":
		return mysqlp.Migrate(ctx, db)
	case "postgres":
		return postgres.Migrate(ctx, db)
	}
	return nil
}
