package projects

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("project not found")

// Repository port (interface untuk persistence). Every call is scoped by owner.
type Repository interface {
	Save(ctx context.Context, p *Project) error
	Get(ctx context.Context, userID string, id ProjectID) (*Project, error)
	List(ctx context.Context, userID string) ([]*Project, error)
	FindMany(ctx context.Context, userID string, ids []ProjectID) ([]*Project, error)
	Delete(ctx context.Context, userID string, id ProjectID) error
}

// FileStore keeps uploaded spreadsheets on local disk.
type FileStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (path string, size int64, err error)
	Remove(ctx context.Context, path string) error
}

// Mirror is an optional remote copy of uploads (MinIO).
type Mirror interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
	Remove(ctx context.Context, key string) error
}

// Extractor flattens a spreadsheet into prompt text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
	ExtractAll(ctx context.Context, paths []string) (string, error)
}
