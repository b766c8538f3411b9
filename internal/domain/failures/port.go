package failures

import (
	"context"
)

// Repository defines persistence for failure records
type Repository interface {
	Save(ctx context.Context, f *Failure) error
	ListByProject(ctx context.Context, userID string, projectID string, limit int) ([]*Failure, error)
}
