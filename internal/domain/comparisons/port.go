package comparisons

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("comparative analysis not found")

// Repository port (interface untuk persistence). Save must call Prepare.
type Repository interface {
	Save(ctx context.Context, c *ComparativeAnalysis) error
	Get(ctx context.Context, owner string, id ID) (*ComparativeAnalysis, error)
	Paginate(ctx context.Context, owner string, page, pageSize int) ([]*ComparativeAnalysis, int64, error)
}
