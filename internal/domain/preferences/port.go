package preferences

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("preferences not found")

// Repository port. At most one record per user.
type Repository interface {
	Get(ctx context.Context, userID string) (*Preferences, error)
	Upsert(ctx context.Context, p *Preferences) error
}
