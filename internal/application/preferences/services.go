package preferences

import (
	"context"
	"errors"

	"github.com/bryanwahyu/finsight/internal/application"
	"github.com/bryanwahyu/finsight/internal/domain/errs"
	domain "github.com/bryanwahyu/finsight/internal/domain/preferences"
)

// Service implements use-cases untuk UserPreferences
type Service struct {
	Repo  domain.Repository
	Clock application.Clock
}

// SaveCommand is the preferences form. Temperature is a pointer so an
// omitted value can fall back to the default while 0 stays valid.
type SaveCommand struct {
	UserID       string   `json:"-"`
	ModelType    string   `json:"modelType"`
	Temperature  *float64 `json:"temperature"`
	Profession   string   `json:"profession"`
	Style        string   `json:"style"`
	CustomPrompt string   `json:"customPrompt"`
}

func (s *Service) Get(ctx context.Context, userID string) (*domain.Preferences, error) {
	p, err := s.Repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errs.NotFound("User preferences not found")
	}
	if err != nil {
		return nil, errs.Internal(err, "Failed to load preferences")
	}
	return p, nil
}

// Save validates the form and upserts the single record of the user.
func (s *Service) Save(ctx context.Context, cmd SaveCommand) (*domain.Preferences, error) {
	now := s.Clock.Now()
	p := &domain.Preferences{
		UserID:       cmd.UserID,
		ModelType:    domain.ModelType(cmd.ModelType),
		Temperature:  domain.DefaultTemperature,
		Profession:   cmd.Profession,
		Style:        domain.Style(cmd.Style),
		CustomPrompt: cmd.CustomPrompt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if cmd.Temperature != nil {
		p.Temperature = *cmd.Temperature
	}
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return nil, errs.Input("%s", err.Error())
	}

	if existing, err := s.Repo.Get(ctx, cmd.UserID); err == nil {
		p.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, errs.Internal(err, "Failed to load preferences")
	}
	if err := s.Repo.Upsert(ctx, p); err != nil {
		return nil, errs.Internal(err, "Failed to save preferences")
	}
	return p, nil
}
