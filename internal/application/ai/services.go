package ai

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	domain "github.com/bryanwahyu/finsight/internal/domain/ai"
	"github.com/bryanwahyu/finsight/internal/domain/errs"
	"github.com/bryanwahyu/finsight/internal/domain/preferences"
)

const defaultMaxTokens = 4096

// Service is the provider dispatcher: a closed table from model identifier to
// a backend built once at startup.
type Service struct {
	providers map[preferences.ModelType]domain.Completer
	maxTokens int
}

func NewService(providers map[preferences.ModelType]domain.Completer, maxTokens int) *Service {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	table := make(map[preferences.ModelType]domain.Completer, len(providers))
	for k, v := range providers {
		table[k] = v
	}
	return &Service{providers: table, maxTokens: maxTokens}
}

// Dispatch sends prompt to the backend selected by prefs.ModelType. Unknown
// models fail before any network call; provider errors are not retried.
func (s *Service) Dispatch(ctx context.Context, prefs *preferences.Preferences, prompt string) (string, error) {
	if prefs == nil {
		return "", errs.UnsupportedModel("")
	}
	p, ok := s.providers[prefs.ModelType]
	if !ok || p == nil {
		return "", errs.UnsupportedModel(string(prefs.ModelType))
	}

	log := zerolog.Ctx(ctx).With().Str("model", string(prefs.ModelType)).Logger()
	start := time.Now()
	out, err := p.Complete(ctx, domain.Request{
		Prompt:      prompt,
		Temperature: prefs.Temperature,
		MaxTokens:   s.maxTokens,
		JSON:        true,
	})
	if err != nil {
		log.Error().Err(err).Dur("took", time.Since(start)).Msg("provider call failed")
		return "", errs.Provider(err, "Failed to generate content")
	}
	log.Debug().Dur("took", time.Since(start)).Int("chars", len(out)).Str("raw", out).Msg("provider response")
	return out, nil
}
