package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/finsight/internal/domain/failures"
	"github.com/bryanwahyu/finsight/internal/domain/preferences"
)

// Dispatcher routes a prompt to the provider selected by the user's preferences.
type Dispatcher interface {
	Dispatch(ctx context.Context, prefs *preferences.Preferences, prompt string) (string, error)
}

// PromptBuilder renders the task instructions, persona prefix included.
type PromptBuilder interface {
	Analyze(prefs *preferences.Preferences, data string) string
	Query(prefs *preferences.Preferences, data, question string) string
	Compare(prefs *preferences.Preferences, files string) string
}

// Recorder receives pipeline outcomes (metrics). Nil-safe via Record.
type Recorder interface {
	Pipeline(op failures.Operation, ok bool)
}

// Record reports an outcome when r is set.
func Record(r Recorder, op failures.Operation, ok bool) {
	if r != nil {
		r.Pipeline(op, ok)
	}
}

// LogFailure persists a failed run. It never returns an error: a failure to
// record is only logged.
func LogFailure(ctx context.Context, repo failures.Repository, f *failures.Failure) {
	log := zerolog.Ctx(ctx)
	log.Warn().
		Str("operation", string(f.Operation)).
		Str("phase", f.Phase).
		Strs("project_ids", f.ProjectIDs).
		Str("error", f.Message).
		Msg("analysis pipeline failed")
	if repo == nil {
		return
	}
	if err := repo.Save(ctx, f); err != nil {
		log.Error().Err(err).Msg("failed to record analysis failure")
	}
}
