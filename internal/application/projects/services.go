package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/finsight/internal/application"
	"github.com/bryanwahyu/finsight/internal/domain/analysis"
	"github.com/bryanwahyu/finsight/internal/domain/errs"
	"github.com/bryanwahyu/finsight/internal/domain/failures"
	"github.com/bryanwahyu/finsight/internal/domain/preferences"
	domain "github.com/bryanwahyu/finsight/internal/domain/projects"
)

// Service implements use-cases untuk Project.
// Mirror, Failures dan Metrics boleh nil.
type Service struct {
	Repo      domain.Repository
	Prefs     preferences.Repository
	Files     domain.FileStore
	Mirror    domain.Mirror
	Extractor domain.Extractor
	Prompts   application.PromptBuilder
	AI        application.Dispatcher
	Failures  failures.Repository
	Metrics   application.Recorder
	Clock     application.Clock

	locks application.KeyedMutex
}

//
// ==== USE CASES ====
//

// UploadCommand carries one uploaded spreadsheet.
type UploadCommand struct {
	UserID   string
	Filename string
	MimeType string
	Body     io.Reader
}

// Upload stores the file and creates the project in status uploaded.
func (s *Service) Upload(ctx context.Context, cmd UploadCommand) (*domain.Project, error) {
	path, size, err := s.Files.Save(ctx, cmd.Filename, cmd.Body)
	if err != nil {
		return nil, errs.Internal(err, "Failed to store file")
	}
	p := &domain.Project{
		ID:         domain.ProjectID(uuid.NewString()),
		UserID:     cmd.UserID,
		Filename:   cmd.Filename,
		MimeType:   cmd.MimeType,
		Size:       size,
		FilePath:   path,
		Status:     domain.StatusUploaded,
		Insights:   []string{},
		UploadedAt: s.Clock.Now(),
	}
	if err := s.Repo.Save(ctx, p); err != nil {
		_ = s.Files.Remove(ctx, path)
		return nil, errs.Internal(err, "Failed to save project")
	}

	if s.Mirror != nil {
		if url, err := s.Mirror.Upload(ctx, path, mirrorKey(p)); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("project_id", string(p.ID)).Msg("mirror upload failed")
		} else {
			zerolog.Ctx(ctx).Debug().Str("url", url).Msg("upload mirrored")
		}
	}
	return p, nil
}

func mirrorKey(p *domain.Project) string {
	return fmt.Sprintf("%s/%s", p.UserID, filepath.Base(p.FilePath))
}

func (s *Service) List(ctx context.Context, userID string) ([]*domain.Project, error) {
	out, err := s.Repo.List(ctx, userID)
	if err != nil {
		return nil, errs.Internal(err, "Failed to list projects")
	}
	if out == nil {
		out = []*domain.Project{}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, userID string, id domain.ProjectID) (*domain.Project, error) {
	p, err := s.Repo.Get(ctx, userID, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errs.NotFound("Project not found")
	}
	if err != nil {
		return nil, errs.Internal(err, "Failed to load project")
	}
	return p, nil
}

// Delete removes the record, then the stored file and its mirror (best effort).
func (s *Service) Delete(ctx context.Context, userID string, id domain.ProjectID) error {
	p, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errs.NotFound("Project not found")
		}
		return errs.Internal(err, "Failed to delete project")
	}
	log := zerolog.Ctx(ctx)
	if p.FilePath != "" {
		if err := s.Files.Remove(ctx, p.FilePath); err != nil {
			log.Warn().Err(err).Str("path", p.FilePath).Msg("failed to remove upload")
		}
		if s.Mirror != nil {
			if err := s.Mirror.Remove(ctx, mirrorKey(p)); err != nil {
				log.Warn().Err(err).Msg("failed to remove mirrored upload")
			}
		}
	}
	return nil
}

// UpdateStatus sets the lifecycle status directly.
func (s *Service) UpdateStatus(ctx context.Context, userID string, id domain.ProjectID, status domain.Status) (*domain.Project, error) {
	if !status.Valid() {
		return nil, errs.Input("Invalid status")
	}
	p, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	p.Status = status
	if err := s.Repo.Save(ctx, p); err != nil {
		return nil, errs.Internal(err, "Failed to save project")
	}
	return p, nil
}

// UpdateDetails overwrites summary and insights edited by the user.
func (s *Service) UpdateDetails(ctx context.Context, userID string, id domain.ProjectID, summary string, insights []string) (*domain.Project, error) {
	p, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	p.Summary = summary
	if insights != nil {
		p.Insights = insights
	}
	if err := s.Repo.Save(ctx, p); err != nil {
		return nil, errs.Internal(err, "Failed to save project")
	}
	return p, nil
}

// prepare loads a project that has a file plus the caller's preferences.
func (s *Service) prepare(ctx context.Context, userID string, id domain.ProjectID, noFile string) (*domain.Project, *preferences.Preferences, error) {
	p, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(p.FilePath) == "" {
		return nil, nil, errs.Input("%s", noFile)
	}
	prefs, err := s.Prefs.Get(ctx, userID)
	if errors.Is(err, preferences.ErrNotFound) {
		return nil, nil, errs.Input("User preferences not found. Please set your preferences first.")
	}
	if err != nil {
		return nil, nil, errs.Internal(err, "Failed to load preferences")
	}
	return p, prefs, nil
}

// Analyze runs extract → prompt → dispatch → normalize and only then patches
// the project. On any failure the stored project is left untouched.
func (s *Service) Analyze(ctx context.Context, userID string, id domain.ProjectID) (*domain.Project, error) {
	unlock := s.locks.Lock(string(id))
	defer unlock()

	p, prefs, err := s.prepare(ctx, userID, id, "No file available for analysis")
	if err != nil {
		return nil, err
	}

	fail := func(phase string, err error, raw string) error {
		application.Record(s.Metrics, failures.OpAnalyze, false)
		application.LogFailure(ctx, s.Failures, &failures.Failure{
			UserID:      userID,
			ProjectIDs:  []string{string(id)},
			Operation:   failures.OpAnalyze,
			Phase:       phase,
			Message:     errs.MessageOf(err),
			RawResponse: raw,
			CreatedAt:   s.Clock.Now(),
		})
		return err
	}

	text, err := s.Extractor.Extract(ctx, p.FilePath)
	if err != nil {
		return nil, fail("extract", err, "")
	}
	raw, err := s.AI.Dispatch(ctx, prefs, s.Prompts.Analyze(prefs, text))
	if err != nil {
		return nil, fail("dispatch", err, "")
	}
	res, err := analysis.ParseAnalyze(raw)
	if err != nil {
		return nil, fail("normalize", err, raw)
	}

	charts, err := json.Marshal(res.ChartData)
	if err != nil {
		return nil, fail("normalize", errs.Internal(err, "Failed to encode chart data"), raw)
	}
	p.Summary = res.Summary
	p.Insights = res.KeyInsights
	p.ChartData = charts
	p.FuturePredictions = nil
	if res.FuturePredictions != nil {
		if p.FuturePredictions, err = json.Marshal(res.FuturePredictions); err != nil {
			return nil, fail("normalize", errs.Internal(err, "Failed to encode predictions"), raw)
		}
	}
	p.Forecast = res.Forecast
	p.ImprovementSuggestions = res.ImprovementSuggestions
	p.Status = domain.StatusAnalyzed

	if err := s.Repo.Save(ctx, p); err != nil {
		return nil, fail("save", errs.Internal(err, "Failed to save analysis"), "")
	}
	application.Record(s.Metrics, failures.OpAnalyze, true)
	return p, nil
}

// Query answers a question about one project's file without touching it.
func (s *Service) Query(ctx context.Context, userID string, id domain.ProjectID, question string) (*analysis.QueryResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errs.Input("Query parameter is required")
	}
	p, prefs, err := s.prepare(ctx, userID, id, "No file available for search")
	if err != nil {
		return nil, err
	}

	fail := func(phase string, err error, raw string) error {
		application.Record(s.Metrics, failures.OpQuery, false)
		application.LogFailure(ctx, s.Failures, &failures.Failure{
			UserID:      userID,
			ProjectIDs:  []string{string(id)},
			Operation:   failures.OpQuery,
			Phase:       phase,
			Message:     errs.MessageOf(err),
			RawResponse: raw,
			CreatedAt:   s.Clock.Now(),
		})
		return err
	}

	text, err := s.Extractor.Extract(ctx, p.FilePath)
	if err != nil {
		return nil, fail("extract", err, "")
	}
	raw, err := s.AI.Dispatch(ctx, prefs, s.Prompts.Query(prefs, text, question))
	if err != nil {
		return nil, fail("dispatch", err, "")
	}
	res, err := analysis.ParseQuery(raw)
	if err != nil {
		return nil, fail("normalize", err, raw)
	}
	application.Record(s.Metrics, failures.OpQuery, true)
	return res, nil
}

// ChartView is what the dashboard renders for an analyzed project.
type ChartView struct {
	Summary   string          `json:"summary"`
	Insights  []string        `json:"insights"`
	ChartData json.RawMessage `json:"chartData"`
}

func (s *Service) Charts(ctx context.Context, userID string, id domain.ProjectID) (*ChartView, error) {
	p, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !p.HasAnalysis() {
		return nil, errs.Input("Analysis not completed or chart data not available")
	}
	insights := p.Insights
	if insights == nil {
		insights = []string{}
	}
	return &ChartView{Summary: p.Summary, Insights: insights, ChartData: p.ChartData}, nil
}

// PredictionView carries the forecast chart.
type PredictionView struct {
	FuturePredictions json.RawMessage `json:"futurePredictions"`
	Forecast          string          `json:"forecast,omitempty"`
}

func (s *Service) Predictions(ctx context.Context, userID string, id domain.ProjectID) (*PredictionView, error) {
	p, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !p.HasPredictions() {
		return nil, errs.Input("Predictions not available yet")
	}
	return &PredictionView{FuturePredictions: p.FuturePredictions, Forecast: p.Forecast}, nil
}

// ListFailures lists the latest failed runs that involved a project.
func (s *Service) ListFailures(ctx context.Context, userID string, id domain.ProjectID, limit int) ([]*failures.Failure, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	if s.Failures == nil {
		return []*failures.Failure{}, nil
	}
	out, err := s.Failures.ListByProject(ctx, userID, string(id), limit)
	if err != nil {
		return nil, errs.Internal(err, "Failed to list failures")
	}
	if out == nil {
		out = []*failures.Failure{}
	}
	return out, nil
}
