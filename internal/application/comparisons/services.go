package comparisons

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/bryanwahyu/finsight/internal/application"
	"github.com/bryanwahyu/finsight/internal/domain/analysis"
	domain "github.com/bryanwahyu/finsight/internal/domain/comparisons"
	"github.com/bryanwahyu/finsight/internal/domain/errs"
	"github.com/bryanwahyu/finsight/internal/domain/failures"
	"github.com/bryanwahyu/finsight/internal/domain/preferences"
	"github.com/bryanwahyu/finsight/internal/domain/projects"
)

// Service implements use-cases untuk ComparativeAnalysis
type Service struct {
	Repo      domain.Repository
	Projects  projects.Repository
	Prefs     preferences.Repository
	Extractor projects.Extractor
	Prompts   application.PromptBuilder
	AI        application.Dispatcher
	Failures  failures.Repository
	Metrics   application.Recorder
	Clock     application.Clock
}

// Result adalah payload yang dikembalikan ke client setelah compare.
type Result struct {
	ID                    domain.ID                  `json:"id"`
	Analysis              analysis.Analysis          `json:"analysis"`
	Charts                analysis.ComparativeCharts `json:"charts"`
	BestPerformingCompany string                     `json:"bestPerformingCompany"`
}

// ParseIDs splits the comma separated projectIds query value.
func ParseIDs(csv string) []projects.ProjectID {
	var out []projects.ProjectID
	for _, part := range strings.Split(csv, ",") {
		if id := strings.TrimSpace(part); id != "" {
			out = append(out, projects.ProjectID(id))
		}
	}
	return out
}

// Compare runs the comparison pipeline over the caller's projects and stores
// the result. Nothing is saved unless every step succeeds.
func (s *Service) Compare(ctx context.Context, userID, csv string) (*Result, error) {
	if strings.TrimSpace(csv) == "" {
		return nil, errs.Input("projectIds query parameter is required")
	}
	ids := ParseIDs(csv)
	if len(ids) < 2 {
		return nil, errs.Input("At least two projects required for comparison")
	}

	found, err := s.Projects.FindMany(ctx, userID, ids)
	if err != nil {
		return nil, errs.Internal(err, "Failed to load projects")
	}
	if len(found) != len(ids) {
		return nil, errs.NotFound("One or more projects not found")
	}

	prefs, err := s.Prefs.Get(ctx, userID)
	if errors.Is(err, preferences.ErrNotFound) {
		return nil, errs.Input("User preferences not found")
	}
	if err != nil {
		return nil, errs.Internal(err, "Failed to load preferences")
	}

	byID := make(map[projects.ProjectID]*projects.Project, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	paths := make([]string, 0, len(ids))
	idStrings := make([]string, 0, len(ids))
	for _, id := range ids {
		p := byID[id]
		if strings.TrimSpace(p.FilePath) == "" {
			return nil, errs.Input("No file available for comparison")
		}
		paths = append(paths, p.FilePath)
		idStrings = append(idStrings, string(id))
	}

	fail := func(phase string, err error, raw string) error {
		application.Record(s.Metrics, failures.OpCompare, false)
		application.LogFailure(ctx, s.Failures, &failures.Failure{
			UserID:      userID,
			ProjectIDs:  idStrings,
			Operation:   failures.OpCompare,
			Phase:       phase,
			Message:     errs.MessageOf(err),
			RawResponse: raw,
			CreatedAt:   s.Clock.Now(),
		})
		return err
	}

	text, err := s.Extractor.ExtractAll(ctx, paths)
	if err != nil {
		return nil, fail("extract", err, "")
	}
	raw, err := s.AI.Dispatch(ctx, prefs, s.Prompts.Compare(prefs, text))
	if err != nil {
		return nil, fail("dispatch", err, "")
	}
	res, err := analysis.ParseCompare(raw)
	if err != nil {
		return nil, fail("normalize", err, raw)
	}

	ca := domain.New(domain.ID(uuid.NewString()), userID, paths, res, s.Clock.Now())
	if err := s.Repo.Save(ctx, ca); err != nil {
		if errs.KindOf(err) != errs.KindValidation {
			err = errs.Internal(err, "Failed to save comparative analysis")
		}
		return nil, fail("save", err, raw)
	}
	application.Record(s.Metrics, failures.OpCompare, true)

	return &Result{
		ID:                    ca.ID,
		Analysis:              ca.AnalysisResult.Analysis,
		Charts:                ca.AnalysisResult.ComparativeCharts,
		BestPerformingCompany: ca.BestPerformingCompany,
	}, nil
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// History lists the caller's past comparisons, newest first.
func (s *Service) History(ctx context.Context, userID string, page, pageSize int) (*domain.PaginatedResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	data, total, err := s.Repo.Paginate(ctx, userID, page, pageSize)
	if err != nil {
		return nil, errs.Internal(err, "Failed to list comparisons")
	}
	return domain.NewPage(data, page, pageSize, total), nil
}

func (s *Service) Get(ctx context.Context, userID string, id domain.ID) (*domain.ComparativeAnalysis, error) {
	ca, err := s.Repo.Get(ctx, userID, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errs.NotFound("Comparative analysis not found")
	}
	if err != nil {
		return nil, errs.Internal(err, "Failed to load comparative analysis")
	}
	return ca, nil
}
