package comparisons

import (
	"strings"
	"time"

	"github.com/bryanwahyu/finsight/internal/domain/analysis"
	"github.com/bryanwahyu/finsight/internal/domain/errs"
)

// ID tipe untuk ComparativeAnalysis
type ID string

// Result is the normalized comparison as it is persisted.
type Result struct {
	Analysis          analysis.Analysis          `json:"Analysis"`
	ComparativeCharts analysis.ComparativeCharts `json:"ComparativeCharts"`
}

// Aggregate Root: ComparativeAnalysis
type ComparativeAnalysis struct {
	ID                    ID        `json:"id"`
	CreatedBy             string    `json:"createdBy"`
	UploadedFiles         []string  `json:"uploadedFiles"`
	AnalysisResult        Result    `json:"analysisResult"`
	BestPerformingCompany string    `json:"bestPerformingCompany"`
	CreatedAt             time.Time `json:"createdAt"`
}

// New builds an analysis from a normalized comparison.
func New(id ID, owner string, files []string, res *analysis.CompareResult, now time.Time) *ComparativeAnalysis {
	return &ComparativeAnalysis{
		ID:            id,
		CreatedBy:     owner,
		UploadedFiles: files,
		AnalysisResult: Result{
			Analysis:          res.Analysis,
			ComparativeCharts: res.ComparativeCharts,
		},
		CreatedAt: now,
	}
}

func invalid(format string, args ...any) error {
	return errs.Validation("comparative analysis validation failed: "+format, args...)
}

// Prepare runs before every save: BestPerformingCompany is recomputed from
// the ranking whatever the caller set, then the whole record is validated.
func (c *ComparativeAnalysis) Prepare() error {
	rank := c.AnalysisResult.Analysis.PerformanceRanking
	if len(rank) > 0 {
		c.BestPerformingCompany = rank[0]
	}
	return c.Validate()
}

// Validate checks the stored shape.
func (c *ComparativeAnalysis) Validate() error {
	if strings.TrimSpace(c.CreatedBy) == "" {
		return invalid("createdBy is required")
	}
	if len(c.UploadedFiles) < 2 {
		return invalid("At least two files are required for comparison")
	}

	a := c.AnalysisResult.Analysis
	for _, f := range [][2]string{
		{"KeyMetrics", a.KeyMetrics},
		{"Trends", a.Trends},
		{"Recommendations", a.Recommendations},
	} {
		if strings.TrimSpace(f[1]) == "" {
			return invalid("%s must be a non-empty string", f[0])
		}
	}
	if len(a.PerformanceRanking) == 0 || strings.TrimSpace(a.PerformanceRanking[0]) == "" {
		return invalid("At least one company must be ranked")
	}

	var err error
	c.AnalysisResult.ComparativeCharts.Each(func(name string, ch *analysis.Chart) {
		if err != nil {
			return
		}
		err = validateChart(name, ch)
	})
	return err
}

func validateChart(name string, ch *analysis.Chart) error {
	if len(ch.Labels) == 0 {
		return invalid("%s must have labels", name)
	}
	if len(ch.Datasets) == 0 {
		return invalid("%s must have datasets", name)
	}
	for i, ds := range ch.Datasets {
		if strings.TrimSpace(ds.Label) == "" {
			return invalid("%s.datasets[%d] must have a label", name, i)
		}
		if len(ds.Data) == 0 {
			return invalid("%s.datasets[%d] must have numeric data", name, i)
		}
	}
	return nil
}
