package comparisons

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/finsight/internal/domain/analysis"
	"github.com/bryanwahyu/finsight/internal/domain/errs"
)

func sample() *ComparativeAnalysis {
	return New("c1", "u1", []string{"a.xlsx", "b.xlsx"}, &analysis.CompareResult{
		Analysis: analysis.Analysis{
			KeyMetrics:         "Revenue: A 10, B 8",
			Trends:             "A up",
			Recommendations:    "Keep going",
			PerformanceRanking: []string{"A", "B"},
		},
		ComparativeCharts: analysis.ComparativeCharts{
			MetricComparison: &analysis.Chart{
				Labels:   []string{"Revenue"},
				Datasets: []analysis.Dataset{{Label: "A", Data: []float64{10}}},
			},
		},
	}, time.Unix(0, 0))
}

func TestPrepare_RecomputesBestPerformer(t *testing.T) {
	c := sample()
	c.BestPerformingCompany = "B"

	require.NoError(t, c.Prepare())
	assert.Equal(t, "A", c.BestPerformingCompany)
}

func TestPrepare_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *ComparativeAnalysis)
		want   string
	}{
		{"one file", func(c *ComparativeAnalysis) { c.UploadedFiles = c.UploadedFiles[:1] }, "At least two files"},
		{"empty trends", func(c *ComparativeAnalysis) { c.AnalysisResult.Analysis.Trends = "  " }, "Trends must be a non-empty string"},
		{"empty ranking", func(c *ComparativeAnalysis) { c.AnalysisResult.Analysis.PerformanceRanking = nil }, "At least one company must be ranked"},
		{"no labels", func(c *ComparativeAnalysis) { c.AnalysisResult.ComparativeCharts.MetricComparison.Labels = nil }, "MetricComparison must have labels"},
		{"empty data", func(c *ComparativeAnalysis) {
			c.AnalysisResult.ComparativeCharts.MetricComparison.Datasets[0].Data = nil
		}, "MetricComparison.datasets[0] must have numeric data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sample()
			tt.mutate(c)
			err := c.Prepare()
			require.Error(t, err)
			assert.Equal(t, errs.KindValidation, errs.KindOf(err))
			assert.Contains(t, errs.MessageOf(err), "validation failed")
			assert.Contains(t, errs.MessageOf(err), tt.want)
		})
	}
}

func TestNewPage(t *testing.T) {
	p := NewPage(nil, 2, 10, 21)
	assert.Equal(t, 3, p.TotalPages)
	assert.NotNil(t, p.Data)
}
