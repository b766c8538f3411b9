package analysis

// Dataset is one labelled numeric series.
type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// Chart is the canonical chart shape. Most charts carry Datasets; the query
// Distribution chart carries a single Data series instead.
type Chart struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets,omitempty"`
	Data     []float64 `json:"data,omitempty"`
}

// AnalyzeResult is the normalized answer to a single-file analysis.
type AnalyzeResult struct {
	Summary                string           `json:"Summary"`
	KeyInsights            []string         `json:"KeyInsights"`
	ChartData              map[string]Chart `json:"ChartData"`
	Forecast               string           `json:"forecast,omitempty"`
	FuturePredictions      *Chart           `json:"FuturePredictions,omitempty"`
	ImprovementSuggestions []string         `json:"improvementsuggestions,omitempty"`
}

// QueryResult is the normalized answer to a question about one file.
type QueryResult struct {
	Answer       string           `json:"Answer"`
	RelevantData []string         `json:"RelevantData"`
	ChartData    map[string]Chart `json:"ChartData,omitempty"`
}

// Analysis holds the narrative part of a comparison.
type Analysis struct {
	KeyMetrics         string   `json:"KeyMetrics"`
	Trends             string   `json:"Trends"`
	Recommendations    string   `json:"Recommendations"`
	PerformanceRanking []string `json:"PerformanceRanking"`
}

// ComparativeCharts holds the three named comparison charts. Any of them may
// be absent when the data does not support it.
type ComparativeCharts struct {
	TimeSeriesComparison *Chart `json:"TimeSeriesComparison,omitempty"`
	MetricComparison     *Chart `json:"MetricComparison,omitempty"`
	GrowthRateComparison *Chart `json:"GrowthRateComparison,omitempty"`
}

// Each calls fn for every chart that is present, in a fixed order.
func (c ComparativeCharts) Each(fn func(name string, chart *Chart)) {
	if c.TimeSeriesComparison != nil {
		fn("TimeSeriesComparison", c.TimeSeriesComparison)
	}
	if c.MetricComparison != nil {
		fn("MetricComparison", c.MetricComparison)
	}
	if c.GrowthRateComparison != nil {
		fn("GrowthRateComparison", c.GrowthRateComparison)
	}
}

// CompareResult is the normalized answer to a multi-file comparison.
type CompareResult struct {
	Analysis          Analysis          `json:"Analysis"`
	ComparativeCharts ComparativeCharts `json:"ComparativeCharts"`
}
