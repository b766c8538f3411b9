package prompt

const compareTask = `Act as a highly experienced financial analyst.
Perform a comprehensive comparative analysis of the financial data from multiple companies below.

Analysis should include:
- Key financial metrics comparison (Revenue, Expenses, Profit, etc.)
- Trends and patterns across companies
- Recommendations for each company
- A final performance ranking, best first

Chart requirements:
- Generate comparative charts showing differences between companies
- All datasets in a chart must have the same number of data points, one per label
- Keep time periods and categories consistent across companies
- Focus on 3-5 key metrics
- Include only chart types the data supports
- Format all analysis text as plain strings, not objects`

const compareSchema = `Respond in valid JSON with this structure:
{
  "Analysis": {
    "KeyMetrics": "Key metrics comparison as a single string with line breaks",
    "Trends": "Trends analysis as a single string with line breaks",
    "Recommendations": "Recommendations as a single string with line breaks",
    "PerformanceRanking": ["CompanyX", "CompanyY"]
  },
  "ComparativeCharts": {
    "TimeSeriesComparison": {
      "labels": ["Jan", "Feb", "Mar"],
      "datasets": [
        {"label": "Company A Revenue", "data": [100, 200, 300]},
        {"label": "Company B Revenue", "data": [150, 250, 350]}
      ]
    },
    "MetricComparison": {
      "labels": ["Revenue", "Expenses", "Profit"],
      "datasets": [
        {"label": "Company A", "data": [5000, 3000, 2000]},
        {"label": "Company B", "data": [6000, 4000, 2000]}
      ]
    },
    "GrowthRateComparison": {
      "labels": ["YoY Growth", "QoQ Growth"],
      "datasets": [
        {"label": "Company A", "data": [0.15, 0.05]},
        {"label": "Company B", "data": [0.20, 0.08]}
      ]
    }
  }
}`

// Compare builds the multi-file comparison instruction. files is the
// labelled text produced by the extractor for every project.
func Compare(persona, files string) string {
	return join(
		persona,
		compareTask,
		numericRules,
		"Raw financial data from the spreadsheets:\n"+files,
		compareSchema,
	)
}
