package prompt

const analyzeTask = `Act as a highly experienced financial analyst.
Your task is to analyze the provided financial data including transactions, audits, debits, credits, and other records.

Please perform the following:
- Summarize key financial insights
- Generate data for charts (e.g., revenue trends, expenses by category)
- Predict revenue and expenses for the next 6 periods
- Give actionable improvement suggestions, pointwise
- Return the key insights as an array of strings (not objects)`

const analyzeSchema = `Respond in valid JSON with exactly this structure:
{
  "Summary": "",
  "KeyInsights": [
    "Revenue: 2485.76 (Increasing) - revenue has grown every year.",
    "Profit/Loss: -2451.18 (Decreasing) - losses widened."
  ],
  "ChartData": {
    "ExpensesByCategory": {
      "labels": ["Jan", "Feb", "Mar", "Apr", "May", "Jun"],
      "datasets": [{"label": "Expenses", "data": [800, 900, 850, 950, 1000, 900]}]
    },
    "RevenueGrowth": {
      "labels": ["Q1", "Q2", "Q3"],
      "datasets": [{"label": "Growth", "data": [0.12, 0.08, 0.15]}]
    }
  },
  "forecast": "",
  "FuturePredictions": {
    "labels": ["Jul", "Aug", "Sep", "Oct", "Nov", "Dec"],
    "datasets": [
      {"label": "Predicted Revenue", "data": [2100, 2300, 2500, 2700, 2900, 3100]},
      {"label": "Predicted Expenses", "data": [1700, 1800, 1900, 2000, 2100, 2200]}
    ]
  },
  "improvementsuggestions": [
    "Reduce discretionary spending.",
    "Diversify revenue streams."
  ]
}`

// Analyze builds the single-file analysis instruction.
func Analyze(persona, data string) string {
	return join(
		persona,
		analyzeTask,
		numericRules,
		"Here is the raw financial data extracted from a spreadsheet:\n"+data,
		analyzeSchema,
	)
}
