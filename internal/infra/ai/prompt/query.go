package prompt

import "fmt"

const queryTask = `Act as a financial expert analyzing the given data.
Answer the user's question based only on the financial data provided and
provide the visualizations that best support the answer.`

const querySchema = `Respond in valid JSON with this structure:
{
  "Answer": "Detailed answer to the user's question",
  "RelevantData": ["Key data point 1", "Key data point 2"],
  "ChartData": {
    "TimeSeries": {
      "labels": ["Jan", "Feb", "Mar"],
      "datasets": [{"label": "Revenue", "data": [100, 200, 300]}]
    },
    "Categories": {
      "labels": ["Category 1", "Category 2"],
      "datasets": [{"label": "Amount", "data": [500, 300]}]
    },
    "Distribution": {
      "labels": ["Item 1", "Item 2", "Item 3"],
      "data": [30, 20, 15]
    }
  }
}

Choose the most appropriate chart types for the question:
- TimeSeries for trends over time
- Categories for comparing categories
- Distribution for share-of-total breakdowns
Omit every chart type that is not relevant to the question.`

// Query builds the question-answering instruction.
func Query(persona, data, question string) string {
	return join(
		persona,
		queryTask,
		numericRules,
		fmt.Sprintf("User Question: %q", question),
		"Here is the financial data:\n"+data,
		querySchema,
	)
}
