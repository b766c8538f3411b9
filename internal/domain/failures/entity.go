package failures

import "time"

// Operation enum
type Operation string

const (
	OpAnalyze Operation = "analyze"
	OpQuery   Operation = "query"
	OpCompare Operation = "compare"
)

// Failure is a persisted record of a pipeline run that did not complete.
type Failure struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"userId"`
	ProjectIDs  []string  `json:"projectIds"`
	Operation   Operation `json:"operation"`
	Phase       string    `json:"phase,omitempty"` // extract | dispatch | normalize | save
	Message     string    `json:"message"`
	RawResponse string    `json:"rawResponse,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MaxRawResponse caps how much of a completion is kept.
const MaxRawResponse = 4000

// Truncate shortens a raw completion to MaxRawResponse bytes.
func Truncate(s string) string {
	if len(s) <= MaxRawResponse {
		return s
	}
	return s[:MaxRawResponse]
}
