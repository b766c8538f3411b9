package projects

import (
	"encoding/json"
	"time"
)

// ProjectID tipe untuk Project
type ProjectID string

// Status enum
type Status string

const (
	StatusUploaded Status = "uploaded"
	StatusAnalyzed Status = "analyzed"
	StatusPending  Status = "Pending"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUploaded, StatusAnalyzed, StatusPending:
		return true
	}
	return false
}

// Project is one uploaded spreadsheet and its derived analysis.
// ChartData and FuturePredictions keep whatever chart shape the provider
// produced after normalization; the store does not interpret them.
type Project struct {
	ID                     ProjectID       `json:"id"`
	UserID                 string          `json:"userId"`
	Filename               string          `json:"filename"`
	MimeType               string          `json:"mimeType"`
	Size                   int64           `json:"size"`
	FilePath               string          `json:"filePath"`
	Status                 Status          `json:"status"`
	Summary                string          `json:"summary,omitempty"`
	Insights               []string        `json:"insights"`
	ChartData              json.RawMessage `json:"chartData,omitempty"`
	FuturePredictions      json.RawMessage `json:"futurePredictions,omitempty"`
	Forecast               string          `json:"forecast,omitempty"`
	ImprovementSuggestions []string        `json:"improvementSuggestions,omitempty"`
	UploadedAt             time.Time       `json:"uploadedAt"`
}

// HasAnalysis reports whether the chart view has something to show.
func (p *Project) HasAnalysis() bool {
	return p.Summary != "" && len(p.ChartData) > 0 && string(p.ChartData) != "null"
}

// HasPredictions reports whether the forecast view has something to show.
func (p *Project) HasPredictions() bool {
	return len(p.FuturePredictions) > 0 && string(p.FuturePredictions) != "null"
}
