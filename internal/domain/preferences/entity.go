package preferences

import (
	"fmt"
	"strings"
	"time"
)

// ModelType enum. Each value is reserved for one provider family.
type ModelType string

const (
	ModelGemini ModelType = "gemini-2.0-flash"
	ModelGemma  ModelType = "gemma2-9b-it"
)

// Style enum
type Style string

const (
	StyleNormal      Style = "Normal"
	StyleConcise     Style = "Concise"
	StyleExplanatory Style = "Explanatory"
	StyleFormal      Style = "Formal"
)

const DefaultTemperature = 0.3

// Preferences controls how the LLM is called for one user.
type Preferences struct {
	UserID       string    `json:"userId"`
	ModelType    ModelType `json:"modelType"`
	Temperature  float64   `json:"temperature"`
	Profession   string    `json:"profession"`
	Style        Style     `json:"style"`
	CustomPrompt string    `json:"customPrompt,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Models lists every supported model identifier.
func Models() []ModelType { return []ModelType{ModelGemini, ModelGemma} }

func (m ModelType) Valid() bool {
	for _, v := range Models() {
		if v == m {
			return true
		}
	}
	return false
}

func (s Style) Valid() bool {
	switch s {
	case StyleNormal, StyleConcise, StyleExplanatory, StyleFormal:
		return true
	}
	return false
}

// ApplyDefaults fills the optional fields the form may leave empty.
func (p *Preferences) ApplyDefaults() {
	if p.ModelType == "" {
		p.ModelType = ModelGemma
	}
	if p.Style == "" {
		p.Style = StyleNormal
	}
	p.Profession = strings.TrimSpace(p.Profession)
	p.CustomPrompt = strings.TrimSpace(p.CustomPrompt)
}

// Validate checks the stored-record constraints.
func (p *Preferences) Validate() error {
	if !p.ModelType.Valid() {
		return fmt.Errorf("modelType must be one of %v", Models())
	}
	if p.Temperature < 0 || p.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0 and 1")
	}
	if p.Profession == "" {
		return fmt.Errorf("profession is required")
	}
	if !p.Style.Valid() {
		return fmt.Errorf("style must be one of Normal, Concise, Explanatory, Formal")
	}
	return nil
}
