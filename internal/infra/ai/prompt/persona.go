package prompt

import (
	"strings"

	"github.com/bryanwahyu/finsight/internal/domain/preferences"
)

var styleHints = map[preferences.Style]string{
	preferences.StyleNormal:      "Use a clear, balanced tone.",
	preferences.StyleConcise:     "Be brief. Prefer short sentences and only the most important figures.",
	preferences.StyleExplanatory: "Explain the reasoning behind each figure in plain language.",
	preferences.StyleFormal:      "Use a formal, report-style register suitable for executives.",
}

// Persona renders the user-controlled prefix placed before every task
// instruction. A nil preferences value yields an empty prefix.
func Persona(p *preferences.Preferences) string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	if prof := strings.TrimSpace(p.Profession); prof != "" {
		b.WriteString("The reader is a " + prof + ". Adjust terminology and depth for them.\n")
	}
	if hint, ok := styleHints[p.Style]; ok {
		b.WriteString("Style: " + string(p.Style) + ". " + hint + "\n")
	}
	if custom := strings.TrimSpace(p.CustomPrompt); custom != "" {
		b.WriteString(custom + "\n")
	}
	return b.String()
}

const numericRules = `**Important:**
- All numeric values must be plain numbers without any symbols (%, $, etc.)
- Growth rates must be expressed as decimal numbers (e.g., 0.253 for 25.3%)
- Respond with one JSON object only, no markdown and no commentary`

func join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}

// Builder renders prompts with the user's persona prefix.
type Builder struct{}

func (Builder) Analyze(p *preferences.Preferences, data string) string {
	return Analyze(Persona(p), data)
}

func (Builder) Query(p *preferences.Preferences, data, question string) string {
	return Query(Persona(p), data, question)
}

func (Builder) Compare(p *preferences.Preferences, files string) string {
	return Compare(Persona(p), files)
}
