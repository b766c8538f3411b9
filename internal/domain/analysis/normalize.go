// Package analysis turns raw LLM completions into the typed results the rest
// of the service works with. Nothing outside this package sees the dynamic
// shape of a completion.
package analysis

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/bryanwahyu/finsight/internal/domain/errs"
)

func invalid(format string, args ...any) error {
	return errs.Validation("response validation failed: "+format, args...)
}

// ParseAnalyze normalizes a single-file analysis completion.
func ParseAnalyze(raw string) (*AnalyzeResult, error) {
	obj, err := parseRoot(raw, "Summary", "KeyInsights", "ChartData")
	if err != nil {
		return nil, err
	}

	out := &AnalyzeResult{}
	if out.Summary, err = narrative(obj.get("Summary")); err != nil {
		return nil, invalid("Summary: %v", err)
	}
	if out.KeyInsights, err = stringList(obj.get("KeyInsights"), "KeyInsights"); err != nil {
		return nil, err
	}
	if out.ChartData, err = chartSet(obj.get("ChartData"), "ChartData", false); err != nil {
		return nil, err
	}
	if len(out.ChartData) == 0 {
		return nil, invalid("ChartData is missing")
	}

	if v := lookup(obj, "FuturePredictions", "futurePredictions"); !blank(v) {
		if out.FuturePredictions, err = parseChart("FuturePredictions", v, false, false); err != nil {
			return nil, err
		}
	}
	if v := lookup(obj, "forecast", "Forecast"); !blank(v) {
		if out.Forecast, err = narrative(v); err != nil {
			return nil, invalid("forecast: %v", err)
		}
	}
	if v := lookup(obj, "improvementsuggestions", "ImprovementSuggestions", "improvementSuggestions"); !blank(v) {
		if out.ImprovementSuggestions, err = stringList(v, "improvementsuggestions"); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ParseQuery normalizes the answer to a natural-language question. Only the
// Answer is required; charts the model chose to omit stay absent.
func ParseQuery(raw string) (*QueryResult, error) {
	obj, err := parseRoot(raw, "Answer")
	if err != nil {
		return nil, err
	}

	out := &QueryResult{RelevantData: []string{}}
	if out.Answer, err = narrative(obj.get("Answer")); err != nil {
		return nil, invalid("Answer: %v", err)
	}
	if v := obj.get("RelevantData"); !blank(v) {
		if out.RelevantData, err = stringList(v, "RelevantData"); err != nil {
			return nil, err
		}
	}
	if v := obj.get("ChartData"); !blank(v) {
		if out.ChartData, err = chartSet(v, "ChartData", false); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ParseCompare normalizes a multi-file comparison completion.
func ParseCompare(raw string) (*CompareResult, error) {
	root, err := parseRoot(raw, "Analysis")
	if err != nil {
		return nil, err
	}
	// an empty charts object is allowed; the key itself is not optional
	if absent(root.get("ComparativeCharts")) {
		return nil, invalid("ComparativeCharts is missing")
	}
	an, err := decodeObject(root.get("Analysis"))
	if err != nil {
		return nil, invalid("Analysis must be an object")
	}
	for _, f := range []string{"KeyMetrics", "Trends", "Recommendations", "PerformanceRanking"} {
		if blank(an.get(f)) {
			return nil, invalid("Analysis.%s is missing", f)
		}
	}

	out := &CompareResult{}
	a := &out.Analysis
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"KeyMetrics", &a.KeyMetrics},
		{"Trends", &a.Trends},
		{"Recommendations", &a.Recommendations},
	} {
		if *f.dst, err = narrative(an.get(f.name)); err != nil {
			return nil, invalid("Analysis.%s: %v", f.name, err)
		}
	}

	rank := an.get("PerformanceRanking")
	if kindOf(rank) != '[' {
		return nil, invalid("PerformanceRanking must be an array")
	}
	if a.PerformanceRanking, err = stringList(rank, "PerformanceRanking"); err != nil {
		return nil, err
	}

	charts, err := decodeObject(root.get("ComparativeCharts"))
	if err != nil {
		return nil, invalid("ComparativeCharts must be an object")
	}
	cc := &out.ComparativeCharts
	for _, c := range []struct {
		name string
		dst  **Chart
	}{
		{"TimeSeriesComparison", &cc.TimeSeriesComparison},
		{"MetricComparison", &cc.MetricComparison},
		{"GrowthRateComparison", &cc.GrowthRateComparison},
	} {
		v := charts.get(c.name)
		if blank(v) {
			continue
		}
		if *c.dst, err = parseChart(c.name, v, isGrowth(c.name), true); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func parseRoot(raw string, required ...string) (*object, error) {
	body, err := ExtractObject(raw)
	if err != nil {
		return nil, err
	}
	obj, err := decodeObject(body)
	if err != nil {
		return nil, errs.Malformed(err)
	}
	for _, f := range required {
		if blank(obj.get(f)) {
			return nil, invalid("%s is missing", f)
		}
	}
	return obj, nil
}

func lookup(obj *object, keys ...string) json.RawMessage {
	for _, k := range keys {
		if v, ok := obj.vals[k]; ok {
			return v
		}
	}
	return nil
}

func kindOf(raw json.RawMessage) byte {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

// absent reports a value that is missing or null.
func absent(raw json.RawMessage) bool {
	b := bytes.TrimSpace(raw)
	return len(b) == 0 || string(b) == "null"
}

// blank reports a value that counts as absent: missing, null, a blank
// string, or an empty array or object.
func blank(raw json.RawMessage) bool {
	b := bytes.TrimSpace(raw)
	switch {
	case len(b) == 0, string(b) == "null":
		return true
	case b[0] == '"':
		var s string
		_ = json.Unmarshal(b, &s)
		return strings.TrimSpace(s) == ""
	case b[0] == '[' || b[0] == '{':
		return len(bytes.TrimSpace(b[1:len(b)-1])) == 0
	}
	return false
}

// narrative renders a text field. Objects become one "key: value" line per
// entry in their original order, arrays one line per element.
func narrative(raw json.RawMessage) (string, error) {
	switch kindOf(raw) {
	case '{':
		obj, err := decodeObject(raw)
		if err != nil {
			return "", err
		}
		lines := make([]string, 0, len(obj.keys))
		for _, k := range obj.keys {
			v, err := inline(obj.get(k))
			if err != nil {
				return "", err
			}
			lines = append(lines, k+": "+v)
		}
		return strings.Join(lines, "\n"), nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return "", err
		}
		lines := make([]string, 0, len(items))
		for _, it := range items {
			v, err := inline(it)
			if err != nil {
				return "", err
			}
			lines = append(lines, v)
		}
		return strings.Join(lines, "\n"), nil
	default:
		return inline(raw)
	}
}

// inline renders any value on a single line: nested objects as comma-joined
// "key: value" pairs, arrays comma-joined.
func inline(raw json.RawMessage) (string, error) {
	switch kindOf(raw) {
	case '"':
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case '{':
		obj, err := decodeObject(raw)
		if err != nil {
			return "", err
		}
		parts := make([]string, 0, len(obj.keys))
		for _, k := range obj.keys {
			v, err := inline(obj.get(k))
			if err != nil {
				return "", err
			}
			parts = append(parts, k+": "+v)
		}
		return strings.Join(parts, ", "), nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return "", err
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			v, err := inline(it)
			if err != nil {
				return "", err
			}
			parts = append(parts, v)
		}
		return strings.Join(parts, ", "), nil
	default:
		return string(bytes.TrimSpace(raw)), nil
	}
}

// stringList coerces a list field into []string. A single string is split
// on newlines; an object yields one "key: value" entry per key.
func stringList(raw json.RawMessage, field string) ([]string, error) {
	switch kindOf(raw) {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, invalid("%s: %v", field, err)
		}
		out := make([]string, 0, len(items))
		for i, it := range items {
			if kindOf(it) == 'n' {
				continue
			}
			s, err := inline(it)
			if err != nil {
				return nil, invalid("%s[%d]: %v", field, i, err)
			}
			out = append(out, strings.TrimSpace(s))
		}
		return out, nil
	case '{', '"':
		s, err := narrative(raw)
		if err != nil {
			return nil, invalid("%s: %v", field, err)
		}
		var out []string
		for _, line := range strings.Split(s, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
		return out, nil
	default:
		return nil, invalid("%s must be an array of strings", field)
	}
}

func chartSet(raw json.RawMessage, field string, needDatasets bool) (map[string]Chart, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, invalid("%s must be an object", field)
	}
	out := make(map[string]Chart, len(obj.keys))
	for _, name := range obj.keys {
		v := obj.get(name)
		if blank(v) {
			continue
		}
		c, err := parseChart(name, v, isGrowth(name), needDatasets)
		if err != nil {
			return nil, err
		}
		out[name] = *c
	}
	return out, nil
}

func isGrowth(name string) bool {
	return strings.Contains(strings.ToLower(name), "growth")
}

func parseChart(name string, raw json.RawMessage, percent, needDatasets bool) (*Chart, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, invalid("%s must be an object", name)
	}

	labels := obj.get("labels")
	if kindOf(labels) != '[' {
		return nil, invalid("%s.labels must be an array", name)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(labels, &items); err != nil {
		return nil, invalid("%s.labels: %v", name, err)
	}
	c := &Chart{Labels: make([]string, 0, len(items))}
	for _, it := range items {
		s, err := inline(it)
		if err != nil {
			return nil, invalid("%s.labels: %v", name, err)
		}
		c.Labels = append(c.Labels, s)
	}

	if ds := obj.get("datasets"); !blank(ds) {
		if kindOf(ds) != '[' {
			return nil, invalid("%s.datasets must be an array", name)
		}
		var sets []json.RawMessage
		if err := json.Unmarshal(ds, &sets); err != nil {
			return nil, invalid("%s.datasets: %v", name, err)
		}
		for i, s := range sets {
			d, err := parseDataset(name, i, s, percent)
			if err != nil {
				return nil, err
			}
			c.Datasets = append(c.Datasets, d)
		}
	} else if needDatasets {
		return nil, invalid("%s.datasets must be an array", name)
	}

	if data := obj.get("data"); !blank(data) {
		if c.Data, err = numbers(data, percent, func() string { return name + ".data" }); err != nil {
			return nil, err
		}
	}
	if len(c.Datasets) == 0 && c.Data == nil {
		return nil, invalid("%s has no datasets", name)
	}
	return c, nil
}

func parseDataset(chart string, i int, raw json.RawMessage, percent bool) (Dataset, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return Dataset{}, invalid("%s.datasets[%d] must be an object", chart, i)
	}
	var d Dataset
	if d.Label, err = inline(obj.get("label")); err != nil || blank(obj.get("label")) {
		return Dataset{}, invalid("%s.datasets[%d].label is missing", chart, i)
	}
	data := obj.get("data")
	if kindOf(data) != '[' {
		return Dataset{}, invalid("%s.datasets[%d].data must be an array", chart, i)
	}
	d.Data, err = numbers(data, percent, func() string {
		return chart + ".datasets[" + strconv.Itoa(i) + "](" + d.Label + ").data"
	})
	return d, err
}

// numbers coerces every element of a JSON array to float64. Numeric strings
// are accepted; a trailing '%' is stripped only when percent is set.
func numbers(raw json.RawMessage, percent bool, where func() string) ([]float64, error) {
	var items []json.RawMessage
	if kindOf(raw) != '[' || json.Unmarshal(raw, &items) != nil {
		return nil, invalid("%s must be an array", where())
	}
	out := make([]float64, len(items))
	for j, it := range items {
		f, ok := number(it, percent)
		if !ok {
			return nil, invalid("%s[%d] is not numeric (%s)", where(), j, bytes.TrimSpace(it))
		}
		out[j] = f
	}
	return out, nil
}

func number(raw json.RawMessage, percent bool) (float64, bool) {
	b := bytes.TrimSpace(raw)
	s := string(b)
	if kindOf(b) == '"' {
		if json.Unmarshal(b, &s) != nil {
			return 0, false
		}
		s = strings.TrimSpace(s)
		if percent {
			s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
