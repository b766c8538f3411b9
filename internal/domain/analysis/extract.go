package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"

	"github.com/bryanwahyu/finsight/internal/domain/errs"
)

var errNoObject = errors.New("no JSON object found in response")

// ExtractObject finds the JSON object in a raw completion. Order of attempts:
//  1. the whole text parsed as JSON
//  2. each top-level '{' in turn, closed by a string-aware brace counter;
//     braces nested inside a rejected candidate are never tried on their own
//  3. the first rejected candidate (or the unbalanced tail) through
//     json-repair, then Hjson
//
// Text without any '{' fails immediately with a MalformedResponse error.
func ExtractObject(raw string) (json.RawMessage, error) {
	text := strings.TrimSpace(raw)
	if isObject([]byte(text)) {
		return json.RawMessage(text), nil
	}

	i := strings.IndexByte(text, '{')
	if i < 0 {
		return nil, errs.Malformed(errNoObject)
	}

	var rejected string
	for i >= 0 {
		end := matchBrace(text, i)
		if end < 0 {
			// unbalanced: everything from here on belongs to this candidate
			tail := text[i:]
			if last := strings.LastIndexByte(tail, '}'); last > 0 {
				tail = tail[:last+1]
			}
			if rejected == "" {
				rejected = tail
			}
			break
		}
		cand := text[i : end+1]
		if isObject([]byte(cand)) {
			return json.RawMessage(cand), nil
		}
		if rejected == "" {
			rejected = cand
		}
		next := strings.IndexByte(text[end+1:], '{')
		if next < 0 {
			break
		}
		i = end + 1 + next
	}

	if obj, ok := lenient(rejected); ok {
		return obj, nil
	}
	return nil, errs.Malformed(errNoObject)
}

// matchBrace returns the index of the '}' closing the '{' at start, or -1.
func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func lenient(cand string) (json.RawMessage, bool) {
	if repaired, err := jsonrepair.RepairJSON(cand); err == nil && isObject([]byte(repaired)) {
		return json.RawMessage(repaired), true
	}
	var v any
	if err := hjson.Unmarshal([]byte(cand), &v); err != nil {
		return nil, false
	}
	if _, ok := v.(map[string]any); !ok {
		return nil, false
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	return json.RawMessage(b), true
}

func isObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{' && json.Valid(b)
}

// object is a decoded JSON object that remembers key order.
type object struct {
	keys []string
	vals map[string]json.RawMessage
}

func decodeObject(raw json.RawMessage) (*object, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("not an object")
	}
	obj := &object{vals: map[string]json.RawMessage{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		if _, seen := obj.vals[key]; !seen {
			obj.keys = append(obj.keys, key)
		}
		obj.vals[key] = v
	}
	return obj, nil
}

func (o *object) get(key string) json.RawMessage { return o.vals[key] }
