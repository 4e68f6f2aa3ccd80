package api

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// Summarize extracts JSONPath fields from a JSON body for log lines.
// fields maps an output name to an expression such as "$.loan_id". Rules
// that fail or match nothing are left out. A body that is not JSON yields an
// empty map.
func Summarize(body []byte, fields map[string]string) map[string]string {
	out := map[string]string{}
	if len(fields) == 0 || len(body) == 0 {
		return out
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return out
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		expr := strings.TrimSpace(fields[name])
		if expr == "" {
			continue
		}
		val, err := jsonpath.Get(expr, doc)
		if err != nil || val == nil {
			continue
		}
		s, ok := stringify(val)
		if !ok {
			continue
		}
		out[name] = s
	}
	return out
}

// detailOf returns the "detail" member of an error body. FastAPI uses a
// string for handled errors and a list of objects for validation errors.
func detailOf(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	val, err := jsonpath.Get("$.detail", doc)
	if err != nil || val == nil {
		return ""
	}
	if items, ok := val.([]any); ok {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if msg, err := jsonpath.Get("$.msg", item); err == nil {
				if s, ok := stringify(msg); ok && s != "" {
					msgs = append(msgs, s)
					continue
				}
			}
			if s, ok := stringify(item); ok {
				msgs = append(msgs, s)
			}
		}
		return strings.Join(msgs, "; ")
	}
	s, _ := stringify(val)
	return s
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t)), true
		}
		return fmt.Sprintf("%g", t), true
	case bool:
		return fmt.Sprintf("%t", t), true
	case nil:
		return "", false
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}
