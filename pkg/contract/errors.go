package contract

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Violation reports payload fields that do not satisfy the request schema.
// Fields maps a dotted field path to its reasons; problems not tied to a
// field are collected under the empty key.
type Violation struct {
	Operation string
	Fields    map[string][]string
}

func (v *Violation) Error() string {
	if v == nil {
		return "<nil>"
	}
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		label := k
		if label == "" {
			label = "payload"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", label, strings.Join(v.Fields[k], ", ")))
	}
	return fmt.Sprintf("contract: %s request invalid: %s", v.Operation, strings.Join(parts, "; "))
}

// FieldNames returns the top level field names that failed validation.
func (v *Violation) FieldNames() []string {
	seen := map[string]struct{}{}
	var out []string
	for k := range v.Fields {
		top, _, _ := strings.Cut(k, ".")
		if top == "" {
			continue
		}
		if _, ok := seen[top]; ok {
			continue
		}
		seen[top] = struct{}{}
		out = append(out, top)
	}
	sort.Strings(out)
	return out
}

// AsViolation unwraps a *Violation from err.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

func newViolation(operationID string, err error) *Violation {
	v := &Violation{Operation: operationID, Fields: map[string][]string{}}
	collectSchemaErrors(v, err)
	if len(v.Fields) == 0 {
		v.Fields[""] = []string{err.Error()}
	}
	return v
}

func collectSchemaErrors(v *Violation, err error) {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, inner := range multi {
			collectSchemaErrors(v, inner)
		}
		return
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		key := strings.Join(se.JSONPointer(), ".")
		v.Fields[key] = append(v.Fields[key], se.Reason)
		return
	}
	v.Fields[""] = append(v.Fields[""], err.Error())
}
