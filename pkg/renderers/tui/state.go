package tui

import (
	"net/url"
	"strings"
)

// State tracks collected answers and server-provided errors keyed by field
// name. Answers are kept in the same shape an HTML form post produces.
type State struct {
	values url.Values
	errors map[string][]string
}

// NewState seeds the state with retained values and errors.
func NewState(prefill map[string]string, errs map[string][]string) *State {
	s := &State{
		values: make(url.Values, len(prefill)),
		errors: make(map[string][]string, len(errs)),
	}
	for name, value := range prefill {
		s.values.Set(name, value)
	}
	for name, messages := range errs {
		s.errors[name] = append([]string(nil), messages...)
	}
	return s
}

// Get returns the answer recorded for name.
func (s *State) Get(name string) string {
	if s == nil {
		return ""
	}
	return s.values.Get(name)
}

// Set records an answer. Empty answers are kept so required checks
// downstream see the field as submitted.
func (s *State) Set(name, value string) {
	if s == nil {
		return
	}
	s.values.Set(name, value)
}

// Clear drops an answer; an unchecked checkbox is absent from a form post.
func (s *State) Clear(name string) {
	if s == nil {
		return
	}
	s.values.Del(name)
}

// ErrorsFor returns the errors attached to a field.
func (s *State) ErrorsFor(name string) []string {
	if s == nil {
		return nil
	}
	return s.errors[name]
}

// Values returns a copy of the collected answers.
func (s *State) Values() url.Values {
	out := make(url.Values, len(s.values))
	for name, values := range s.values {
		out[name] = append([]string(nil), values...)
	}
	return out
}

func formatErrors(name string, messages []string) string {
	return name + ": " + strings.Join(messages, "; ")
}
