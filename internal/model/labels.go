package model

import (
	"strings"
	"unicode"
)

// DefaultLabeler converts a snake_case or kebab-case field name into a
// human-friendly label ("employment_years" -> "Employment Years").
func DefaultLabeler(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// ApplyLabels fills empty labels using labeler, or DefaultLabeler when nil.
func ApplyLabels(form *FormModel, labeler func(string) string) {
	if form == nil {
		return
	}
	if labeler == nil {
		labeler = DefaultLabeler
	}
	for i := range form.Fields {
		if form.Fields[i].Label == "" {
			form.Fields[i].Label = labeler(form.Fields[i].Name)
		}
	}
}
