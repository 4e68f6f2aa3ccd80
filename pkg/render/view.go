package render

import (
	"strings"

	"github.com/goliatone/go-alohomora/pkg/model"
	"github.com/goliatone/go-alohomora/pkg/page"
)

// SubmissionField is the hidden input carrying the per render submission
// token.
const SubmissionField = "_submission"

// NotificationKind drives how a notification is presented.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is a user facing message produced by a form submission.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
}

// View is everything a renderer needs to produce one page. Exactly one page
// is rendered per view.
type View struct {
	Page         page.Page           `json:"page"`
	Title        string              `json:"title"`
	Nav          []page.Link         `json:"nav"`
	Form         *model.FormModel    `json:"form,omitempty"`
	Values       map[string]string   `json:"values,omitempty"`
	Errors       map[string][]string `json:"errors,omitempty"`
	FormErrors   []string            `json:"formErrors,omitempty"`
	Notification *Notification       `json:"notification,omitempty"`
	Hidden       []HiddenField       `json:"hidden,omitempty"`
	// Theme carries the resolved theme name, variant and tokens.
	Theme map[string]any `json:"theme,omitempty"`
}

// NewView builds the view for p with navigation populated.
func NewView(p page.Page) View {
	return View{
		Page:  p,
		Title: p.Title(),
		Nav:   page.Links(p),
	}
}

// Value returns the retained value for a field.
func (v View) Value(name string) string {
	if v.Values == nil {
		return ""
	}
	return v.Values[name]
}

// FieldErrors returns validation messages for a field.
func (v View) FieldErrors(name string) []string {
	if v.Errors == nil {
		return nil
	}
	return v.Errors[name]
}

// SubmissionToken returns the hidden submission token, if any.
func (v View) SubmissionToken() string {
	for _, h := range v.Hidden {
		if strings.TrimSpace(h.Name) == SubmissionField {
			return h.Value
		}
	}
	return ""
}

// SetHidden merges fields into the view's hidden inputs. A field replaces an
// existing one with the same name; the result is sorted by name.
func (v *View) SetHidden(fields ...HiddenField) {
	current := make(map[string]string, len(v.Hidden))
	for _, h := range v.Hidden {
		current[h.Name] = h.Value
	}
	v.Hidden = SortedHiddenFields(MergeHiddenFields(current, fields...))
}
