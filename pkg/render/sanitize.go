package render

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce   sync.Once
	strictPolicy *bluemonday.Policy
	ugcPolicy    *bluemonday.Policy
)

func policies() {
	policyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
		ugcPolicy = bluemonday.UGCPolicy()
	})
}

// PlainText strips every tag from s. Notifications pass through it before
// reaching any renderer.
func PlainText(s string) string {
	policies()
	return strictPolicy.Sanitize(s)
}

// SafeHTML keeps user generated content markup (headings, paragraphs, links,
// emphasis) and drops scripts, handlers and styles.
func SafeHTML(raw []byte) []byte {
	policies()
	return ugcPolicy.SanitizeBytes(raw)
}

// Sanitized returns a copy of n with the message reduced to plain text.
func (n Notification) Sanitized() Notification {
	n.Message = PlainText(n.Message)
	return n
}
