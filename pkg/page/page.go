package page

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnknownPage is returned when an identifier does not name a page.
var ErrUnknownPage = errors.New("page: unknown page")

// Page is the closed set of screens the front end can show.
type Page string

const (
	Home     Page = "home"
	Borrower Page = "borrower"
	Loan     Page = "loan"
)

// All lists the pages in navigation order.
func All() []Page {
	return []Page{Home, Borrower, Loan}
}

// Parse resolves a page identifier. Surrounding whitespace and case are
// ignored.
func Parse(id string) (Page, error) {
	candidate := Page(strings.ToLower(strings.TrimSpace(id)))
	for _, p := range All() {
		if p == candidate {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPage, id)
}

// HasForm reports whether the page hosts a form controller.
func (p Page) HasForm() bool {
	return p == Borrower || p == Loan
}

// Path is the route that renders the page.
func (p Page) Path() string {
	return "/pages/" + string(p)
}

// Title is the navigation label for the page.
func (p Page) Title() string {
	switch p {
	case Borrower:
		return "Create Borrower"
	case Loan:
		return "Apply for Loan"
	default:
		return "Home"
	}
}

// Link is a navigation entry.
type Link struct {
	Page   Page   `json:"page"`
	Href   string `json:"href"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// Links builds the navigation with current marked active.
func Links(current Page) []Link {
	out := make([]Link, 0, len(All()))
	for _, p := range All() {
		out = append(out, Link{
			Page:   p,
			Href:   p.Path(),
			Label:  p.Title(),
			Active: p == current,
		})
	}
	return out
}

// Navigator tracks the page currently shown. Navigating to an unknown
// identifier leaves the current page unchanged.
type Navigator struct {
	mu      sync.Mutex
	current Page
}

// NewNavigator starts on the home page.
func NewNavigator() *Navigator {
	return &Navigator{current: Home}
}

// Show switches to the page named by id and returns the page now visible.
func (n *Navigator) Show(id string) (Page, error) {
	p, err := Parse(id)

	n.mu.Lock()
	defer n.mu.Unlock()

	if err != nil {
		return n.current, err
	}
	n.current = p
	return p, nil
}

// Current returns the visible page.
func (n *Navigator) Current() Page {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}
