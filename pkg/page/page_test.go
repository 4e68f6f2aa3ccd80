package page

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	cases := map[string]Page{
		"home":     Home,
		"borrower": Borrower,
		" Loan ":   Loan,
		"BORROWER": Borrower,
	}
	for input, want := range cases {
		got, err := Parse(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse %q: want %s, got %s", input, want, got)
		}
	}

	if _, err := Parse("investors"); !errors.Is(err, ErrUnknownPage) {
		t.Fatalf("expected ErrUnknownPage, got %v", err)
	}
}

func TestNavigator_UnknownPageKeepsCurrent(t *testing.T) {
	nav := NewNavigator()

	if got, err := nav.Show("loan"); err != nil || got != Loan {
		t.Fatalf("show loan: got %s, err %v", got, err)
	}

	got, err := nav.Show("missing")
	if !errors.Is(err, ErrUnknownPage) {
		t.Fatalf("expected ErrUnknownPage, got %v", err)
	}
	if got != Loan || nav.Current() != Loan {
		t.Fatalf("expected current page to stay loan, got %s / %s", got, nav.Current())
	}
}

func TestLinks_MarksActivePage(t *testing.T) {
	got := Links(Borrower)
	want := []Link{
		{Page: Home, Href: "/pages/home", Label: "Home"},
		{Page: Borrower, Href: "/pages/borrower", Label: "Create Borrower", Active: true},
		{Page: Loan, Href: "/pages/loan", Label: "Apply for Loan"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("links mismatch (-want +got):\n%s", diff)
	}
}
