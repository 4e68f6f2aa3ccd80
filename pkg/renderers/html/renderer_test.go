package html_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-alohomora/pkg/model"
	"github.com/goliatone/go-alohomora/pkg/page"
	"github.com/goliatone/go-alohomora/pkg/render"
	"github.com/goliatone/go-alohomora/pkg/renderers/html"
	"github.com/goliatone/go-alohomora/pkg/testsupport"
)

func newRenderer(t *testing.T, opts ...html.Option) *html.Renderer {
	t.Helper()
	r, err := html.New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func renderView(t *testing.T, r *html.Renderer, view render.View) string {
	t.Helper()
	out, err := r.Render(testsupport.Context(), view)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(output, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, output)
		}
	}
}

func assertNotContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if strings.Contains(output, fragment) {
			t.Fatalf("expected output not to contain %q\n%s", fragment, output)
		}
	}
}

func TestRenderer_HomePage(t *testing.T) {
	r := newRenderer(t)

	out := renderView(t, r, render.NewView(page.Home))

	assertContains(t, out,
		"<!DOCTYPE html>",
		"Welcome to Alohomora</h1>",
		"<p>Your trusted platform for managing loans and borrowers.</p>",
		`href="/pages/borrower" data-page="borrower"`,
		`href="/pages/loan" data-page="loan"`,
		`data-page="home" class="active" aria-current="page"`,
	)
	assertNotContains(t, out, "<form")

	if got := strings.Count(out, `<section class="page `); got != 1 {
		t.Fatalf("expected exactly one page section, got %d", got)
	}
}

func TestRenderer_BorrowerPage(t *testing.T) {
	r := newRenderer(t)

	form := model.BorrowerForm("/pages/borrower")
	view := render.NewView(page.Borrower)
	view.Form = &form
	view.Hidden = []render.HiddenField{render.SubmissionToken("tok-1")}

	out := renderView(t, r, view)

	assertContains(t, out,
		`<section class="page page-borrower"`,
		`<form id="borrowerForm" action="/pages/borrower" method="post">`,
		`type="text" id="name" name="name"`,
		`type="email" id="email" name="email"`,
		`type="number" id="income" name="income"`,
		`type="number" id="employment_years" name="employment_years"`,
		`<input type="checkbox" id="has_previous_loans" name="has_previous_loans">`,
		`<input type="hidden" name="_submission" value="tok-1">`,
		`<button type="submit">Create Borrower</button>`,
		`data-page="borrower" class="active"`,
	)
	assertNotContains(t, out, "Welcome to Alohomora", "notification")

	if got := strings.Count(out, " required>"); got != 4 {
		t.Fatalf("expected four required inputs, got %d", got)
	}
}

func TestRenderer_RetainedValuesErrorsAndNotification(t *testing.T) {
	r := newRenderer(t)

	form := model.BorrowerForm("/pages/borrower")
	view := render.NewView(page.Borrower)
	view.Form = &form
	view.Values = map[string]string{
		model.FieldName:             "Ada",
		model.FieldIncome:           "abc",
		model.FieldHasPreviousLoans: "on",
	}
	view.Errors = map[string][]string{model.FieldIncome: {"must be a whole number"}}
	view.FormErrors = []string{"Please correct the highlighted fields."}
	view.Notification = &render.Notification{
		Kind:    render.NotificationError,
		Message: "<script>alert(1)</script>Failed to create borrower. Please try again.",
	}

	out := renderView(t, r, view)

	assertContains(t, out,
		`name="name" value="Ada" required>`,
		`name="income" value="abc" step="1" required>`,
		`name="has_previous_loans" checked>`,
		`<div class="field field-integer has-error">`,
		`<p class="field-error">must be a whole number</p>`,
		`<li>Please correct the highlighted fields.</li>`,
		`<div class="notification notification-error" role="alert">`,
		"Failed to create borrower. Please try again.</div>",
	)
	assertNotContains(t, out, "<script")
}

func TestRenderer_LoanPageSelector(t *testing.T) {
	r := newRenderer(t)

	borrowers := []model.Borrower{
		{ID: "1", Name: "Ada", Email: "ada@example.com", CreditScore: 720},
		{ID: "2", Name: "Grace", Email: "grace@example.com", CreditScore: 680},
	}
	form := model.LoanForm("/pages/loan", borrowers)
	view := render.NewView(page.Loan)
	view.Form = &form
	view.Values = map[string]string{model.FieldBorrowerID: "2"}
	view.Notification = &render.Notification{Kind: render.NotificationSuccess, Message: "Loan application submitted successfully!"}

	out := renderView(t, r, view)

	assertContains(t, out,
		`<select id="borrower_id" name="borrower_id" required>`,
		`<option value="">Select a borrower</option>`,
		`<option value="1">`,
		`<option value="2" selected>`,
		`<div class="notification notification-success" role="status">Loan application submitted successfully!</div>`,
		`<button type="submit">Apply for Loan</button>`,
	)
	if got := strings.Count(out, `<option `); got != 3 {
		t.Fatalf("expected placeholder plus two borrowers, got %d options", got)
	}
}

func TestRenderer_LoanPageWithoutBorrowers(t *testing.T) {
	r := newRenderer(t)

	form := model.LoanForm("/pages/loan", nil)
	view := render.NewView(page.Loan)
	view.Form = &form

	out := renderView(t, r, view)
	if got := strings.Count(out, `<option `); got != 1 {
		t.Fatalf("expected placeholder only, got %d options", got)
	}
}

func TestRenderer_ThemeVariant(t *testing.T) {
	r := newRenderer(t, html.WithTheme(html.DefaultTheme, html.VariantDark))

	out := renderView(t, r, render.NewView(page.Home))

	assertContains(t, out,
		`data-theme="alohomora" data-variant="dark"`,
		"--brand: #7aa7d6;",
		`<link rel="stylesheet" href="/assets/alohomora.css">`,
		`<link rel="stylesheet" href="/assets/alohomora-dark.css">`,
	)
}

func TestRenderer_ViewRequestsVariant(t *testing.T) {
	r := newRenderer(t)

	view := render.NewView(page.Home)
	view.Theme = map[string]any{"variant": html.VariantDark}

	out := renderView(t, r, view)
	assertContains(t, out, `data-variant="dark"`)

	view.Theme = map[string]any{"variant": "sepia"}
	if _, err := r.Render(testsupport.Context(), view); err == nil {
		t.Fatalf("expected unknown variant error")
	}
}

func TestRenderer_ManifestOverridesPageTemplate(t *testing.T) {
	selector, err := html.NewSelector("acme", "", &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#123456"},
		Templates: map[string]string{
			html.PageTemplateKey + "home": `<section class="page page-acme">{{ view.title }}</section>`,
		},
	})
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}

	r := newRenderer(t, html.WithThemeSelector(selector))
	out := renderView(t, r, render.NewView(page.Home))

	assertContains(t, out, `<section class="page page-acme">Home</section>`, "--brand: #123456;")
	assertNotContains(t, out, "Welcome to Alohomora")
}

func TestRenderer_RejectsUnknownPage(t *testing.T) {
	r := newRenderer(t)

	_, err := r.Render(testsupport.Context(), render.View{Page: page.Page("investors")})
	if !errors.Is(err, page.ErrUnknownPage) {
		t.Fatalf("expected ErrUnknownPage, got %v", err)
	}
}

func TestRenderer_CancelledContext(t *testing.T) {
	r := newRenderer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, render.NewView(page.Home)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRenderer_WithTemplateRendererOrder(t *testing.T) {
	stub := &stubTemplateRenderer{}

	r := newRenderer(t, html.WithTemplateRenderer(stub))

	form := model.BorrowerForm("/pages/borrower")
	view := render.NewView(page.Borrower)
	view.Form = &form

	out := renderView(t, r, view)
	if out != "layout" {
		t.Fatalf("expected layout output, got %q", out)
	}

	want := []string{"partials/form", "pages/borrower", "layout"}
	if strings.Join(stub.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected template order: %v", stub.calls)
	}
}

func TestRenderer_Metadata(t *testing.T) {
	r := newRenderer(t)
	if r.Name() != "html" {
		t.Fatalf("unexpected name %q", r.Name())
	}
	if r.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}

type stubTemplateRenderer struct {
	calls []string
}

func (s *stubTemplateRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return s.RenderTemplate(name, data, out...)
}

func (s *stubTemplateRenderer) RenderTemplate(name string, _ any, _ ...io.Writer) (string, error) {
	s.calls = append(s.calls, name)
	return name, nil
}

func (s *stubTemplateRenderer) RenderString(string, any, ...io.Writer) (string, error) {
	return "", nil
}

func (s *stubTemplateRenderer) RegisterFilter(string, func(any, any) (any, error)) error {
	return nil
}

func (s *stubTemplateRenderer) GlobalContext(any) error {
	return nil
}
