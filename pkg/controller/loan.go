package controller

import (
	"context"
	"net/url"
	"strings"

	"github.com/goliatone/go-alohomora/internal/metrics"
	"github.com/goliatone/go-alohomora/pkg/contract"
	"github.com/goliatone/go-alohomora/pkg/events"
	"github.com/goliatone/go-alohomora/pkg/model"
	"github.com/goliatone/go-alohomora/pkg/render"
)

// LoanAPI lists borrowers and accepts loan applications.
type LoanAPI interface {
	ListBorrowers(ctx context.Context) ([]model.Borrower, error)
	ApplyForLoan(ctx context.Context, app model.LoanApplication) (model.LoanApplicationResult, error)
}

// Loan handles the loan application form.
type Loan struct {
	api      LoanAPI
	endpoint string
	config
}

// NewLoan binds the loan form, posted to endpoint, to api.
func NewLoan(api LoanAPI, endpoint string, opts ...Option) *Loan {
	return &Loan{
		api:      api,
		endpoint: endpoint,
		config:   newConfig(opts),
	}
}

// LoadDirectory fetches the borrower list once. A failure is logged and
// leaves the directory loading, which renders an empty selector.
func (c *Loan) LoadDirectory(ctx context.Context) Directory {
	ctx, span := c.tracer.Start(ctx, "controller.loan.load_directory")
	defer span.End()

	borrowers, err := c.api.ListBorrowers(ctx)
	if err != nil {
		logAPIFailure(c.logger, "loan.directory.fetch_failed", err)
		span.RecordError(err)
		return FailedDirectory(err)
	}
	metrics.SetDirectorySize(len(borrowers))
	return ReadyDirectory(borrowers)
}

// Form describes the loan form with the selector filled from dir.
func (c *Loan) Form(dir Directory) model.FormModel {
	return model.LoanForm(c.endpoint, dir.Borrowers())
}

// Submit resolves the selected borrower in dir, validates the rest of the
// form and posts the application once. A selection that does not resolve
// never reaches the API.
func (c *Loan) Submit(ctx context.Context, dir Directory, values url.Values) Outcome {
	ctx, span := c.tracer.Start(ctx, "controller.loan.submit")
	defer span.End()

	form := c.Form(dir)
	token := values.Get(render.SubmissionField)
	retained := retain(form, values)

	if out, ok := c.begin(form.ID, token, retained); !ok {
		return c.record(ctx, span, token, events.Event{}, out)
	}

	out, event := c.submit(ctx, form, dir, retained)
	c.guard.Finish(token, out.Succeeded())
	return c.record(ctx, span, token, event, out)
}

func (c *Loan) submit(ctx context.Context, form model.FormModel, dir Directory, values map[string]string) (Outcome, events.Event) {
	selected, ok := dir.Find(strings.TrimSpace(values[model.FieldBorrowerID]))
	if !ok {
		c.logger.Info("loan.submit.no_borrower", "directory", dir.State().String())
		out := failure(form.ID, StatusInvalid, MsgSelectBorrower, values)
		out.Errors = map[string][]string{model.FieldBorrowerID: {MsgSelectBorrower}}
		return out, events.Event{Type: events.LoanRejectedSelection}
	}

	if errs, missing := checkFields(form, values); errs != nil {
		c.logger.Info("loan.submit.invalid", "fields", len(errs))
		return invalid(form.ID, errs, missing, values), events.Event{}
	}

	app := model.LoanApplication{
		Borrower:   selected.Snapshot(),
		Amount:     atoi(values, model.FieldAmount),
		TermMonths: atoi(values, model.FieldTermMonths),
		Purpose:    strings.TrimSpace(values[model.FieldPurpose]),
	}

	if out, ok := c.validate(ctx, form, contract.OpApplyForLoan, app, values); !ok {
		return out, events.Event{}
	}

	result, err := c.api.ApplyForLoan(ctx, app)
	if err != nil {
		logAPIFailure(c.logger, "loan.apply.failed", err)
		out := failure(form.ID, StatusFailed, MsgLoanFailed, values)
		out.Err = err
		return out, events.Event{Type: events.LoanFailed, BorrowerID: app.Borrower.ID}
	}

	c.logger.Info("loan.applied", "borrower_id", app.Borrower.ID, "loan_id", result.LoanID.String())
	return success(form.ID, MsgLoanSubmitted), events.Event{
		Type:       events.LoanApplied,
		BorrowerID: app.Borrower.ID,
		LoanID:     result.LoanID.String(),
	}
}
