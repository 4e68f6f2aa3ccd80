package controller

import (
	"context"
	"net/url"
	"strings"

	"github.com/goliatone/go-alohomora/pkg/contract"
	"github.com/goliatone/go-alohomora/pkg/events"
	"github.com/goliatone/go-alohomora/pkg/model"
	"github.com/goliatone/go-alohomora/pkg/render"
)

// BorrowerAPI creates borrowers.
type BorrowerAPI interface {
	CreateBorrower(ctx context.Context, req model.CreateBorrowerRequest) (model.Borrower, error)
}

// Borrower handles the create borrower form.
type Borrower struct {
	api  BorrowerAPI
	form model.FormModel
	config
}

// NewBorrower binds the borrower form, posted to endpoint, to api.
func NewBorrower(api BorrowerAPI, endpoint string, opts ...Option) *Borrower {
	return &Borrower{
		api:    api,
		form:   model.BorrowerForm(endpoint),
		config: newConfig(opts),
	}
}

// Form describes the fields the page renders.
func (c *Borrower) Form() model.FormModel {
	return c.form
}

// Submit validates values, posts the borrower once and reports the outcome.
// Invalid input never reaches the API.
func (c *Borrower) Submit(ctx context.Context, values url.Values) Outcome {
	ctx, span := c.tracer.Start(ctx, "controller.borrower.submit")
	defer span.End()

	token := values.Get(render.SubmissionField)
	retained := retain(c.form, values)

	if out, ok := c.begin(c.form.ID, token, retained); !ok {
		return c.record(ctx, span, token, events.Event{}, out)
	}

	out, event := c.submit(ctx, retained)
	c.guard.Finish(token, out.Succeeded())
	return c.record(ctx, span, token, event, out)
}

func (c *Borrower) submit(ctx context.Context, values map[string]string) (Outcome, events.Event) {
	if errs, missing := checkFields(c.form, values); errs != nil {
		c.logger.Info("borrower.submit.invalid", "fields", len(errs))
		return invalid(c.form.ID, errs, missing, values), events.Event{}
	}

	req := model.CreateBorrowerRequest{
		Name:             strings.TrimSpace(values[model.FieldName]),
		Email:            strings.TrimSpace(values[model.FieldEmail]),
		Income:           atoi(values, model.FieldIncome),
		EmploymentYears:  atoi(values, model.FieldEmploymentYears),
		HasPreviousLoans: values[model.FieldHasPreviousLoans] == "on",
	}

	if out, ok := c.validate(ctx, c.form, contract.OpCreateBorrower, req, values); !ok {
		return out, events.Event{}
	}

	created, err := c.api.CreateBorrower(ctx, req)
	if err != nil {
		logAPIFailure(c.logger, "borrower.create.failed", err)
		out := failure(c.form.ID, StatusFailed, MsgBorrowerFailed, values)
		out.Err = err
		return out, events.Event{Type: events.BorrowerFailed}
	}

	c.logger.Info("borrower.created", "borrower_id", created.ID.String())
	return success(c.form.ID, MsgBorrowerCreated), events.Event{
		Type:       events.BorrowerCreated,
		BorrowerID: created.ID.String(),
	}
}
