package controller

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/goliatone/go-alohomora/pkg/api"
	"github.com/goliatone/go-alohomora/pkg/events"
	"github.com/goliatone/go-alohomora/pkg/model"
)

type fakeAPI struct {
	mu sync.Mutex

	borrowers []model.Borrower
	listErr   error
	createErr error
	applyErr  error

	created []model.CreateBorrowerRequest
	applied []model.LoanApplication
	lists   int

	// block, when set, holds ApplyForLoan until closed.
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeAPI) ListBorrowers(context.Context) ([]model.Borrower, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.borrowers, nil
}

func (f *fakeAPI) CreateBorrower(_ context.Context, req model.CreateBorrowerRequest) (model.Borrower, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	if f.createErr != nil {
		return model.Borrower{}, f.createErr
	}
	return model.Borrower{ID: "b-1", Name: req.Name, Email: req.Email}, nil
}

func (f *fakeAPI) ApplyForLoan(_ context.Context, app model.LoanApplication) (model.LoanApplicationResult, error) {
	if f.block != nil {
		if f.entered != nil {
			close(f.entered)
		}
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, app)
	if f.applyErr != nil {
		return model.LoanApplicationResult{}, f.applyErr
	}
	return model.LoanApplicationResult{LoanID: "l-1", Message: "Loan applied successfully"}, nil
}

func (f *fakeAPI) requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created) + len(f.applied)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var errStatus = &api.Error{Op: "CreateBorrower", Kind: api.KindStatus, Status: 500, Detail: "boom"}

var errTransport = &api.Error{Op: "ApplyForLoan", Kind: api.KindTransport, Err: errors.New("connection refused")}

func form(pairs ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Set(pairs[i], pairs[i+1])
	}
	return v
}
