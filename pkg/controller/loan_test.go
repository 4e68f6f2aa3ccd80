package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-alohomora/pkg/contract"
	"github.com/goliatone/go-alohomora/pkg/events"
	"github.com/goliatone/go-alohomora/pkg/model"
	"github.com/goliatone/go-alohomora/pkg/render"
)

func newLoanController(t *testing.T, fake *fakeAPI, opts ...Option) *Loan {
	t.Helper()
	c, err := contract.Default()
	if err != nil {
		t.Fatalf("contract: %v", err)
	}
	opts = append([]Option{WithValidator(c)}, opts...)
	return NewLoan(fake, "/pages/loan", opts...)
}

func oneBorrower() []model.Borrower {
	return []model.Borrower{{ID: "1", Name: "A", Email: "a@example.com", CreditScore: 700}}
}

func validLoan(id string) []string {
	return []string{
		model.FieldBorrowerID, id,
		model.FieldAmount, "1000",
		model.FieldTermMonths, "12",
		model.FieldPurpose, "car",
	}
}

func TestLoan_PayloadEmbedsSelectedBorrower(t *testing.T) {
	fake := &fakeAPI{borrowers: oneBorrower()}
	pub := &recordingPublisher{}
	ctrl := newLoanController(t, fake, WithPublisher(pub))

	dir := ctrl.LoadDirectory(context.Background())
	out := ctrl.Submit(context.Background(), dir, form(validLoan("1")...))

	if out.Status != StatusSuccess {
		t.Fatalf("status = %s, want success (err=%v)", out.Status, out.Err)
	}
	want := []model.LoanApplication{{
		Borrower:   model.BorrowerSnapshot{ID: "1", Name: "A", Email: "a@example.com", CreditScore: 700},
		Amount:     1000,
		TermMonths: 12,
		Purpose:    "car",
	}}
	if diff := cmp.Diff(want, fake.applied); diff != "" {
		t.Fatalf("application mismatch (-want +got):\n%s", diff)
	}
	if out.Notification.Message != MsgLoanSubmitted || len(out.Values) != 0 {
		t.Fatalf("expected cleared form with success notification, got %+v", out)
	}
	if len(pub.events) != 1 || pub.events[0].LoanID != "l-1" || pub.events[0].BorrowerID != "1" {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestLoan_NoSelectionSendsNothing(t *testing.T) {
	cases := map[string]struct {
		dir func(*Loan) Directory
		id  string
	}{
		"empty selection": {
			dir: func(c *Loan) Directory { return c.LoadDirectory(context.Background()) },
			id:  "",
		},
		"unknown id": {
			dir: func(c *Loan) Directory { return c.LoadDirectory(context.Background()) },
			id:  "42",
		},
		"directory still loading": {
			dir: func(*Loan) Directory { return Directory{} },
			id:  "1",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			fake := &fakeAPI{borrowers: oneBorrower()}
			pub := &recordingPublisher{}
			ctrl := newLoanController(t, fake, WithPublisher(pub))

			out := ctrl.Submit(context.Background(), tc.dir(ctrl), form(validLoan(tc.id)...))

			if out.Status != StatusInvalid {
				t.Fatalf("status = %s, want invalid", out.Status)
			}
			if out.Notification.Message != MsgSelectBorrower {
				t.Fatalf("unexpected notification %q", out.Notification.Message)
			}
			if len(fake.applied) != 0 {
				t.Fatalf("expected no request, got %d", len(fake.applied))
			}
			if out.Values[model.FieldPurpose] != "car" {
				t.Fatalf("expected values kept, got %v", out.Values)
			}
			if diff := cmp.Diff([]events.Type{events.LoanRejectedSelection}, pub.types()); diff != "" {
				t.Fatalf("events mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoan_InvalidNumbersSendNothing(t *testing.T) {
	fake := &fakeAPI{borrowers: oneBorrower()}
	ctrl := newLoanController(t, fake)
	dir := ctrl.LoadDirectory(context.Background())

	out := ctrl.Submit(context.Background(), dir, form(
		model.FieldBorrowerID, "1",
		model.FieldAmount, "1e3",
		model.FieldPurpose, "car",
	))

	if out.Status != StatusInvalid || len(fake.applied) != 0 {
		t.Fatalf("expected invalid outcome without request, got %s", out.Status)
	}
	want := map[string][]string{
		model.FieldAmount:     {"Loan Amount must be a whole number"},
		model.FieldTermMonths: {"Term (Months) is required"},
	}
	if diff := cmp.Diff(want, out.Errors); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
}

func TestLoan_ZeroAmountReachesTheAPI(t *testing.T) {
	fake := &fakeAPI{borrowers: oneBorrower()}
	ctrl := newLoanController(t, fake)
	dir := ctrl.LoadDirectory(context.Background())

	values := validLoan("1")
	values[3] = "0"
	out := ctrl.Submit(context.Background(), dir, form(values...))

	if out.Status != StatusSuccess {
		t.Fatalf("status = %s, want success", out.Status)
	}
	if len(fake.applied) != 1 || fake.applied[0].Amount != 0 {
		t.Fatalf("expected one application with amount 0, got %+v", fake.applied)
	}
}

func TestLoan_FailureKeepsValues(t *testing.T) {
	for name, err := range map[string]error{"status": errStatus, "transport": errTransport} {
		t.Run(name, func(t *testing.T) {
			fake := &fakeAPI{borrowers: oneBorrower(), applyErr: err}
			ctrl := newLoanController(t, fake)
			dir := ctrl.LoadDirectory(context.Background())

			out := ctrl.Submit(context.Background(), dir, form(validLoan("1")...))

			if out.Status != StatusFailed {
				t.Fatalf("status = %s, want failed", out.Status)
			}
			if out.Notification.Message != MsgLoanFailed {
				t.Fatalf("unexpected notification %q", out.Notification.Message)
			}
			want := map[string]string{
				model.FieldBorrowerID: "1",
				model.FieldAmount:     "1000",
				model.FieldTermMonths: "12",
				model.FieldPurpose:    "car",
			}
			if diff := cmp.Diff(want, out.Values); diff != "" {
				t.Fatalf("values mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoan_DirectoryFetchFailureDegrades(t *testing.T) {
	fake := &fakeAPI{listErr: errors.New("connection refused")}
	ctrl := newLoanController(t, fake)

	dir := ctrl.LoadDirectory(context.Background())
	if dir.Ready() || dir.Err() == nil {
		t.Fatalf("expected loading directory with error, got state=%s err=%v", dir.State(), dir.Err())
	}

	selector, ok := ctrl.Form(dir).Field(model.FieldBorrowerID)
	if !ok {
		t.Fatalf("selector missing")
	}
	want := []model.Option{{Value: "", Label: model.SelectBorrowerPlaceholder}}
	if diff := cmp.Diff(want, selector.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestLoan_ConcurrentDuplicateIsRejected(t *testing.T) {
	fake := &fakeAPI{
		borrowers: oneBorrower(),
		block:     make(chan struct{}),
		entered:   make(chan struct{}),
	}
	ctrl := newLoanController(t, fake, WithGuard(NewGuard(time.Minute)))
	dir := ctrl.LoadDirectory(context.Background())
	values := form(append(validLoan("1"), render.SubmissionField, "tok-3")...)

	var (
		wg    sync.WaitGroup
		first Outcome
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = ctrl.Submit(context.Background(), dir, values)
	}()

	<-fake.entered
	second := ctrl.Submit(context.Background(), dir, values)
	close(fake.block)
	wg.Wait()

	if second.Status != StatusDuplicate || !errors.Is(second.Err, ErrInFlight) {
		t.Fatalf("second submission: status=%s err=%v", second.Status, second.Err)
	}
	if second.Token != "tok-3" || second.Values[model.FieldPurpose] != "car" {
		t.Fatalf("pending duplicate must keep token and values, got token=%q values=%v", second.Token, second.Values)
	}
	if first.Status != StatusSuccess {
		t.Fatalf("first submission: status=%s", first.Status)
	}
	if len(fake.applied) != 1 {
		t.Fatalf("expected one request, got %d", len(fake.applied))
	}
}
