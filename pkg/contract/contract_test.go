package contract

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-alohomora/pkg/model"
)

func mustDefault(t *testing.T) *Contract {
	t.Helper()
	c, err := Default()
	if err != nil {
		t.Fatalf("load embedded contract: %v", err)
	}
	return c
}

func TestDefault_Operations(t *testing.T) {
	c := mustDefault(t)

	want := []string{OpApplyForLoan, OpCreateBorrower, OpListBorrowers, OpPing}
	if diff := cmp.Diff(want, c.Operations()); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}

	paths := map[string][2]string{
		OpListBorrowers:  {"GET", "/borrowers"},
		OpCreateBorrower: {"POST", "/borrowers"},
		OpApplyForLoan:   {"POST", "/loans/apply"},
		OpPing:           {"GET", "/v1/ping"},
	}
	for id, mp := range paths {
		op, ok := c.Operation(id)
		if !ok {
			t.Fatalf("operation %s missing", id)
		}
		if op.Method != mp[0] || op.Path != mp[1] {
			t.Fatalf("%s: got %s %s, want %s %s", id, op.Method, op.Path, mp[0], mp[1])
		}
	}
}

func TestValidateRequest_AcceptsWellFormedPayloads(t *testing.T) {
	c := mustDefault(t)
	ctx := context.Background()

	borrower := model.CreateBorrowerRequest{
		Name:            "Ada",
		Email:           "ada@example.com",
		Income:          52000,
		EmploymentYears: 4,
	}
	if err := c.ValidateRequest(ctx, OpCreateBorrower, borrower); err != nil {
		t.Fatalf("borrower payload rejected: %v", err)
	}

	loan := model.LoanApplication{
		Borrower:   model.BorrowerSnapshot{ID: "1", Name: "A", Email: "a@example.com", CreditScore: 700},
		Amount:     1000,
		TermMonths: 12,
		Purpose:    "car",
	}
	if err := c.ValidateRequest(ctx, OpApplyForLoan, loan); err != nil {
		t.Fatalf("loan payload rejected: %v", err)
	}
}

func TestValidateRequest_ReportsViolations(t *testing.T) {
	c := mustDefault(t)

	err := c.ValidateRequest(context.Background(), OpApplyForLoan, model.LoanApplication{
		Borrower:   model.BorrowerSnapshot{ID: "1", Name: "A", CreditScore: 700},
		Amount:     1000,
		TermMonths: 12,
	})
	v, ok := AsViolation(err)
	if !ok {
		t.Fatalf("expected violation, got %v", err)
	}
	if diff := cmp.Diff([]string{"purpose"}, v.FieldNames()); diff != "" {
		t.Fatalf("violated fields mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateRequest_LeavesRangesToTheAPI(t *testing.T) {
	c := mustDefault(t)
	ctx := context.Background()

	loan := model.LoanApplication{
		Borrower: model.BorrowerSnapshot{ID: "1", Name: "A", Email: "a@example.com", CreditScore: 700},
		Amount:   0,
		Purpose:  "car",
	}
	if err := c.ValidateRequest(ctx, OpApplyForLoan, loan); err != nil {
		t.Fatalf("zero amount rejected: %v", err)
	}

	borrower := model.CreateBorrowerRequest{
		Name:            "Ada",
		Email:           "ada@example.com",
		Income:          -5,
		EmploymentYears: -1,
	}
	if err := c.ValidateRequest(ctx, OpCreateBorrower, borrower); err != nil {
		t.Fatalf("negative income rejected: %v", err)
	}
}

func TestValidateRequest_RejectsEmailWithoutAt(t *testing.T) {
	c := mustDefault(t)

	err := c.ValidateRequest(context.Background(), OpCreateBorrower, model.CreateBorrowerRequest{
		Name:   "Ada",
		Email:  "ada.example.com",
		Income: 1,
	})
	v, ok := AsViolation(err)
	if !ok {
		t.Fatalf("expected violation, got %v", err)
	}
	if diff := cmp.Diff([]string{"email"}, v.FieldNames()); diff != "" {
		t.Fatalf("violated fields mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateRequest_UnknownOperation(t *testing.T) {
	c := mustDefault(t)
	if err := c.ValidateRequest(context.Background(), "deleteBorrower", nil); err == nil {
		t.Fatalf("expected error for unknown operation")
	}
	if err := c.ValidateRequest(context.Background(), OpPing, nil); err == nil {
		t.Fatalf("expected error for operation without body")
	}
}

func TestParse_RejectsEmptyDocument(t *testing.T) {
	if _, err := Parse(context.Background(), nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRaw_ReturnsCopy(t *testing.T) {
	raw := Raw()
	raw[0] = 'x'
	if Raw()[0] == 'x' {
		t.Fatalf("expected Raw to return a copy")
	}
}
