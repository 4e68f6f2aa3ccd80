package model_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-alohomora/pkg/model"
)

func TestBorrower_DecodeAcceptsStringAndNumericIDs(t *testing.T) {
	payload := `[
		{"id":"7d0c","name":"Ada","email":"ada@example.com","credit_score":720},
		{"id":42,"name":"Bob","email":"bob@example.com","credit_score":580}
	]`

	var got []model.Borrower
	if err := json.Unmarshal([]byte(payload), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := []model.Borrower{
		{ID: "7d0c", Name: "Ada", Email: "ada@example.com", CreditScore: 720},
		{ID: "42", Name: "Bob", Email: "bob@example.com", CreditScore: 580},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("borrowers mismatch (-want +got):\n%s", diff)
	}
}

func TestBorrower_DecodeRejectsObjectID(t *testing.T) {
	var b model.Borrower
	if err := json.Unmarshal([]byte(`{"id":{"x":1}}`), &b); err == nil {
		t.Fatalf("expected error for object id")
	}
}

func TestLoanApplication_EncodesIntegers(t *testing.T) {
	app := model.LoanApplication{
		Borrower:   model.Borrower{ID: "1", Name: "A", CreditScore: 700}.Snapshot(),
		Amount:     1000,
		TermMonths: 12,
		Purpose:    "car",
	}

	raw, err := json.Marshal(app)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"borrower":{"id":"1","name":"A","email":"","credit_score":700},"amount":1000,"term_months":12,"purpose":"car"}`
	if string(raw) != want {
		t.Fatalf("payload mismatch\nwant: %s\n got: %s", want, raw)
	}
}

func TestBorrowerForm_Labels(t *testing.T) {
	form := model.BorrowerForm("/pages/borrower")

	var labels []string
	for _, field := range form.Fields {
		labels = append(labels, field.Label)
	}
	want := []string{"Name", "Email", "Income", "Employment Years", "Has Previous Loans"}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}

	email, ok := form.Field(model.FieldEmail)
	if !ok || email.InputType() != "email" {
		t.Fatalf("expected email input type, got %+v", email)
	}
}

func TestLoanForm_SelectorOptions(t *testing.T) {
	form := model.LoanForm("/pages/loan", []model.Borrower{
		{ID: "1", Name: "A", CreditScore: 700},
	})

	field, ok := form.Field(model.FieldBorrowerID)
	if !ok {
		t.Fatalf("borrower selector missing")
	}
	want := []model.Option{
		{Value: "", Label: model.SelectBorrowerPlaceholder},
		{Value: "1", Label: "A (Credit Score: 700)"},
	}
	if diff := cmp.Diff(want, field.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}
