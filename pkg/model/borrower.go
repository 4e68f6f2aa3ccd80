package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an opaque record identifier. The API emits UUID strings, but numeric
// identifiers are accepted and kept in their decimal form.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("model: id must be a string or number: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("model: invalid numeric id %q", n.String())
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier text.
func (id ID) String() string {
	return string(id)
}

// Borrower is a loan applicant profile as returned by GET /api/borrowers.
type Borrower struct {
	ID               ID     `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Income           int    `json:"income,omitempty"`
	EmploymentYears  int    `json:"employment_years,omitempty"`
	HasPreviousLoans bool   `json:"has_previous_loans,omitempty"`
	CreditScore      int    `json:"credit_score"`
}

// Snapshot returns the subset of the borrower embedded in loan applications.
func (b Borrower) Snapshot() BorrowerSnapshot {
	return BorrowerSnapshot{
		ID:          b.ID.String(),
		Name:        b.Name,
		Email:       b.Email,
		CreditScore: b.CreditScore,
	}
}

// OptionLabel is the text shown for the borrower in selection controls.
func (b Borrower) OptionLabel() string {
	return fmt.Sprintf("%s (Credit Score: %d)", b.Name, b.CreditScore)
}

// CreateBorrowerRequest is the body of POST /api/borrowers.
type CreateBorrowerRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Income           int    `json:"income"`
	EmploymentYears  int    `json:"employment_years"`
	HasPreviousLoans bool   `json:"has_previous_loans"`
}

// BorrowerSnapshot is the borrower copy embedded in a loan application.
type BorrowerSnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	CreditScore int    `json:"credit_score"`
}

// LoanApplication is the body of POST /api/loans/apply. It is built once per
// submission and not retained.
type LoanApplication struct {
	Borrower   BorrowerSnapshot `json:"borrower"`
	Amount     int              `json:"amount"`
	TermMonths int              `json:"term_months"`
	Purpose    string           `json:"purpose"`
}

// LoanApplicationResult is the API answer to a loan application.
type LoanApplicationResult struct {
	LoanID  ID     `json:"loan_id"`
	Message string `json:"message"`
}
