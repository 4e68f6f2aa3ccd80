package model

import (
	"net/http"

	internalmodel "github.com/goliatone/go-alohomora/internal/model"
)

// Form identifiers double as the HTML form ids.
const (
	BorrowerFormID = "borrowerForm"
	LoanFormID     = "loanForm"
)

// Borrower form field names.
const (
	FieldName             = "name"
	FieldEmail            = "email"
	FieldIncome           = "income"
	FieldEmploymentYears  = "employment_years"
	FieldHasPreviousLoans = "has_previous_loans"
)

// Loan form field names.
const (
	FieldBorrowerID = "borrower_id"
	FieldAmount     = "amount"
	FieldTermMonths = "term_months"
	FieldPurpose    = "purpose"
)

// SelectBorrowerPlaceholder labels the empty entry of the borrower selector.
const SelectBorrowerPlaceholder = "Select a borrower"

// BorrowerForm describes the create borrower form posted to endpoint.
func BorrowerForm(endpoint string) FormModel {
	form := FormModel{
		ID:          BorrowerFormID,
		Endpoint:    endpoint,
		Method:      http.MethodPost,
		Title:       "Create New Borrower",
		SubmitLabel: "Create Borrower",
		Fields: []Field{
			{Name: FieldName, Type: FieldTypeString, Required: true},
			{Name: FieldEmail, Type: FieldTypeString, Format: "email", Required: true},
			{Name: FieldIncome, Type: FieldTypeInteger, Required: true},
			{Name: FieldEmploymentYears, Type: FieldTypeInteger, Required: true},
			{Name: FieldHasPreviousLoans, Type: FieldTypeBoolean},
		},
	}
	internalmodel.ApplyLabels(&form, nil)
	return form
}

// LoanForm describes the loan application form. borrowers populates the
// selector after the placeholder entry; nil leaves only the placeholder.
func LoanForm(endpoint string, borrowers []Borrower) FormModel {
	options := make([]Option, 0, len(borrowers)+1)
	options = append(options, Option{Value: "", Label: SelectBorrowerPlaceholder})
	for _, b := range borrowers {
		options = append(options, Option{Value: b.ID.String(), Label: b.OptionLabel()})
	}

	form := FormModel{
		ID:          LoanFormID,
		Endpoint:    endpoint,
		Method:      http.MethodPost,
		Title:       "Apply for a Loan",
		SubmitLabel: "Apply for Loan",
		Fields: []Field{
			{
				Name:     FieldBorrowerID,
				Type:     FieldTypeSelect,
				Required: true,
				Label:    "Select Borrower",
				Options:  options,
				Metadata: map[string]string{"errorPath": "borrower"},
			},
			{Name: FieldAmount, Type: FieldTypeInteger, Required: true, Label: "Loan Amount"},
			{Name: FieldTermMonths, Type: FieldTypeInteger, Required: true, Label: "Term (Months)"},
			{Name: FieldPurpose, Type: FieldTypeString, Required: true},
		},
	}
	internalmodel.ApplyLabels(&form, nil)
	return form
}
