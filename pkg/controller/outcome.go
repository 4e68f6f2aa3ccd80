package controller

import (
	"net/http"

	"github.com/goliatone/go-alohomora/pkg/render"
)

// Status classifies the result of a form submission.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusInvalid   Status = "invalid"
	StatusDuplicate Status = "duplicate"
)

// User facing notifications.
const (
	MsgBorrowerCreated  = "Borrower created successfully!"
	MsgBorrowerFailed   = "Failed to create borrower. Please try again."
	MsgLoanSubmitted    = "Loan application submitted successfully!"
	MsgLoanFailed       = "Failed to apply for loan. Please try again."
	MsgSelectBorrower   = "Please select a borrower"
	MsgMissingFields    = "Please fill in all required fields."
	MsgInvalidFields    = "Please correct the highlighted fields."
	MsgAlreadySubmitted = "This form is already being submitted."
	MsgAlreadyAccepted  = "This form was already submitted."
)

// Outcome is what a controller hands back to the page after a submission.
// Values is empty after a success so the re-rendered form is cleared; on any
// other status it holds what the user typed.
type Outcome struct {
	Form         string
	Status       Status
	Notification render.Notification
	Values       map[string]string
	Errors       map[string][]string
	FormErrors   []string
	// Token is the submission token the re-rendered form must keep. Empty
	// means the page mints a fresh one.
	Token string
	// Err is the underlying failure, if any. It is logged, never shown.
	Err error
}

// Succeeded reports whether the API accepted the submission.
func (o Outcome) Succeeded() bool {
	return o.Status == StatusSuccess
}

// HTTPStatus maps the outcome onto the status code of the re-rendered page.
func (o Outcome) HTTPStatus() int {
	switch o.Status {
	case StatusSuccess:
		return http.StatusOK
	case StatusInvalid:
		return http.StatusUnprocessableEntity
	case StatusDuplicate:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// Apply copies the outcome onto a view for re-rendering. Form-level errors
// already on the view are kept.
func (o Outcome) Apply(view *render.View) {
	n := o.Notification.Sanitized()
	view.Notification = &n
	view.Values = o.Values
	view.Errors = o.Errors
	view.FormErrors = render.MergeFormErrors(view.FormErrors, o.FormErrors...)
	if o.Token != "" {
		view.SetHidden(render.SubmissionToken(o.Token))
	}
}

func success(form, message string) Outcome {
	return Outcome{
		Form:         form,
		Status:       StatusSuccess,
		Notification: render.Notification{Kind: render.NotificationSuccess, Message: message},
		Values:       map[string]string{},
	}
}

func failure(form string, status Status, message string, values map[string]string) Outcome {
	return Outcome{
		Form:         form,
		Status:       status,
		Notification: render.Notification{Kind: render.NotificationError, Message: message},
		Values:       values,
	}
}
