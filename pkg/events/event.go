package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Type names a submission event. It doubles as the AMQP routing key.
type Type string

const (
	BorrowerCreated       Type = "borrower.created"
	BorrowerFailed        Type = "borrower.failed"
	LoanApplied           Type = "loan.applied"
	LoanFailed            Type = "loan.failed"
	LoanRejectedSelection Type = "loan.rejected_selection"
)

// Event records the outcome of one form submission. It carries no personal
// data beyond record identifiers.
type Event struct {
	Type         Type      `json:"type"`
	Form         string    `json:"form"`
	SubmissionID string    `json:"submission_id,omitempty"`
	Status       string    `json:"status"`
	BorrowerID   string    `json:"borrower_id,omitempty"`
	LoanID       string    `json:"loan_id,omitempty"`
	Error        string    `json:"error,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Encode renders the event as a JSON message body.
func (e Event) Encode() ([]byte, error) {
	if e.Type == "" {
		return nil, fmt.Errorf("events: event type is required")
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	return json.Marshal(e)
}

// Publisher hands submission events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// Log writes events to a structured logger.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Publish(_ context.Context, event Event) error {
	body, err := event.Encode()
	if err != nil {
		return err
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("submission.event", "type", string(event.Type), "body", string(body))
	return nil
}

func (Log) Close() error { return nil }
