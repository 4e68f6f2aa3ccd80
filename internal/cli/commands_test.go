package cli

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-alohomora/internal/config"
	"github.com/goliatone/go-alohomora/pkg/events"
	"github.com/goliatone/go-alohomora/pkg/renderers/tui"
)

// scriptedDriver answers prompts in order without a terminal.
type scriptedDriver struct {
	inputs  []string
	confirm bool
}

func (d *scriptedDriver) Input(context.Context, tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	v := d.inputs[0]
	d.inputs = d.inputs[1:]
	return v, nil
}

func (d *scriptedDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	return d.confirm, nil
}

func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	return -1, errors.New("no select scripted")
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"ALOHOMORA_ADDR", "ALOHOMORA_LOG_LEVEL", "JAEGER_ENDPOINT", "API_HOST"} {
		t.Setenv(key, "")
	}
}

func TestPromptLogsFailedSubmission(t *testing.T) {
	isolateEnv(t)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"detail":"database unavailable"}`)
	}))
	t.Cleanup(upstream.Close)
	t.Setenv("ALOHOMORA_API_BASE_URL", upstream.URL)

	prev := newPromptDriver
	newPromptDriver = func(io.Writer) tui.PromptDriver {
		return &scriptedDriver{inputs: []string{"Ada", "ada@example.com", "52000", "4"}}
	}
	t.Cleanup(func() { newPromptDriver = prev })

	out, err := execute(t, "prompt", "borrower")
	if err == nil {
		t.Fatalf("expected the failed submission to return an error")
	}
	if !strings.Contains(out, "borrower.create.failed") {
		t.Fatalf("expected failure to be logged, got:\n%s", out)
	}
}

type closeRecorder struct {
	events.Publisher
	closed atomic.Bool
}

func (c *closeRecorder) Close() error {
	c.closed.Store(true)
	return c.Publisher.Close()
}

func TestServeAppClosesAppWhenSetupFails(t *testing.T) {
	isolateEnv(t)

	cfg := config.Default(func(string) (string, bool) { return "", false })
	cfg.Theme.Name = "missing-theme"

	a, err := newApp(context.Background(), cfg, io.Discard)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	recorder := &closeRecorder{Publisher: a.publisher}
	a.publisher = recorder

	if err := serveApp(context.Background(), cfg, a); err == nil {
		t.Fatalf("expected unknown theme to fail")
	}
	if !recorder.closed.Load() {
		t.Fatalf("expected the publisher to be closed")
	}
}
