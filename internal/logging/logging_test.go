package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestSetup_JSONRecordsAtLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(Config{Level: "warn", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	t.Cleanup(func() { slog.SetDefault(Discard()) })

	logger.Info("dropped")
	logger.Warn("borrower.create.failed", "status", 502)

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("expected single json record, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "borrower.create.failed" {
		t.Fatalf("unexpected message: %v", record["msg"])
	}
	if record["status"] != float64(502) {
		t.Fatalf("unexpected status attr: %v", record["status"])
	}
	if L() != logger {
		t.Fatalf("expected global logger to be replaced")
	}
}

func TestSetup_RejectsUnknownInputs(t *testing.T) {
	if _, err := Setup(Config{Level: "loud"}); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := Setup(Config{Format: "xml"}); err == nil {
		t.Fatalf("expected format error")
	}
}
