package tracing

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNewProvider_StdoutExporterWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewProvider(Config{Enabled: true, Writer: &buf})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	_, span := p.Tracer().Start(context.Background(), "api.ListBorrowers")
	span.End()

	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), "api.ListBorrowers") {
		t.Fatalf("expected exported span, got %q", buf.String())
	}
}

func TestNewProvider_DisabledIsNoop(t *testing.T) {
	p, err := NewProvider(Config{})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if p.Tracer() == nil {
		t.Fatalf("expected tracer")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
