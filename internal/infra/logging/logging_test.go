//go:build !integration

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"aria-support-chat/internal/config"
)

func TestWith_AddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := newWithWriter(config.LogConfig{Level: "debug", Format: "json"}, false, &buf)

	ctx := WithSessID(WithTraceID(context.Background(), "trace-1"), "user_1")
	With(ctx, base).Info().Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}
	if line["trace_id"] != "trace-1" || line["session_id"] != "user_1" {
		t.Errorf("missing context fields: %v", line)
	}
	if TraceID(ctx) != "trace-1" {
		t.Errorf("TraceID: got %q", TraceID(ctx))
	}
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(config.LogConfig{Level: "warn", Format: "json"}, false, &buf)
	l.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Errorf("info line should be filtered at warn level: %s", buf.String())
	}
	l.Warn().Msg("kept")
	if buf.Len() == 0 {
		t.Errorf("warn line should be written")
	}
}

func TestRedactAndPreview(t *testing.T) {
	if got := Redact("tui@example.co.nz", false); got != "tui@...nz" {
		t.Errorf("Redact: got %q", got)
	}
	if got := Redact("short", false); got != "***" {
		t.Errorf("Redact short: got %q", got)
	}
	if got := Redact("tui@example.co.nz", true); got != "tui@example.co.nz" {
		t.Errorf("Redact dev: got %q", got)
	}
	if got := Preview("Kia ora koutou", 7); got != "Kia ora..." {
		t.Errorf("Preview: got %q", got)
	}
}
