package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"page-summarizer/internal/config"
)

func TestWith_AttachesContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(&buf, config.LogConfig{Level: "debug", Format: "json"}, false)

	ctx := WithJobID(WithUserID(WithTraceID(context.Background(), "tr-1"), "alice"), "job-9")
	With(ctx, base).Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}
	for k, want := range map[string]string{"trace_id": "tr-1", "user": "alice", "job_id": "job-9", "message": "hello"} {
		if entry[k] != want {
			t.Errorf("%s = %v, want %q", k, entry[k], want)
		}
	}
	if TraceID(ctx) != "tr-1" {
		t.Errorf("TraceID = %q", TraceID(ctx))
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.LogConfig{Level: "warn", Format: "json"}, false)
	l.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	l.Warn().Msg("kept")
	if buf.Len() == 0 {
		t.Fatal("warn should be logged")
	}
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.LogConfig{Level: "loud"}, false)
	l.Debug().Msg("dropped")
	l.Info().Msg("kept")
	if !bytes.Contains(buf.Bytes(), []byte("kept")) || bytes.Contains(buf.Bytes(), []byte("dropped")) {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRedact(t *testing.T) {
	if got := Redact("short", false); got != "***" {
		t.Errorf("Redact(short) = %q", got)
	}
	if got := Redact("sk-abcdefghij", false); got != "sk-a...ij" {
		t.Errorf("Redact(long) = %q", got)
	}
	if got := Redact("sk-abcdefghij", true); got != "sk-abcdefghij" {
		t.Errorf("Redact(dev) = %q", got)
	}
}
