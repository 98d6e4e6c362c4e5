package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestSetupJSONAndRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(Config{Level: "debug", Format: "json", Output: &buf}); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	ctx := WithRequest(context.Background(), "req-1")
	FromContext(ctx).Info().Str("path", "/health").Msg("handled")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["request_id"] != "req-1" || entry["path"] != "/health" || entry["message"] != "handled" {
		t.Fatalf("unexpected log entry %v", entry)
	}
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	if err := Setup(Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(Config{Format: "json", Output: &buf}); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	l := WithComponent("backend")
	l.Warn().Msg("slow")
	if !bytes.Contains(buf.Bytes(), []byte(`"component":"backend"`)) {
		t.Fatalf("component missing from %q", buf.String())
	}
}

func TestAnnotateOnlyTouchesRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(Config{Format: "json", Output: &buf}); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	Annotate(context.Background(), "user_id", "leak")
	ctx := WithRequest(context.Background(), "req-2")
	Annotate(ctx, "user_id", "42")
	FromContext(ctx).Info().Msg("done")

	if !bytes.Contains(buf.Bytes(), []byte(`"user_id":"42"`)) {
		t.Fatalf("annotation missing from %q", buf.String())
	}
	buf.Reset()
	l := WithComponent("cli")
	l.Info().Msg("global")
	if bytes.Contains(buf.Bytes(), []byte("leak")) {
		t.Fatalf("annotation leaked into the global logger: %q", buf.String())
	}
}
