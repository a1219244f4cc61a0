package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLoggerWritesJSONLinesAboveLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Debug("should be dropped")
	logger.Info("hello", String("peer", "a"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one line (debug dropped), got %d: %v", len(lines), lines)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("expected valid JSON, got error: %v", err)
	}
	if decoded["message"] != "hello" || decoded["peer"] != "a" {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
}

func TestWithAddsFieldsWithoutMutatingParent(t *testing.T) {
	var buf bytes.Buffer
	base, _ := New(&buf, "debug")
	child := base.With(String("component", "engine"))

	child.Info("tick")
	base.Info("other")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(lines))
	}
	var first map[string]any
	json.Unmarshal([]byte(lines[0]), &first)
	if first["component"] != "engine" {
		t.Fatalf("expected child log to carry component field, got %+v", first)
	}
	var second map[string]any
	json.Unmarshal([]byte(lines[1]), &second)
	if _, ok := second["component"]; ok {
		t.Fatalf("expected parent log to be unaffected by child's With, got %+v", second)
	}
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	if _, err := New(nil, "bogus"); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}
