package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestAnonymize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"signup for foo@tezu.ac.in", "signup for [REDACTED_EMAIL]"},
		{"token eyJhbGciOi.abc.def here", "token [REDACTED_TOKEN] here"},
		{"nothing to hide", "nothing to hide"},
	}
	for _, tc := range tests {
		if got := Anonymize(tc.in); got != tc.want {
			t.Errorf("Anonymize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLogger_ErrorWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.Error("http/signup", "lookup failed for a@tezu.ac.in", errors.New("dial b@tezu.ernet.in: refused"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["level"] != "error" || entry["module"] != "http/signup" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if strings.Contains(buf.String(), "@tezu") {
		t.Fatalf("email leaked into log: %s", buf.String())
	}
	if entry["error"] != "dial [REDACTED_EMAIL]: refused" {
		t.Fatalf("unexpected error field: %v", entry["error"])
	}
}

func TestLogger_InfoWithoutError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.Info("realtime", "client connected")

	if !strings.Contains(buf.String(), `"message":"client connected"`) {
		t.Fatalf("missing message: %s", buf.String())
	}
	if strings.Contains(buf.String(), `"error"`) {
		t.Fatalf("info entry should not carry an error field: %s", buf.String())
	}
}
