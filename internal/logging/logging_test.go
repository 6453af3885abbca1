package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestRunLoggerWritesJSONL(t *testing.T) {
	base := t.TempDir()
	work := t.TempDir()

	logger, err := NewRunLogger(base, work)
	if err != nil {
		t.Fatalf("NewRunLogger failed: %v", err)
	}
	defer logger.Close()

	events := []Event{
		{Type: "command", Command: []string{"agent", "-p", "hi"}},
		{Type: "assistant_message", Content: "hello"},
		{Type: "result", Content: "{}"},
	}
	for _, e := range events {
		if err := logger.Write(e); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := os.Open(logger.LogPath)
	if err != nil {
		t.Fatalf("open log file: %v", err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines+1, err)
		}
		if e.Timestamp.IsZero() {
			t.Errorf("line %d has no timestamp", lines+1)
		}
		lines++
	}
	if lines != len(events) {
		t.Errorf("log has %d lines, want %d", lines, len(events))
	}

	if !strings.HasPrefix(logger.Dir, base) {
		t.Errorf("log dir %q not under base %q", logger.Dir, base)
	}
}

func TestRunLoggerEmptyBaseDir(t *testing.T) {
	if _, err := NewRunLogger("", t.TempDir()); err == nil {
		t.Error("empty base dir accepted")
	}
}

func TestNilRunLoggerIsSafe(t *testing.T) {
	var logger *RunLogger
	if err := logger.Write(Event{Type: "result"}); err != nil {
		t.Errorf("nil logger Write = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("nil logger Close = %v", err)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"my-project", "my-project"},
		{"My Project!", "My_Project"},
		{"a//b", "a_b"},
		{"", "project"},
		{"***", "project"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type recordingWriter struct {
	count int
}

func (r *recordingWriter) Write(Event) error {
	r.count++
	return nil
}

func TestTee(t *testing.T) {
	a := &recordingWriter{}
	b := &recordingWriter{}
	tee := Tee{a, b}
	if err := tee.Write(Event{Type: "tool", Tool: "Read"}); err != nil {
		t.Fatalf("Tee.Write failed: %v", err)
	}
	if a.count != 1 || b.count != 1 {
		t.Errorf("writers saw %d and %d events, want 1 and 1", a.count, b.count)
	}
}
