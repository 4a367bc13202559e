package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"fatal", FatalLevel},
		{"bogus", InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithConfig(Config{Level: WarnLevel, Writer: &buf, NoColor: true})

	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at warn level: %q", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "shown") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestLoggerFieldsAndPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithConfig(Config{Level: DebugLevel, Writer: &buf, NoColor: true})

	l.WithPrefix("engagement").WithFields(map[string]interface{}{"tick": 3, "class": "chaff"}).Debug("spawned")

	want := "DEBUG [engagement] class=chaff tick=3 spawned\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("escape codes written with color disabled")
	}
}

func TestDerivedLoggerSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWithConfig(Config{Level: InfoLevel, Writer: &buf, NoColor: true})
	child := parent.WithPrefix("child")

	parent.(*logger).mu.Lock()
	parent.(*logger).level = DebugLevel
	parent.(*logger).mu.Unlock()

	child.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("child did not follow parent level: %q", buf.String())
	}
}

func TestColorOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithConfig(Config{Level: InfoLevel, Writer: &buf})
	l.Error("boom")

	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected escape codes, got %q", buf.String())
	}
}
