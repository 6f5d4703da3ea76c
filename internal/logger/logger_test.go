package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// resetLogger resets the logger to default state for test isolation
func resetLogger() {
	Init(Options{})
}

func TestInit_Levels(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"default", Options{}, false, true, true},
		{"debug", Options{Debug: true}, true, true, true},
		{"quiet", Options{Quiet: true}, false, false, false},
		{"quiet overrides debug", Options{Debug: true, Quiet: true}, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.opts.Output = buf
			Init(tt.opts)
			defer resetLogger()

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")

			out := buf.String()
			if got := strings.Contains(out, "debug message"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "info message"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tt.wantInfo)
			}
			if got := strings.Contains(out, "warn message"); got != tt.wantWarn {
				t.Errorf("warn logged = %v, want %v", got, tt.wantWarn)
			}
			if !strings.Contains(out, "error message") {
				t.Error("errors are always logged")
			}
		})
	}
}

func TestInit_JSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{JSON: true, Output: buf})
	defer resetLogger()

	Info("cleaned definition", "key", "kw-1")

	out := buf.String()
	if !strings.HasPrefix(out, "{") {
		t.Errorf("expected JSON output, got %q", out)
	}
	if !strings.Contains(out, `"key":"kw-1"`) {
		t.Errorf("expected structured attribute, got %q", out)
	}
}

func TestInit_TextFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer resetLogger()

	Info("wrote export", "entries", 42)

	out := buf.String()
	if !strings.Contains(out, "level=INFO") {
		t.Errorf("expected text level, got %q", out)
	}
	if !strings.Contains(out, "entries=42") {
		t.Errorf("expected structured attribute, got %q", out)
	}
}

func TestInit_CustomLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	custom := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	Init(Options{Logger: custom, Quiet: true})
	defer resetLogger()

	Debug("custom logger wins")

	if !strings.Contains(buf.String(), "custom logger wins") {
		t.Error("custom logger should ignore Quiet")
	}
}

func TestWith(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer resetLogger()

	With("input", "export.json").Info("reading")

	if !strings.Contains(buf.String(), "input=export.json") {
		t.Errorf("expected attribute in output, got %q", buf.String())
	}
}
