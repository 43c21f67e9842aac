package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" DEBUG ", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentWorker, Output: &buf})
	logger.Info("hello")

	out := buf.String()
	if !strings.Contains(out, "component=worker") {
		t.Fatalf("missing component in %q", out)
	}
	if logger.Component() != ComponentWorker {
		t.Fatalf("Component() = %q", logger.Component())
	}
}

func TestNewDefaultsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf})
	if logger.Component() != ComponentApp {
		t.Fatalf("Component() = %q, want %q", logger.Component(), ComponentApp)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Output: &buf})
	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Fatalf("default component = %q", got.Component())
	}

	var buf bytes.Buffer
	logger := New(Config{Output: &buf}).With(FieldRequestID, "abc")
	ctx := WithContext(context.Background(), logger)
	FromContext(ctx).Info("scoped")

	if !strings.Contains(buf.String(), "request_id=abc") {
		t.Fatalf("request logger not used: %q", buf.String())
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithRequestID("").
		WithOperation(OpTransition).
		WithUser("jdoe", "").
		WithError(errors.New("boom"), ErrorTypeDatabase).
		WithHTTPResponse(404, 12, "12ms")

	if _, ok := f[FieldRequestID]; ok {
		t.Fatal("empty request id should be omitted")
	}
	if _, ok := f[FieldAccountType]; ok {
		t.Fatal("empty account type should be omitted")
	}
	if f[FieldError] != "boom" || f[FieldErrorType] != ErrorTypeDatabase {
		t.Fatalf("error fields = %v, %v", f[FieldError], f[FieldErrorType])
	}
	if f[FieldSuccess] != false {
		t.Fatalf("success = %v, want false", f[FieldSuccess])
	}
	if got := len(f.ToSlice()); got != 2*len(f) {
		t.Fatalf("ToSlice len = %d, want %d", got, 2*len(f))
	}

	if g := NewFields().WithError(nil, ErrorTypeInternal); len(g) != 0 {
		t.Fatalf("nil error added fields: %v", g)
	}
}
