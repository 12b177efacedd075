package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{
		Component: component,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentApp).With(FieldRequestID, "r1")

	logger.WithComponent(ComponentLoader).Info("loaded")
	out := buf.String()
	if strings.Count(out, "component=") != 1 || !strings.Contains(out, "component=loader") {
		t.Fatalf("expected a single loader component, got %q", out)
	}
	if strings.Contains(out, "request_id") {
		t.Fatalf("attributes must not carry over to another component: %q", out)
	}
	if logger.Component() != ComponentApp {
		t.Fatalf("Component() = %q", logger.Component())
	}
}

func TestLogFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentView)

	fields := NewFields().
		WithComponent("ignored").
		WithView(2, "2021-03-01", true).
		WithTable("travel", 14).
		WithError(errors.New("boom"))
	logger.LogFields(context.Background(), slog.LevelWarn, "rendered", fields)

	out := buf.String()
	for _, want := range []string{"level=WARN", "component=view", "date_index=2", "month=2021-03-01", "normalize=true", "table=travel", "rows=14", "error=boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
	if strings.Contains(out, "ignored") {
		t.Fatalf("component field must come from the logger: %s", out)
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentHTTP)

	var got *Logger
	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "abc" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = FromContext(r.Context())
			LogHTTPEnd(r.Context(), r, http.StatusInternalServerError, 12, "198.51.100.2")
		}),
	))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/figures?date=1", nil))

	if got == nil || got.Component() != ComponentHTTP {
		t.Fatalf("FromContext() did not return the request logger")
	}
	out := buf.String()
	for _, want := range []string{"level=ERROR", "request_id=abc", "status_code=500", "duration_ms=12", "success=false", "query=\"date=1\""} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}

	if FromContext(context.Background()).Component() != ComponentApp {
		t.Fatalf("FromContext() without logger must fall back to the app component")
	}
}
