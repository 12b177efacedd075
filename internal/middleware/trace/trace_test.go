package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	plog "previaje/internal/log"
	"previaje/internal/metrics"
)

func newTestLogger(buf *bytes.Buffer) *plog.Logger {
	return plog.New(plog.Config{
		Component: plog.ComponentApp,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func TestMiddleware_RequestID(t *testing.T) {
	var buf bytes.Buffer
	m := NewMiddleware(newTestLogger(&buf), func(*http.Request) string { return "198.51.100.1" }, nil)

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		plog.FromContext(r.Context()).Info("inside handler")
	}))

	t.Run("generated", func(t *testing.T) {
		buf.Reset()
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/figures", nil))

		if !strings.HasPrefix(seen, "req_") {
			t.Fatalf("request id = %q, want generated id", seen)
		}
		if got := rr.Header().Get(HeaderRequestID); got != seen {
			t.Fatalf("response header = %q, want %q", got, seen)
		}
		out := buf.String()
		for _, want := range []string{"HTTP request started", "HTTP request completed", "inside handler", "request_id=" + seen, "client_ip=198.51.100.1", "component=http"} {
			if !strings.Contains(out, want) {
				t.Errorf("log output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("propagated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "abc-123")
		h.ServeHTTP(rr, req)
		if seen != "abc-123" {
			t.Fatalf("request id = %q, want abc-123", seen)
		}
	})

	t.Run("invalid header replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "bad id with spaces")
		h.ServeHTTP(httptest.NewRecorder(), req)
		if !strings.HasPrefix(seen, "req_") {
			t.Fatalf("request id = %q, want generated id", seen)
		}
	})
}

func TestMiddleware_StatusAndMetrics(t *testing.T) {
	var buf bytes.Buffer
	reg := metrics.New()
	m := NewMiddleware(newTestLogger(&buf), nil, reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	})

	for _, path := range []string{"/items/1", "/items/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(reg.Requests.WithLabelValues("/items/{id}", "400")); got != 2 {
		t.Fatalf("requests{/items/{id},400} = %v, want 2", got)
	}
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "status_code=400") {
		t.Fatalf("expected warn completion log, got:\n%s", buf.String())
	}
}

func TestGenerateRequestID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := GenerateRequestID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
