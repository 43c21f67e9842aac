package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"scholarhub/internal/log"
)

func TestMiddleware_RequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Component: log.ComponentHTTP, Output: &buf})
	m := NewMiddleware(logger, nil)

	var seen string
	r := gin.New()
	r.Use(m.Handler())
	r.GET("/api/me", func(c *gin.Context) {
		seen = GetRequestID(c.Request.Context())
		log.FromContext(c.Request.Context()).InfoContext(c.Request.Context(), "inside handler")
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	id := w.Header().Get(HeaderRequestID)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("response request id %q is not a uuid", id)
	}
	if seen != id {
		t.Fatalf("handler saw %q, response carried %q", seen, id)
	}

	out := buf.String()
	if strings.Count(out, "request_id="+id) != 2 {
		t.Fatalf("expected handler and access log lines with the request id:\n%s", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "status_code=404") {
		t.Fatalf("4xx responses should be logged at WARN:\n%s", out)
	}
	if m.GetMetrics().TotalRequests != 1 {
		t.Fatalf("TotalRequests = %d", m.GetMetrics().TotalRequests)
	}
}

func TestMiddleware_KeepsValidIncomingID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := log.New(log.Config{Output: &bytes.Buffer{}})
	r := gin.New()
	r.Use(NewMiddleware(logger, nil).Handler())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	incoming := uuid.NewString()
	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"valid uuid", incoming, true},
		{"garbage", "not-a-uuid", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(HeaderRequestID, tt.header)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			got := w.Header().Get(HeaderRequestID)
			if (got == tt.header) != tt.keep {
				t.Fatalf("request id = %q, keep incoming %v", got, tt.keep)
			}
		})
	}
}
