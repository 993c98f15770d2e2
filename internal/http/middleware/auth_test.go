package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/gcfisi/coursehub-backend/internal/platform/ctxutil"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
	"github.com/gcfisi/coursehub-backend/internal/services"
)

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := services.NewAuthService(logger.Nop(), "secret", "", time.Minute)
	userID := uuid.New()
	tok, err := auth.MintToken(userID)
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}

	r := gin.New()
	r.Use(NewAuthMiddleware(logger.Nop(), auth).RequireAuth())
	r.GET("/api/me", func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.String(http.StatusOK, rd.UserID.String())
	})

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"bearer", "Bearer " + tok, "", http.StatusOK},
		{"lowercase scheme", "bearer " + tok, "", http.StatusOK},
		{"query token", "", "?token=" + tok, http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/me"+tc.query, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.status {
			t.Fatalf("%s: status=%d want %d", tc.name, rec.Code, tc.status)
		}
		if tc.status == http.StatusOK && rec.Body.String() != userID.String() {
			t.Fatalf("%s: body=%q", tc.name, rec.Body.String())
		}
	}
}

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		c.String(http.StatusOK, td.RequestID)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Body.String() != "req-123" || rec.Header().Get("X-Request-Id") != "req-123" {
		t.Fatalf("request id not propagated: body=%q header=%q", rec.Body.String(), rec.Header().Get("X-Request-Id"))
	}
	if rec.Header().Get("X-Trace-Id") == "" {
		t.Fatalf("trace id not generated")
	}
}

func TestAttachTraceContextReplacesUnsafeRequestIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.GetTraceData(c.Request.Context()).RequestID)
	})

	long := make([]byte, maxRequestIDLen+1)
	for i := range long {
		long[i] = 'a'
	}
	cases := []string{"", "bad id", "inject\"quote", "line\nbreak", string(long)}
	for _, in := range cases {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if in != "" {
			req.Header.Set("X-Request-Id", in)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		got := rec.Header().Get("X-Request-Id")
		if got == in || rec.Body.String() != got {
			t.Fatalf("request id %q should be replaced, got header=%q body=%q", in, got, rec.Body.String())
		}
		if _, err := uuid.Parse(got); err != nil {
			t.Fatalf("replacement request id %q is not a uuid", got)
		}
	}
}

func TestAttachTraceContextPrefersActiveSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	spanTrace, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: spanTrace, SpanID: spanID})

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.Query("span") == "1" {
			c.Request = c.Request.WithContext(trace.ContextWithSpanContext(c.Request.Context(), sc))
		}
		c.Next()
	})
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.GetTraceData(c.Request.Context()).TraceID)
	})

	cases := []struct {
		name   string
		query  string
		header string
		want   string
	}{
		{name: "span beats header", query: "?span=1", header: "0af7651916cd43dd8448eb211c80319c", want: spanTrace.String()},
		{name: "valid header without span", header: "0af7651916cd43dd8448eb211c80319c", want: "0af7651916cd43dd8448eb211c80319c"},
		{name: "malformed header", header: "not-a-trace"},
		{name: "zero header", header: "00000000000000000000000000000000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x"+tc.query, nil)
			req.Header.Set("X-Trace-Id", tc.header)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			got := rec.Header().Get("X-Trace-Id")
			if rec.Body.String() != got {
				t.Fatalf("context trace id %q differs from header %q", rec.Body.String(), got)
			}
			if tc.want != "" {
				if got != tc.want {
					t.Fatalf("trace id=%q want %q", got, tc.want)
				}
				return
			}
			if got == tc.header {
				t.Fatalf("malformed trace id %q was echoed", tc.header)
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Fatalf("generated trace id %q is not a uuid", got)
			}
		})
	}
}
