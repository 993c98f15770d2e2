package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gcfisi/coursehub-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	maxRequestIDLen = 128
)

// AttachTraceContext stamps every request with a trace id and a request id,
// echoes both as response headers and records them for request logging.
//
// The trace id of the active span wins; a client X-Trace-Id is only used when
// no span is recording and it is a well-formed W3C trace id. Client request ids
// are kept when they are short and printable, otherwise a fresh one is issued.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		reqID := requestIDFrom(c.GetHeader(headerRequestID))
		traceID := traceIDFrom(trace.SpanContextFromContext(ctx), c.GetHeader(headerTraceID))

		span := trace.SpanFromContext(ctx)
		span.SetAttributes(attribute.String("request_id", reqID))
		if id := c.Param("id"); id != "" {
			span.SetAttributes(attribute.String("coursehub.entity_id", id))
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(ctx, &ctxutil.TraceData{
			TraceID:   traceID,
			RequestID: reqID,
		}))
		c.Writer.Header().Set(headerTraceID, traceID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Next()
	}
}

func traceIDFrom(sc trace.SpanContext, header string) string {
	if sc.HasTraceID() {
		return sc.TraceID().String()
	}
	if tid, err := trace.TraceIDFromHex(header); err == nil && tid.IsValid() {
		return tid.String()
	}
	return uuid.New().String()
}

func requestIDFrom(header string) string {
	if validRequestID(header) {
		return header
	}
	return uuid.New().String()
}

// validRequestID accepts ids made of [A-Za-z0-9._:-].
func validRequestID(s string) bool {
	if s == "" || len(s) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-' || ch == '_' || ch == '.' || ch == ':':
		default:
			return false
		}
	}
	return true
}
