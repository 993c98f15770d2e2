package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/gcfisi/coursehub-backend/internal/domain/aggregates"
	"github.com/gcfisi/coursehub-backend/internal/platform/apierr"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

// RespondServiceError maps a service error to its HTTP status and envelope.
// Server-side failures are logged and their details withheld from the client.
func RespondServiceError(c *gin.Context, log *logger.Logger, err error, fallback string) {
	ae := FromServiceError(err, fallback)
	if ae == nil {
		ae = apierr.New(http.StatusInternalServerError, fallback, errors.New("unknown error"))
	}
	if ae.Status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed", "path", c.FullPath(), "status", ae.Status, "code", ae.Code, "error", err)
		}
		if ae.Status == http.StatusInternalServerError {
			RespondError(c, ae.Status, ae.Code, errors.New("internal server error"))
			return
		}
	}
	RespondError(c, ae.Status, ae.Code, ae.Err)
}

// FromServiceError maps a domain error onto an HTTP status and error code.
// The code is the error's reason when it has one. Unclassified errors become
// 500 with the fallback code.
func FromServiceError(err error, fallback string) *apierr.Error {
	if err == nil {
		return nil
	}
	if ae, ok := apierr.As(err); ok {
		return ae
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apierr.New(http.StatusServiceUnavailable, string(domainagg.CodeRetryable), err)
	}

	code := domainagg.CodeOf(err)
	status := StatusForCode(code)
	if status == http.StatusInternalServerError {
		if fallback == "" {
			fallback = string(domainagg.CodeInternal)
		}
		return apierr.New(status, fallback, err)
	}
	apiCode := domainagg.ReasonOf(err)
	if apiCode == "" {
		apiCode = string(code)
	}
	return apierr.New(status, apiCode, err)
}

func StatusForCode(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation:
		return http.StatusBadRequest
	case domainagg.CodeUnauthorized:
		return http.StatusUnauthorized
	case domainagg.CodeForbidden:
		return http.StatusForbidden
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeConflict, domainagg.CodeInvariantViolation, domainagg.CodePreconditionFailed:
		return http.StatusConflict
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
