package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

func TestNewWithConfigSQLite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("RESOURCE_BUCKET_NAME", "")
	t.Setenv("OTEL_ENABLED", "false")

	log := logger.Nop()
	a, err := NewWithConfig(log, LoadConfig(log))
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	t.Cleanup(a.Close)

	if a.Services.Structure.HasStructure(context.Background(), uuid.New()) {
		t.Fatalf("unknown course should report no structure")
	}

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readiness", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("readiness: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("api without token: status=%d", rec.Code)
	}
}
