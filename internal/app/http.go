package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/gcfisi/coursehub-backend/internal/http"
	httpH "github.com/gcfisi/coursehub-backend/internal/http/handlers"
	httpMW "github.com/gcfisi/coursehub-backend/internal/http/middleware"
	"github.com/gcfisi/coursehub-backend/internal/observability"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	User      *httpH.UserHandler
	Course    *httpH.CourseHandler
	Structure *httpH.StructureHandler
	Content   *httpH.ContentHandler
	Resource  *httpH.ResourceHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, cfg Config, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(db),
		User:      httpH.NewUserHandler(log, s.Actors),
		Course:    httpH.NewCourseHandler(log, s.Actors, s.Courses, s.Structure),
		Structure: httpH.NewStructureHandler(log, s.Actors, s.Structure),
		Content:   httpH.NewContentHandler(log, s.Actors, s.Content),
		Resource:  httpH.NewResourceHandler(log, s.Actors, s.Resources, s.Reviews, cfg.MaxUploadBytes),
	}
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, s.Auth),
	}
}

func routerConfig(log *logger.Logger, cfg Config, h Handlers, mw Middleware, metrics *observability.Metrics) http.RouterConfig {
	return http.RouterConfig{
		Log:              log,
		ServiceName:      cfg.Otel.ServiceName,
		CORSOrigins:      cfg.CORSOrigins,
		Metrics:          metrics,
		AuthMiddleware:   mw.Auth,
		HealthHandler:    h.Health,
		UserHandler:      h.User,
		CourseHandler:    h.Course,
		StructureHandler: h.Structure,
		ContentHandler:   h.Content,
		ResourceHandler:  h.Resource,
	}
}

func wireServer(log *logger.Logger, cfg Config, h Handlers, mw Middleware, metrics *observability.Metrics) (*http.Server, *gin.Engine) {
	srv := http.NewServer(routerConfig(log, cfg, h, mw, metrics))
	return srv, srv.Engine
}
