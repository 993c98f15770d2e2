package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/gcfisi/coursehub-backend/internal/http/handlers"
	httpMW "github.com/gcfisi/coursehub-backend/internal/http/middleware"
	"github.com/gcfisi/coursehub-backend/internal/observability"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	Metrics        *observability.Metrics
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler    *httpH.HealthHandler
	UserHandler      *httpH.UserHandler
	CourseHandler    *httpH.CourseHandler
	StructureHandler *httpH.StructureHandler
	ContentHandler   *httpH.ContentHandler
	ResourceHandler  *httpH.ResourceHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "coursehub-api"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readiness", cfg.HealthHandler.Readiness)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// User (Me)
	if cfg.UserHandler != nil {
		api.GET("/me", cfg.UserHandler.GetMe)
	}

	// Courses
	if cfg.CourseHandler != nil {
		api.GET("/courses", cfg.CourseHandler.ListCourses)
		api.POST("/courses", cfg.CourseHandler.CreateCourse)
		api.GET("/courses/structure-status", cfg.CourseHandler.StructureStatus)
		api.GET("/courses/:id", cfg.CourseHandler.GetCourse)
		api.PUT("/courses/:id", cfg.CourseHandler.UpdateCourse)
		api.DELETE("/courses/:id", cfg.CourseHandler.DeleteCourse)
	}

	// Structure
	if cfg.StructureHandler != nil {
		api.GET("/courses/:id/structure", cfg.StructureHandler.GetTree)
		api.POST("/courses/:id/structure/default", cfg.StructureHandler.GenerateDefault)
		api.POST("/courses/:id/structure/reset", cfg.StructureHandler.Reset)
		api.POST("/courses/:id/structure/nodes", cfg.StructureHandler.CreateNode)
		api.PUT("/structure-nodes/:id", cfg.StructureHandler.UpdateNode)
		api.DELETE("/structure-nodes/:id", cfg.StructureHandler.DeleteNode)
	}

	// Content
	if cfg.ContentHandler != nil {
		api.GET("/courses/:id/content", cfg.ContentHandler.CourseContent)
		api.GET("/courses/:id/content/reviewed", cfg.ContentHandler.ReviewedContent)
	}

	// Resources and review
	if cfg.ResourceHandler != nil {
		api.POST("/resources", cfg.ResourceHandler.Upload)
		api.GET("/resources/pending", cfg.ResourceHandler.ListPending)
		api.GET("/resources/mine", cfg.ResourceHandler.ListMine)
		api.GET("/resources/:id", cfg.ResourceHandler.GetResource)
		api.PATCH("/resources/:id", cfg.ResourceHandler.UpdateTitle)
		api.DELETE("/resources/:id", cfg.ResourceHandler.DeleteResource)
		api.POST("/resources/:id/approve", cfg.ResourceHandler.Approve)
		api.POST("/resources/:id/reject", cfg.ResourceHandler.Reject)
	}

	return r
}
