package app

import (
	"gorm.io/gorm"

	dataagg "github.com/gcfisi/coursehub-backend/internal/data/aggregates"
	"github.com/gcfisi/coursehub-backend/internal/platform/gcp"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
	"github.com/gcfisi/coursehub-backend/internal/platform/redislock"
	"github.com/gcfisi/coursehub-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	Actors    services.ActorService
	Courses   services.CourseService
	Structure services.StructureService
	Resources services.ResourceService
	Reviews   services.ReviewService
	Content   services.ContentService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, locker redislock.Locker, bucket gcp.BucketService) Services {
	log.Info("Wiring services...")
	template := services.LoadStructureTemplate(log, cfg.StructureTemplatePath)
	return Services{
		Auth:    services.NewAuthService(log, cfg.JWTSecretKey, cfg.JWTIssuer, cfg.AccessTokenTTL),
		Actors:  services.NewActorService(db, log, r.Profile),
		Courses: services.NewCourseService(db, log, r.Course, r.Resource, bucket),
		Structure: services.NewStructureService(
			db, log, dataagg.NewGormTxRunner(db),
			r.Course, r.StructureNode, r.Resource,
			locker, template, cfg.Reset,
		),
		Resources: services.NewResourceService(db, log, r.Course, r.StructureNode, r.Resource, r.Profile, bucket, services.ResourceConfig{
			MaxUploadBytes:  cfg.MaxUploadBytes,
			VisibleOnUpload: cfg.ResourceVisibleOnUpload,
		}),
		Reviews: services.NewReviewService(db, log, r.Resource),
		Content: services.NewContentService(db, log, r.Course, r.StructureNode, r.Resource),
	}
}

// wireLocker uses Redis when configured and reachable, otherwise an
// in-process locker that only serializes resets within this process.
func wireLocker(log *logger.Logger, addr string) redislock.Locker {
	if addr == "" {
		log.Info("REDIS_ADDR not set; using in-process reset lock")
		return redislock.NewLocalLocker()
	}
	locker, err := redislock.NewRedisLocker(log, addr)
	if err != nil {
		log.Warn("redis unavailable; using in-process reset lock", "addr", addr, "error", err)
		return redislock.NewLocalLocker()
	}
	return locker
}
