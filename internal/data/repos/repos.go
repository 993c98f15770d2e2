package repos

import (
	"gorm.io/gorm"

	"github.com/gcfisi/coursehub-backend/internal/data/repos/coursework"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

type CourseRepo = coursework.CourseRepo
type StructureNodeRepo = coursework.StructureNodeRepo
type ResourceRepo = coursework.ResourceRepo
type ProfileRepo = coursework.ProfileRepo

type ResourceFilter = coursework.ResourceFilter

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return coursework.NewCourseRepo(db, baseLog)
}

func NewStructureNodeRepo(db *gorm.DB, baseLog *logger.Logger) StructureNodeRepo {
	return coursework.NewStructureNodeRepo(db, baseLog)
}

func NewResourceRepo(db *gorm.DB, baseLog *logger.Logger) ResourceRepo {
	return coursework.NewResourceRepo(db, baseLog)
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return coursework.NewProfileRepo(db, baseLog)
}
