package app

import (
	"gorm.io/gorm"

	"github.com/gcfisi/coursehub-backend/internal/data/repos"
	"github.com/gcfisi/coursehub-backend/internal/platform/logger"
)

type Repos struct {
	Course        repos.CourseRepo
	StructureNode repos.StructureNodeRepo
	Resource      repos.ResourceRepo
	Profile       repos.ProfileRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Course:        repos.NewCourseRepo(db, log),
		StructureNode: repos.NewStructureNodeRepo(db, log),
		Resource:      repos.NewResourceRepo(db, log),
		Profile:       repos.NewProfileRepo(db, log),
	}
}
