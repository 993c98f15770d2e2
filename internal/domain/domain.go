package domain

import (
	"github.com/gcfisi/coursehub-backend/internal/domain/coursework"
)

type Course = coursework.Course
type StructureNode = coursework.StructureNode
type Resource = coursework.Resource
type Profile = coursework.Profile

// AllModels lists every persisted model in migration order.
func AllModels() []any {
	return []any{
		&Profile{},
		&Course{},
		&StructureNode{},
		&Resource{},
	}
}
