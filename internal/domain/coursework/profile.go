package coursework

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleStudent     = "student"
	RoleTeacher     = "teacher"
	RoleCoordinator = "coordinator"
	RoleAdmin       = "admin"
)

type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName  string    `gorm:"column:full_name" json:"full_name,omitempty"`
	AvatarURL string    `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	Role      string    `gorm:"column:role;not null;default:'student';index" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

func IsValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleCoordinator, RoleAdmin:
		return true
	}
	return false
}

// CanReview reports whether the role may approve or reject resources.
func CanReview(role string) bool {
	return role == RoleCoordinator || role == RoleAdmin
}

func CanUpload(role string) bool {
	return role == RoleTeacher || role == RoleCoordinator || role == RoleAdmin
}

// CanManageStructure reports whether the role may edit courses and their trees.
func CanManageStructure(role string) bool {
	return CanReview(role)
}
