package coursework

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Code               string     `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Name               string     `gorm:"column:name;not null" json:"name"`
	Description        string     `gorm:"column:description;type:text" json:"description,omitempty"`
	CurrentSyllabusURL string     `gorm:"column:current_syllabus_url" json:"current_syllabus_url,omitempty"`
	CoordinatorID      *uuid.UUID `gorm:"type:uuid;column:coordinator_id;index" json:"coordinator_id,omitempty"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}

func (Course) TableName() string { return "courses" }
