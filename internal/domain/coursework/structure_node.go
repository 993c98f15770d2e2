package coursework

import (
	"time"

	"github.com/google/uuid"
)

const (
	StructureTypeCategory    = "category"
	StructureTypeTopic       = "topic"
	StructureTypeSubcategory = "subcategory"
)

func IsValidStructureType(t string) bool {
	switch t {
	case StructureTypeCategory, StructureTypeTopic, StructureTypeSubcategory:
		return true
	}
	return false
}

// StructureNode is one row of a course's structure tree. Root names are
// unique per course, which is what surfaces concurrent generations as
// duplicate-key failures.
type StructureNode struct {
	ID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_course_structure_root_name,where:parent_id IS NULL" json:"course_id"`
	Course   *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"-"`
	ParentID *uuid.UUID     `gorm:"type:uuid;column:parent_id;index" json:"parent_id"`
	Parent   *StructureNode `gorm:"constraint:OnDelete:CASCADE;foreignKey:ParentID;references:ID" json:"-"`

	Name          string    `gorm:"column:name;not null;uniqueIndex:idx_course_structure_root_name,where:parent_id IS NULL" json:"name"`
	Description   string    `gorm:"column:description;type:text" json:"description,omitempty"`
	StructureType string    `gorm:"column:structure_type;not null" json:"structure_type"`
	OrderIndex    int       `gorm:"column:order_index;not null;default:0" json:"order_index"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (StructureNode) TableName() string { return "course_structure" }

func (n *StructureNode) IsRoot() bool { return n != nil && n.ParentID == nil }
