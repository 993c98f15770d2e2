package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/gcfisi/coursehub-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return EnsureCourseworkIndexes(db)
}

func EnsureCourseworkIndexes(db *gorm.DB) error {
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_course_structure_course_parent_order ON course_structure(course_id, parent_id, order_index);`).Error; err != nil {
		return fmt.Errorf("create idx_course_structure_course_parent_order: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_resources_course_status_visible ON resources(course_id, status, is_visible);`).Error; err != nil {
		return fmt.Errorf("create idx_resources_course_status_visible: %w", err)
	}
	return nil
}
