package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/gcfisi/coursehub-backend/internal/domain"
	"github.com/gcfisi/coursehub-backend/internal/domain/coursework"
)

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, role string) *types.Profile {
	tb.Helper()
	p := &types.Profile{
		ID:       uuid.New(),
		FullName: "Test " + role,
		Role:     role,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, coordinatorID *uuid.UUID) *types.Course {
	tb.Helper()
	c := &types.Course{
		ID:            uuid.New(),
		Code:          "C" + strings.ToUpper(uuid.NewString()[:8]),
		Name:          "course",
		CoordinatorID: coordinatorID,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedStructureNode(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, parentID *uuid.UUID, name string, order int) *types.StructureNode {
	tb.Helper()
	typ := coursework.StructureTypeCategory
	if parentID != nil {
		typ = coursework.StructureTypeSubcategory
	}
	n := &types.StructureNode{
		ID:            uuid.New(),
		CourseID:      courseID,
		ParentID:      parentID,
		Name:          name,
		StructureType: typ,
		OrderIndex:    order,
	}
	if err := tx.WithContext(ctx).Create(n).Error; err != nil {
		tb.Fatalf("seed structure node: %v", err)
	}
	return n
}

func SeedResource(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID, structureID, uploaderID uuid.UUID, status string) *types.Resource {
	tb.Helper()
	r := &types.Resource{
		ID:           uuid.New(),
		CourseID:     courseID,
		StructureID:  structureID,
		UploaderID:   uploaderID,
		Title:        "resource",
		ResourceType: coursework.ResourceTypeLink,
		URL:          "https://example.com/r",
		Tags:         []string{"intro"},
		Status:       status,
		IsVisible:    status != coursework.ResourceStatusRejected,
	}
	if status != coursework.ResourceStatusPending {
		now := time.Now().UTC()
		r.ReviewedBy = PtrUUID(uploaderID)
		r.ReviewedAt = &now
	}
	if status == coursework.ResourceStatusRejected {
		reason := "rejected in fixture"
		r.RejectionReason = &reason
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed resource: %v", err)
	}
	return r
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
