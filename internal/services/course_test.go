package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	domainagg "github.com/gcfisi/coursehub-backend/internal/domain/aggregates"
	"github.com/gcfisi/coursehub-backend/internal/domain/coursework"
)

func TestCreateCourseNormalizesCode(t *testing.T) {
	e := newTestEnv(t)
	svc := NewCourseService(e.db, e.log, e.courses, e.resources, nil)
	coord := e.actor(t, coursework.RoleCoordinator)

	c, err := svc.Create(e.ctx, coord, CourseInput{Code: " cs101 ", Name: " Databases "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.Code != "CS101" || c.Name != "Databases" {
		t.Fatalf("unexpected course: %+v", c)
	}

	_, err = svc.Create(e.ctx, coord, CourseInput{Code: "Cs101", Name: "Other"})
	if !errors.Is(err, ErrCourseCodeTaken) {
		t.Fatalf("expected ErrCourseCodeTaken, got %v", err)
	}
	if domainagg.ReasonOf(err) != "course_code_taken" {
		t.Fatalf("reason=%q", domainagg.ReasonOf(err))
	}

	if _, err := svc.Create(e.ctx, coord, CourseInput{Code: "X1"}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("missing name: expected validation, got %v", err)
	}
	teacher := e.actor(t, coursework.RoleTeacher)
	if _, err := svc.Create(e.ctx, teacher, CourseInput{Code: "X2", Name: "n"}); !domainagg.IsCode(err, domainagg.CodeForbidden) {
		t.Fatalf("teacher: expected forbidden, got %v", err)
	}
}

func TestListAndUpdateCourse(t *testing.T) {
	e := newTestEnv(t)
	svc := NewCourseService(e.db, e.log, e.courses, e.resources, nil)
	coord := e.actor(t, coursework.RoleCoordinator)
	b, err := svc.Create(e.ctx, coord, CourseInput{Code: "B200", Name: "Networks"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(e.ctx, coord, CourseInput{Code: "A100", Name: "Algorithms"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rows, err := svc.List(e.ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 || rows[0].Code != "A100" {
		t.Fatalf("expected courses ordered by code, got %d rows", len(rows))
	}

	name := "Computer Networks"
	url := " https://example.com/syllabus.pdf "
	updated, err := svc.Update(e.ctx, coord, b.ID, CourseUpdate{Name: &name, CurrentSyllabusURL: &url, CoordinatorID: &coord.UserID})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != name || updated.CurrentSyllabusURL != strings.TrimSpace(url) {
		t.Fatalf("unexpected course: %+v", updated)
	}
	if updated.CoordinatorID == nil || *updated.CoordinatorID != coord.UserID {
		t.Fatalf("coordinator not set")
	}

	if _, err := svc.Update(e.ctx, coord, uuid.New(), CourseUpdate{Name: &name}); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestDeleteCourseCascades(t *testing.T) {
	e := newTestEnv(t)
	bucket := newMemBucket()
	svc := NewCourseService(e.db, e.log, e.courses, e.resources, bucket)
	coord := e.actor(t, coursework.RoleCoordinator)
	course := e.course(t)
	_, _, leaf := seedTree(t, e, course.ID)
	r := seedResource(t, e, leaf, coord.UserID, coursework.ResourceStatusApproved)
	if err := e.resources.UpdateFields(dbcOf(e), r.ID, map[string]interface{}{"storage_path": "resources/x/1_a.pdf"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	if err := svc.Delete(e.ctx, coord, course.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := e.countNodes(t, course.ID); got != 0 {
		t.Fatalf("structure not cascaded: %d rows", got)
	}
	if gone, err := e.resources.GetByID(dbcOf(e), r.ID); err != nil || gone != nil {
		t.Fatalf("resource not cascaded: %v %v", gone, err)
	}
	if len(bucket.deleted) != 1 || bucket.deleted[0] != "resources/x/1_a.pdf" {
		t.Fatalf("stored files not removed: %v", bucket.deleted)
	}
	if _, err := svc.Get(e.ctx, course.ID); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}
