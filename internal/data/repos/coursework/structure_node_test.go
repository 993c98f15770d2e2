package coursework

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/gcfisi/coursehub-backend/internal/data/repos/testutil"
	types "github.com/gcfisi/coursehub-backend/internal/domain"
	"github.com/gcfisi/coursehub-backend/internal/platform/dbctx"
)

func TestStructureNodeRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewStructureNodeRepo(db, testutil.Logger(t))

	course := testutil.SeedCourse(t, ctx, tx, nil)
	empty := testutil.SeedCourse(t, ctx, tx, nil)

	if ok, err := repo.ExistsByCourseID(dbc, course.ID); err != nil || ok {
		t.Fatalf("ExistsByCourseID before insert: ok=%v err=%v", ok, err)
	}

	roots := []*types.StructureNode{
		{CourseID: course.ID, Name: "Topics", StructureType: "category", OrderIndex: 2},
		{CourseID: course.ID, Name: "Syllabus", StructureType: "category", OrderIndex: 1},
	}
	if _, err := repo.Create(dbc, roots); err != nil {
		t.Fatalf("Create roots: %v", err)
	}
	children := []*types.StructureNode{
		{CourseID: course.ID, ParentID: &roots[0].ID, Name: "Topic 1", StructureType: "topic", OrderIndex: 1},
		{CourseID: course.ID, ParentID: &roots[0].ID, Name: "Topic 2", StructureType: "topic", OrderIndex: 2},
	}
	if _, err := repo.Create(dbc, children); err != nil {
		t.Fatalf("Create children: %v", err)
	}

	if ok, err := repo.ExistsByCourseID(dbc, course.ID); err != nil || !ok {
		t.Fatalf("ExistsByCourseID after insert: ok=%v err=%v", ok, err)
	}

	rows, err := repo.GetByCourseIDs(dbc, []uuid.UUID{course.ID})
	if err != nil || len(rows) != 4 {
		t.Fatalf("GetByCourseIDs: err=%v len=%d", err, len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].OrderIndex > rows[i].OrderIndex {
			t.Fatalf("GetByCourseIDs not ordered by order_index")
		}
	}

	withStructure, err := repo.CourseIDsWithStructure(dbc, []uuid.UUID{course.ID, empty.ID})
	if err != nil || len(withStructure) != 1 || withStructure[0] != course.ID {
		t.Fatalf("CourseIDsWithStructure: err=%v got=%v", err, withStructure)
	}

	if max, err := repo.MaxOrderIndex(dbc, course.ID, &roots[0].ID); err != nil || max != 2 {
		t.Fatalf("MaxOrderIndex children: max=%d err=%v", max, err)
	}
	if max, err := repo.MaxOrderIndex(dbc, course.ID, nil); err != nil || max != 2 {
		t.Fatalf("MaxOrderIndex roots: max=%d err=%v", max, err)
	}
	if max, err := repo.MaxOrderIndex(dbc, empty.ID, nil); err != nil || max != 0 {
		t.Fatalf("MaxOrderIndex empty: max=%d err=%v", max, err)
	}

	if err := repo.UpdateFields(dbc, children[1].ID, map[string]interface{}{"name": "Topic Two"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if got, err := repo.GetByID(dbc, children[1].ID); err != nil || got == nil || got.Name != "Topic Two" {
		t.Fatalf("GetByID after update: err=%v got=%+v", err, got)
	}

	n, err := repo.DeleteByIDs(dbc, []uuid.UUID{children[0].ID})
	if err != nil || n != 1 {
		t.Fatalf("DeleteByIDs: n=%d err=%v", n, err)
	}

	n, err = repo.DeleteByCourseIDs(dbc, []uuid.UUID{course.ID})
	if err != nil || n == 0 {
		t.Fatalf("DeleteByCourseIDs: n=%d err=%v", n, err)
	}
	if ok, err := repo.ExistsByCourseID(dbc, course.ID); err != nil || ok {
		t.Fatalf("ExistsByCourseID after delete: ok=%v err=%v", ok, err)
	}
}
