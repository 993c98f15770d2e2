package coursework

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/gcfisi/coursehub-backend/internal/data/repos/testutil"
	types "github.com/gcfisi/coursehub-backend/internal/domain"
	"github.com/gcfisi/coursehub-backend/internal/platform/dbctx"
)

func TestProfileRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewProfileRepo(db, testutil.Logger(t))

	p := &types.Profile{ID: uuid.New(), FullName: "Ada", Role: "teacher"}
	if err := repo.Upsert(dbc, p); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	p.Role = "coordinator"
	if err := repo.Upsert(dbc, p); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	got, err := repo.GetByID(dbc, p.ID)
	if err != nil || got == nil || got.Role != "coordinator" {
		t.Fatalf("GetByID: err=%v got=%+v", err, got)
	}
	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{p.ID, uuid.New()}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
}
