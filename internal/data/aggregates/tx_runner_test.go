package aggregates

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/gcfisi/coursehub-backend/internal/data/repos/testutil"
	types "github.com/gcfisi/coursehub-backend/internal/domain"
	domainagg "github.com/gcfisi/coursehub-backend/internal/domain/aggregates"
	"github.com/gcfisi/coursehub-backend/internal/platform/dbctx"
)

func TestGormTxRunnerRollsBack(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	runner := NewGormTxRunner(db)

	code := "TX" + uuid.NewString()[:6]
	boom := errors.New("boom")
	err := runner.InTx(ctx, func(dbc dbctx.Context) error {
		if err := dbc.Tx.Create(&types.Course{ID: uuid.New(), Code: code, Name: "tx"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	var n int64
	if err := db.WithContext(ctx).Model(&types.Course{}).Where("code = ?", code).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected rollback, found %d rows", n)
	}
}

func TestNilRunner(t *testing.T) {
	var r *gormTxRunner
	err := r.InTx(context.Background(), func(dbctx.Context) error { return nil })
	if !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestDirectRunner(t *testing.T) {
	called := false
	err := NewDirectRunner().InTx(context.Background(), func(dbc dbctx.Context) error {
		called = dbc.Tx == nil
		return nil
	})
	if err != nil || !called {
		t.Fatalf("direct runner: err=%v called=%v", err, called)
	}
}
