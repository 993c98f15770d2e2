package aggregates

import (
	"context"

	"gorm.io/gorm"

	domainagg "github.com/gcfisi/coursehub-backend/internal/domain/aggregates"
	"github.com/gcfisi/coursehub-backend/internal/platform/dbctx"
)

// TxRunner provides the transaction boundary for multi-row course writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

// NewGormTxRunner returns a transaction runner backed by GORM transactions.
func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "coursework.tx", "transaction runner has nil db", nil)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

type directRunner struct{}

// NewDirectRunner runs fn without a transaction. Used with in-memory stores.
func NewDirectRunner() TxRunner { return directRunner{} }

func (directRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Background(ctx))
}
