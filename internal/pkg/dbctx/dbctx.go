package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context carries the request context and, inside a unit of work, the open
// transaction. Repos use Tx when set and their own handle otherwise.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// Background starts a unit of work without a transaction.
func Background(ctx context.Context) Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return Context{Ctx: ctx}
}

// WithTx binds tx to the same request context.
func (c Context) WithTx(tx *gorm.DB) Context {
	return Context{Ctx: c.Context(), Tx: tx}
}

// Context never returns nil.
func (c Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

func (c Context) InTx() bool { return c.Tx != nil }
