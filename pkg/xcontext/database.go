package xcontext

import (
	"context"

	"gorm.io/gorm"
)

type dbTx struct {
	tx   *gorm.DB
	done bool
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the open transaction of the context if any, otherwise the root
// database handle.
func DB(ctx context.Context) *gorm.DB {
	if t, ok := ctx.Value(dbTxKey{}).(*dbTx); ok && !t.done {
		return t.tx
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		return nil
	}

	return db.WithContext(ctx)
}

// WithDBTransaction begins a transaction. Every repository call using the
// returned context goes through this transaction until it is committed or
// rolled back.
func WithDBTransaction(ctx context.Context) context.Context {
	tx := DB(ctx).Begin()
	return context.WithValue(ctx, dbTxKey{}, &dbTx{tx: tx})
}

func CommitDBTransaction(ctx context.Context) error {
	t, ok := ctx.Value(dbTxKey{}).(*dbTx)
	if !ok || t.done {
		return nil
	}

	t.done = true
	return t.tx.Commit().Error
}

// RollbackDBTransaction is a no-op if the transaction was already committed,
// so it is safe to defer right after WithDBTransaction.
func RollbackDBTransaction(ctx context.Context) {
	t, ok := ctx.Value(dbTxKey{}).(*dbTx)
	if !ok || t.done {
		return
	}

	t.done = true
	t.tx.Rollback()
}

func HasDBTransaction(ctx context.Context) bool {
	t, ok := ctx.Value(dbTxKey{}).(*dbTx)
	return ok && !t.done
}

// RunInDBTransaction runs fn in the transaction of ctx if there is one,
// otherwise in a new transaction committed when fn succeeds.
func RunInDBTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if HasDBTransaction(ctx) {
		return fn(ctx)
	}

	ctx = WithDBTransaction(ctx)
	defer RollbackDBTransaction(ctx)

	if err := fn(ctx); err != nil {
		return err
	}

	return CommitDBTransaction(ctx)
}
