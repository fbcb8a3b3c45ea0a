package xcontext

import (
	"context"

	"gorm.io/gorm"
)

type dbTransaction struct {
	db *gorm.DB

	// root is the transaction owning the connection. A nested unit joins the
	// transaction of its caller and points to the caller's root.
	root *dbTransaction
	done bool

	afterCommit []func()
}

func (tx *dbTransaction) owner() bool {
	return tx.root == tx
}

// WithDBTransaction begins a transaction. If the context already carries a
// running transaction, the returned context joins it and its commit and
// rollback become no-ops, so the outermost unit decides the outcome.
func WithDBTransaction(ctx context.Context) context.Context {
	if tx, ok := ctx.Value(dbTxKey{}).(*dbTransaction); ok && tx != nil && !tx.done && !tx.root.done {
		return context.WithValue(ctx, dbTxKey{}, &dbTransaction{db: tx.db, root: tx.root})
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		return ctx
	}

	tx := &dbTransaction{db: db.Begin()}
	tx.root = tx
	return context.WithValue(ctx, dbTxKey{}, tx)
}

// CommitDBTransaction commits the transaction of ctx when ctx owns it and
// runs the after-commit hooks. A nested unit only marks itself done. On error
// the transaction is rolled back and the hooks are dropped.
func CommitDBTransaction(ctx context.Context) error {
	tx, ok := ctx.Value(dbTxKey{}).(*dbTransaction)
	if !ok || tx == nil || tx.done {
		return nil
	}

	tx.done = true
	if !tx.owner() {
		return nil
	}

	hooks := tx.afterCommit
	tx.afterCommit = nil

	if err := tx.db.Commit().Error; err != nil {
		tx.db.Rollback()
		return err
	}

	for _, fn := range hooks {
		fn()
	}

	return nil
}

func WithRollbackDBTransaction(ctx context.Context) context.Context {
	tx, ok := ctx.Value(dbTxKey{}).(*dbTransaction)
	if !ok || tx == nil || tx.done {
		return ctx
	}

	tx.done = true
	if tx.owner() {
		tx.db.Rollback()
		tx.afterCommit = nil
	}

	return context.WithValue(ctx, dbTxKey{}, (*dbTransaction)(nil))
}

// AfterCommit defers fn until the outermost transaction of ctx commits. fn is
// dropped if that transaction rolls back. Without a running transaction, fn is
// called immediately.
func AfterCommit(ctx context.Context, fn func()) {
	tx, ok := ctx.Value(dbTxKey{}).(*dbTransaction)
	if !ok || tx == nil || tx.done || tx.root.done {
		fn()
		return
	}

	tx.root.afterCommit = append(tx.root.afterCommit, fn)
}
