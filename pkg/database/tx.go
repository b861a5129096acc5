package database

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// WithTx returns a context carrying an open transaction.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// Conn returns the transaction stored in ctx, or db when there is none.
// Repositories call it so their queries join a caller's transaction.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// InTransaction runs fn inside a transaction. A transaction already present
// in ctx is reused.
func InTransaction(ctx context.Context, db *gorm.DB, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return fn(ctx)
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}

// TxRunner exposes InTransaction behind an interface services can fake.
type TxRunner struct {
	db *gorm.DB
}

// NewTxRunner creates a TxRunner over db.
func NewTxRunner(db *gorm.DB) *TxRunner {
	return &TxRunner{db: db}
}

// InTransaction runs fn inside a transaction.
func (r *TxRunner) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return InTransaction(ctx, r.db, fn)
}
