package database

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// Transactor 在上下文中携带事务，仓储层通过 Conn 取得当前连接
type Transactor struct {
	db *gorm.DB
}

// NewTransactor 创建事务执行器
func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

// InTx 在事务中执行 fn；上下文中已有事务时直接复用
func (t *Transactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Conn 返回上下文中的事务连接，没有事务时返回 db 本身
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
