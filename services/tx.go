package services

import (
	"context"

	"gorm.io/gorm"
)

// withTx fn'i tek transaction içinde çalıştırır; tx, context üzerinden
// repository katmanına taşınır.
func withTx(ctx context.Context, db *gorm.DB, fn func(txCtx context.Context) error) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, "tx", tx))
	})
}
