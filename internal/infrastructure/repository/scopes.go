package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ctxKey string

// txKey carries the *gorm.DB of an open transaction
const txKey ctxKey = "gorm_tx"

// FirmScope returns a GORM scope that filters by firm.
// Every query on firm-owned tables goes through it.
func FirmScope(firmID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if firmID == uuid.Nil {
			// Fail-safe: a missing firm matches nothing
			return db.Where("1 = 0")
		}
		return db.Where("firm_id = ?", firmID)
	}
}

// conn returns the transaction bound to ctx, or db when there is none
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
