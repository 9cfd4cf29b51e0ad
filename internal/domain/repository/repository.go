package repository

import (
	"context"
	"errors"
)

// ErrDuplicateKey is returned by Create methods when a unique index rejects
// the row. Implementations translate their driver-specific errors onto it.
var ErrDuplicateKey = errors.New("duplicate key")

// Transactor runs fn inside one database transaction. Repositories called
// with the ctx passed to fn join that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
