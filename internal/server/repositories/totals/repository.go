package totals

import "context"

// Repository keeps the incrementally maintained total of locked funds.
type Repository interface {
	Get(ctx context.Context) (uint64, error)
	Add(ctx context.Context, credit, debit uint64) (uint64, error)
	Set(ctx context.Context, total uint64) error
}
