package rent

import "context"

// Repository persists agreements keyed by rent id. It is satisfied by
// repository.Collection[Agreement].
type Repository interface {
	Has(ctx context.Context, id uint64) (bool, error)
	Get(ctx context.Context, id uint64) (*Agreement, error)
	Set(ctx context.Context, id uint64, ag *Agreement) error
}
