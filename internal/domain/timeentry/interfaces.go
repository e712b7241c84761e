package timeentry

import (
	"context"

	"github.com/rpggio/recordkeep/internal/domain/access"
)

// Repository persists time entries keyed by entry id. It is satisfied by
// repository.Collection[Entry].
type Repository interface {
	Has(ctx context.Context, id uint64) (bool, error)
	Get(ctx context.Context, id uint64) (*Entry, error)
	Set(ctx context.Context, id uint64, entry *Entry) error
}

// ApprovalPolicy decides whether caller may approve entry. A nil policy
// lets anyone approve.
type ApprovalPolicy interface {
	AllowApproval(ctx context.Context, entry *Entry, caller access.Principal) error
}
