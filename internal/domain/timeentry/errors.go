package timeentry

import (
	"errors"

	"github.com/rpggio/recordkeep/internal/domain/access"
)

var (
	// ErrEntryNotFound indicates no time entry is stored under the id.
	ErrEntryNotFound = errors.New("time entry not found")
	// ErrDuplicateID indicates a time entry already exists under the id.
	ErrDuplicateID = errors.New("time entry id already exists")
	// ErrInvalidTimeRange indicates end time is not after start time.
	ErrInvalidTimeRange = errors.New("invalid time range")
	// ErrUnauthorized indicates an approval policy rejected the caller.
	ErrUnauthorized = access.ErrUnauthorized
)
