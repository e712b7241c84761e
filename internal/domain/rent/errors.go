package rent

import (
	"errors"

	"github.com/rpggio/recordkeep/internal/domain/access"
)

var (
	// ErrAgreementNotFound indicates no agreement is stored under the id.
	ErrAgreementNotFound = errors.New("agreement not found")
	// ErrDuplicateID indicates an agreement already exists under the id.
	ErrDuplicateID = errors.New("agreement id already exists")
	// ErrInvalidAmount indicates a non-positive rent or a negative deposit.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidState indicates the agreement's state does not permit the action.
	ErrInvalidState = errors.New("invalid agreement state")
	// ErrUnauthorized indicates the caller is not the party the action requires.
	ErrUnauthorized = access.ErrUnauthorized
)
