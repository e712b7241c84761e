// Package access holds the role check shared by every record family: a
// transition names the role it needs, the record says which principal holds
// that role, and the caller must be that principal.
package access

import (
	"errors"
	"fmt"
)

// ErrUnauthorized indicates the caller does not hold the required role.
var ErrUnauthorized = errors.New("unauthorized")

// Principal is an opaque, already verified caller identity.
type Principal string

// Role names a party recorded on a record.
type Role string

// RoleHolder is implemented by records that record principals per role.
type RoleHolder interface {
	// PrincipalFor returns the principal holding role, or false if the record
	// has no such role.
	PrincipalFor(role Role) (Principal, bool)
}

// Require returns ErrUnauthorized unless caller holds role on rec.
func Require(rec RoleHolder, role Role, caller Principal) error {
	if caller == "" {
		return fmt.Errorf("%w: no caller identity", ErrUnauthorized)
	}
	holder, ok := rec.PrincipalFor(role)
	if !ok || holder != caller {
		return fmt.Errorf("%w: %s required", ErrUnauthorized, role)
	}
	return nil
}
