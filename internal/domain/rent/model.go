package rent

import (
	"fmt"

	"github.com/rpggio/recordkeep/internal/domain/access"
)

// Namespace is the store tag for rent agreements.
const Namespace = "RENT"

// Status is the lifecycle state of an agreement
type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// UnmarshalText rejects unknown states so a stored record never decodes into
// a status outside the closed set.
func (s *Status) UnmarshalText(text []byte) error {
	v := Status(text)
	if !v.Valid() {
		return fmt.Errorf("unknown agreement status %q", string(text))
	}
	*s = v
	return nil
}

// Parties on an agreement.
const (
	RoleLandlord access.Role = "landlord"
	RoleTenant   access.Role = "tenant"
)

// Agreement is a rent agreement between a landlord and a tenant
type Agreement struct {
	RentID          uint64           `json:"rent_id"`
	Landlord        access.Principal `json:"landlord"`
	Tenant          access.Principal `json:"tenant"`
	MonthlyRent     int64            `json:"monthly_rent"`
	SecurityDeposit int64            `json:"security_deposit"`
	Status          Status           `json:"status"`
	MonthsPaid      uint32           `json:"months_paid"`
}

// PrincipalFor implements access.RoleHolder.
func (a *Agreement) PrincipalFor(role access.Role) (access.Principal, bool) {
	switch role {
	case RoleLandlord:
		return a.Landlord, true
	case RoleTenant:
		return a.Tenant, true
	}
	return "", false
}
