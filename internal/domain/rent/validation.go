package rent

import (
	"fmt"

	"github.com/rpggio/recordkeep/internal/domain/access"
)

// Action is a mutating operation on an existing agreement.
type Action string

const (
	ActionActivate Action = "activate"
	ActionPayRent  Action = "pay_rent"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

type transition struct {
	role access.Role
	from Status
	to   Status
}

// Paying rent keeps the agreement Active; every other action changes state.
var transitions = map[Action]transition{
	ActionActivate: {role: RoleTenant, from: StatusCreated, to: StatusActive},
	ActionPayRent:  {role: RoleTenant, from: StatusActive, to: StatusActive},
	ActionComplete: {role: RoleLandlord, from: StatusActive, to: StatusCompleted},
	ActionCancel:   {role: RoleLandlord, from: StatusCreated, to: StatusCancelled},
}

// ValidateCreateInput checks the amounts of a new agreement.
func ValidateCreateInput(req CreateRequest) error {
	if req.MonthlyRent <= 0 {
		return fmt.Errorf("%w: monthly rent must be positive", ErrInvalidAmount)
	}
	if req.SecurityDeposit < 0 {
		return fmt.Errorf("%w: security deposit must not be negative", ErrInvalidAmount)
	}
	return nil
}

// ValidateTransition checks that caller may perform action on ag and returns
// the resulting status. The role check runs before the state check.
func ValidateTransition(ag *Agreement, action Action, caller access.Principal) (Status, error) {
	t, ok := transitions[action]
	if !ok {
		return "", fmt.Errorf("unknown agreement action %q", action)
	}
	if err := access.Require(ag, t.role, caller); err != nil {
		return "", err
	}
	if ag.Status.Terminal() {
		return "", fmt.Errorf("%w: agreement is %s and final", ErrInvalidState, ag.Status)
	}
	if ag.Status != t.from {
		return "", fmt.Errorf("%w: %s requires %s, agreement is %s", ErrInvalidState, action, t.from, ag.Status)
	}
	return t.to, nil
}

