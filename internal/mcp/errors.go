package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/recordkeep/internal/domain/access"
	"github.com/rpggio/recordkeep/internal/domain/rent"
	"github.com/rpggio/recordkeep/internal/domain/timeentry"
)

// Error codes reported to clients.
const (
	CodeInvalidAmount    = "INVALID_AMOUNT"
	CodeDuplicateID      = "DUPLICATE_ID"
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidState     = "INVALID_STATE"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInvalidTimeRange = "INVALID_TIME_RANGE"
	CodeInvalidArgument  = "INVALID_ARGUMENT"
	CodeInternal         = "INTERNAL"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
}

// MapError maps domain errors to MCP error codes. Unrecognized errors map to
// INTERNAL without exposing their text.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, rent.ErrInvalidAmount):
		return &APIError{Code: CodeInvalidAmount, Message: "invalid amount", RecoveryHint: "Monthly rent must be positive and the deposit non-negative"}
	case errors.Is(err, rent.ErrDuplicateID), errors.Is(err, timeentry.ErrDuplicateID):
		return &APIError{Code: CodeDuplicateID, Message: "id already exists", RecoveryHint: "Choose an unused id"}
	case errors.Is(err, rent.ErrAgreementNotFound):
		return &APIError{Code: CodeNotFound, Message: "agreement not found", RecoveryHint: "Check the rent_id"}
	case errors.Is(err, timeentry.ErrEntryNotFound):
		return &APIError{Code: CodeNotFound, Message: "time entry not found", RecoveryHint: "Check the entry_id"}
	case errors.Is(err, rent.ErrInvalidState):
		return &APIError{Code: CodeInvalidState, Message: "action not allowed in current status", RecoveryHint: "Call get_agreement to read the status"}
	case errors.Is(err, access.ErrUnauthorized):
		return &APIError{Code: CodeUnauthorized, Message: "caller does not hold the required role"}
	case errors.Is(err, timeentry.ErrInvalidTimeRange):
		return &APIError{Code: CodeInvalidTimeRange, Message: "end_time must be after start_time"}
	case errors.Is(err, ErrInvalidNumber):
		return &APIError{Code: CodeInvalidArgument, Message: err.Error(), RecoveryHint: "Pass ids, times and amounts as decimal strings"}
	default:
		return &APIError{Code: CodeInternal, Message: "internal error"}
	}
}
