package mcp

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rpggio/recordkeep/internal/domain/rent"
	"github.com/rpggio/recordkeep/internal/domain/timeentry"
)

// 64-bit ids, timestamps and amounts travel as decimal strings. JSON numbers
// lose precision above 2^53 once a client or the SDK decodes them as doubles.

// ErrInvalidNumber indicates a numeric argument is not a decimal string in range.
var ErrInvalidNumber = errors.New("invalid number")

type CreateAgreementParams struct {
	RentID          string `json:"rent_id" jsonschema:"unique agreement id, unsigned 64-bit decimal string"`
	Tenant          string `json:"tenant" jsonschema:"principal of the tenant"`
	MonthlyRent     string `json:"monthly_rent" jsonschema:"rent due each month as a decimal string, must be positive"`
	SecurityDeposit string `json:"security_deposit" jsonschema:"deposit amount as a decimal string, must not be negative"`
}

type RentIDParams struct {
	RentID string `json:"rent_id" jsonschema:"agreement id, unsigned 64-bit decimal string"`
}

type LogTimeParams struct {
	EntryID   string `json:"entry_id" jsonschema:"unique time entry id, unsigned 64-bit decimal string"`
	Worker    string `json:"worker,omitempty" jsonschema:"principal who did the work, defaults to the caller"`
	TaskRef   string `json:"task_ref" jsonschema:"reference to the task worked on"`
	StartTime string `json:"start_time" jsonschema:"start of the span, unsigned 64-bit decimal string"`
	EndTime   string `json:"end_time" jsonschema:"end of the span after start_time, unsigned 64-bit decimal string"`
}

type EntryIDParams struct {
	EntryID string `json:"entry_id" jsonschema:"time entry id, unsigned 64-bit decimal string"`
}

type AgreementView struct {
	RentID          string `json:"rent_id"`
	Landlord        string `json:"landlord"`
	Tenant          string `json:"tenant"`
	MonthlyRent     string `json:"monthly_rent"`
	SecurityDeposit string `json:"security_deposit"`
	Status          string `json:"status"`
	MonthsPaid      uint32 `json:"months_paid"`
}

type GetAgreementResult struct {
	Found     bool           `json:"found"`
	Agreement *AgreementView `json:"agreement,omitempty"`
}

type TimeEntryView struct {
	EntryID   string `json:"entry_id"`
	Worker    string `json:"worker"`
	TaskRef   string `json:"task_ref"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Hours     string `json:"hours"`
	Approved  bool   `json:"approved"`
}

type GetTimeEntryResult struct {
	Found bool           `json:"found"`
	Entry *TimeEntryView `json:"entry,omitempty"`
}

type ApprovalResult struct {
	EntryID  string `json:"entry_id"`
	Approved bool   `json:"approved"`
}

func parseUint(field, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidNumber, field, s)
	}
	return v, nil
}

func parseInt(field, s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidNumber, field, s)
	}
	return v, nil
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func agreementView(ag *rent.Agreement) AgreementView {
	return AgreementView{
		RentID:          formatUint(ag.RentID),
		Landlord:        string(ag.Landlord),
		Tenant:          string(ag.Tenant),
		MonthlyRent:     strconv.FormatInt(ag.MonthlyRent, 10),
		SecurityDeposit: strconv.FormatInt(ag.SecurityDeposit, 10),
		Status:          string(ag.Status),
		MonthsPaid:      ag.MonthsPaid,
	}
}

func timeEntryView(e *timeentry.Entry) TimeEntryView {
	return TimeEntryView{
		EntryID:   formatUint(e.EntryID),
		Worker:    string(e.Worker),
		TaskRef:   e.TaskRef,
		StartTime: formatUint(e.StartTime),
		EndTime:   formatUint(e.EndTime),
		Hours:     formatUint(e.Hours),
		Approved:  e.Approved,
	}
}
