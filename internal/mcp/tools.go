package mcp

import (
	"context"
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/recordkeep/internal/domain/access"
	"github.com/rpggio/recordkeep/internal/domain/rent"
	"github.com/rpggio/recordkeep/internal/domain/timeentry"
	"github.com/rpggio/recordkeep/internal/metrics"
)

const (
	serviceRent = "rent"
	serviceTime = "time"
)

type toolDeps struct {
	services Services
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// handle wraps a tool body with error mapping, metrics and logging.
func handle[In, Out any](deps toolDeps, service, name string, fn func(context.Context, access.Principal, In) (Out, error)) sdkmcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, Out, error) {
		start := time.Now()
		out, err := fn(ctx, getPrincipal(ctx), in)
		if err != nil {
			apiErr := MapError(err)
			deps.metrics.Observe(service, name, apiErr.Code, time.Since(start))
			if apiErr.Code == CodeInternal && deps.logger != nil {
				deps.logger.Error("tool failed", "tool", name, "error", err)
			}
			var zero Out
			return nil, zero, apiErr
		}
		deps.metrics.Observe(service, name, metrics.OutcomeOK, time.Since(start))
		return nil, out, nil
	}
}

func registerTools(server *sdkmcp.Server, deps toolDeps) {
	registerRentTools(server, deps)
	registerTimeTools(server, deps)
}

func registerRentTools(server *sdkmcp.Server, deps toolDeps) {
	svc := deps.services.Rent

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_agreement",
		Description: "Create a rent agreement in CREATED status with the caller as landlord",
	}, handle(deps, serviceRent, "create_agreement", func(ctx context.Context, caller access.Principal, p CreateAgreementParams) (AgreementView, error) {
		id, err := parseUint("rent_id", p.RentID)
		if err != nil {
			return AgreementView{}, err
		}
		monthly, err := parseInt("monthly_rent", p.MonthlyRent)
		if err != nil {
			return AgreementView{}, err
		}
		deposit, err := parseInt("security_deposit", p.SecurityDeposit)
		if err != nil {
			return AgreementView{}, err
		}
		ag, err := svc.Create(ctx, rent.CreateRequest{
			RentID:          id,
			Landlord:        caller,
			Tenant:          access.Principal(p.Tenant),
			MonthlyRent:     monthly,
			SecurityDeposit: deposit,
		})
		if err != nil {
			return AgreementView{}, err
		}
		return agreementView(ag), nil
	}))

	transitions := []struct {
		name        string
		description string
		apply       func(context.Context, rent.TransitionRequest) (*rent.Agreement, error)
	}{
		{"activate_agreement", "Tenant accepts a CREATED agreement, making it ACTIVE", svc.Activate},
		{"pay_rent", "Tenant records one month of rent on an ACTIVE agreement", svc.PayRent},
		{"complete_agreement", "Landlord completes an ACTIVE agreement", svc.Complete},
		{"cancel_agreement", "Landlord cancels a CREATED agreement", svc.Cancel},
	}
	for _, tr := range transitions {
		apply := tr.apply
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name:        tr.name,
			Description: tr.description,
		}, handle(deps, serviceRent, tr.name, func(ctx context.Context, caller access.Principal, p RentIDParams) (AgreementView, error) {
			id, err := parseUint("rent_id", p.RentID)
			if err != nil {
				return AgreementView{}, err
			}
			ag, err := apply(ctx, rent.TransitionRequest{RentID: id, Caller: caller})
			if err != nil {
				return AgreementView{}, err
			}
			return agreementView(ag), nil
		}))
	}

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_agreement",
		Description: "Read an agreement; found is false when no agreement has the id",
	}, handle(deps, serviceRent, "get_agreement", func(ctx context.Context, _ access.Principal, p RentIDParams) (GetAgreementResult, error) {
		id, err := parseUint("rent_id", p.RentID)
		if err != nil {
			return GetAgreementResult{}, err
		}
		ag, err := svc.Get(ctx, id)
		if err != nil {
			return GetAgreementResult{}, err
		}
		if ag == nil {
			return GetAgreementResult{Found: false}, nil
		}
		view := agreementView(ag)
		return GetAgreementResult{Found: true, Agreement: &view}, nil
	}))
}

func registerTimeTools(server *sdkmcp.Server, deps toolDeps) {
	svc := deps.services.TimeEntries

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "log_time",
		Description: "Record an unapproved span of work; hours is end_time minus start_time",
	}, handle(deps, serviceTime, "log_time", func(ctx context.Context, caller access.Principal, p LogTimeParams) (TimeEntryView, error) {
		worker := access.Principal(p.Worker)
		if worker == "" {
			worker = caller
		}
		id, err := parseUint("entry_id", p.EntryID)
		if err != nil {
			return TimeEntryView{}, err
		}
		start, err := parseUint("start_time", p.StartTime)
		if err != nil {
			return TimeEntryView{}, err
		}
		end, err := parseUint("end_time", p.EndTime)
		if err != nil {
			return TimeEntryView{}, err
		}
		entry, err := svc.Log(ctx, timeentry.LogRequest{
			EntryID:   id,
			Worker:    worker,
			TaskRef:   p.TaskRef,
			StartTime: start,
			EndTime:   end,
		})
		if err != nil {
			return TimeEntryView{}, err
		}
		return timeEntryView(entry), nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "approve_time",
		Description: "Approve a time entry; approving twice is a no-op",
	}, handle(deps, serviceTime, "approve_time", func(ctx context.Context, caller access.Principal, p EntryIDParams) (TimeEntryView, error) {
		id, err := parseUint("entry_id", p.EntryID)
		if err != nil {
			return TimeEntryView{}, err
		}
		entry, err := svc.Approve(ctx, timeentry.ApproveRequest{EntryID: id, Caller: caller})
		if err != nil {
			return TimeEntryView{}, err
		}
		return timeEntryView(entry), nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "is_time_approved",
		Description: "Report whether a time entry is approved; unknown ids report false",
	}, handle(deps, serviceTime, "is_time_approved", func(ctx context.Context, _ access.Principal, p EntryIDParams) (ApprovalResult, error) {
		id, err := parseUint("entry_id", p.EntryID)
		if err != nil {
			return ApprovalResult{}, err
		}
		approved, err := svc.IsApproved(ctx, id)
		if err != nil {
			return ApprovalResult{}, err
		}
		return ApprovalResult{EntryID: formatUint(id), Approved: approved}, nil
	}))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_time_entry",
		Description: "Read a time entry; found is false when no entry has the id",
	}, handle(deps, serviceTime, "get_time_entry", func(ctx context.Context, _ access.Principal, p EntryIDParams) (GetTimeEntryResult, error) {
		id, err := parseUint("entry_id", p.EntryID)
		if err != nil {
			return GetTimeEntryResult{}, err
		}
		entry, err := svc.Get(ctx, id)
		if err != nil {
			return GetTimeEntryResult{}, err
		}
		if entry == nil {
			return GetTimeEntryResult{Found: false}, nil
		}
		view := timeEntryView(entry)
		return GetTimeEntryResult{Found: true, Entry: &view}, nil
	}))
}
