package mcp

import (
	"context"
	"encoding/json"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rpggio/recordkeep/internal/domain/rent"
	"github.com/rpggio/recordkeep/internal/domain/timeentry"
	"github.com/rpggio/recordkeep/internal/memstore"
	"github.com/rpggio/recordkeep/internal/metrics"
	"github.com/rpggio/recordkeep/internal/repository"
	"github.com/stretchr/testify/require"
)

type harness struct {
	services Services
	metrics  *metrics.Collector
}

func newHarness() *harness {
	store := memstore.New()
	return &harness{
		services: Services{
			Rent:        rent.NewService(repository.NewCollection[rent.Agreement](store, rent.Namespace), nil),
			TimeEntries: timeentry.NewService(repository.NewCollection[timeentry.Entry](store, timeentry.Namespace), nil, nil),
		},
		metrics: metrics.NewCollector(),
	}
}

// connectAs returns a client session whose calls run as principal.
func (h *harness) connectAs(t *testing.T, principal string) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := NewServer(Config{
		Services:         h.services,
		TransportMode:    "stdio",
		DefaultPrincipal: principal,
		Metrics:          h.metrics,
	})

	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = clientSession.Close()
		_ = serverSession.Wait()
	})
	return clientSession
}

func callTool(t *testing.T, cs *sdkmcp.ClientSession, name string, args map[string]any, out any) *sdkmcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	if out != nil && !res.IsError {
		data, err := json.Marshal(res.StructuredContent)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out))
	}
	return res
}

func requireToolError(t *testing.T, res *sdkmcp.CallToolResult, code string) {
	t.Helper()
	require.True(t, res.IsError, "expected tool error %s", code)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	require.Contains(t, text.Text, code)
}

func TestServer_ListTools(t *testing.T) {
	cs := newHarness().connectAs(t, "alice")

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	require.ElementsMatch(t, []string{
		"create_agreement", "activate_agreement", "pay_rent", "complete_agreement",
		"cancel_agreement", "get_agreement", "log_time", "approve_time",
		"is_time_approved", "get_time_entry",
	}, names)
}

func TestServer_RentLifecycle(t *testing.T) {
	h := newHarness()
	landlord := h.connectAs(t, "L")
	tenant := h.connectAs(t, "T")

	var ag AgreementView
	res := callTool(t, landlord, "create_agreement", map[string]any{
		"rent_id": "1", "tenant": "T", "monthly_rent": "1000", "security_deposit": "500",
	}, &ag)
	require.False(t, res.IsError)
	require.Equal(t, AgreementView{
		RentID: "1", Landlord: "L", Tenant: "T", MonthlyRent: "1000", SecurityDeposit: "500",
		Status: "CREATED", MonthsPaid: 0,
	}, ag)

	// Landlord cannot act as tenant.
	requireToolError(t, callTool(t, landlord, "activate_agreement", map[string]any{"rent_id": "1"}, nil), CodeUnauthorized)

	callTool(t, tenant, "activate_agreement", map[string]any{"rent_id": "1"}, &ag)
	require.Equal(t, "ACTIVE", ag.Status)

	callTool(t, tenant, "pay_rent", map[string]any{"rent_id": "1"}, &ag)
	callTool(t, tenant, "pay_rent", map[string]any{"rent_id": "1"}, &ag)
	require.Equal(t, uint32(2), ag.MonthsPaid)

	requireToolError(t, callTool(t, tenant, "complete_agreement", map[string]any{"rent_id": "1"}, nil), CodeUnauthorized)
	requireToolError(t, callTool(t, landlord, "cancel_agreement", map[string]any{"rent_id": "1"}, nil), CodeInvalidState)

	callTool(t, landlord, "complete_agreement", map[string]any{"rent_id": "1"}, &ag)
	require.Equal(t, "COMPLETED", ag.Status)

	requireToolError(t, callTool(t, tenant, "pay_rent", map[string]any{"rent_id": "1"}, nil), CodeInvalidState)

	var got GetAgreementResult
	callTool(t, tenant, "get_agreement", map[string]any{"rent_id": "1"}, &got)
	require.True(t, got.Found)
	require.Equal(t, "COMPLETED", got.Agreement.Status)
	require.Equal(t, uint32(2), got.Agreement.MonthsPaid)
}

func TestServer_RentErrors(t *testing.T) {
	h := newHarness()
	landlord := h.connectAs(t, "L")

	requireToolError(t, callTool(t, landlord, "create_agreement", map[string]any{
		"rent_id": "2", "tenant": "T", "monthly_rent": "0", "security_deposit": "0",
	}, nil), CodeInvalidAmount)

	callTool(t, landlord, "create_agreement", map[string]any{
		"rent_id": "2", "tenant": "T", "monthly_rent": "10", "security_deposit": "0",
	}, nil)
	requireToolError(t, callTool(t, landlord, "create_agreement", map[string]any{
		"rent_id": "2", "tenant": "X", "monthly_rent": "99", "security_deposit": "1",
	}, nil), CodeDuplicateID)

	requireToolError(t, callTool(t, landlord, "cancel_agreement", map[string]any{"rent_id": "404"}, nil), CodeNotFound)

	var got GetAgreementResult
	callTool(t, landlord, "get_agreement", map[string]any{"rent_id": "404"}, &got)
	require.False(t, got.Found)
	require.Nil(t, got.Agreement)

	callTool(t, landlord, "get_agreement", map[string]any{"rent_id": "2"}, &got)
	require.Equal(t, "T", got.Agreement.Tenant)
	require.Equal(t, "10", got.Agreement.MonthlyRent)
}

func TestServer_TimeEntries(t *testing.T) {
	h := newHarness()
	worker := h.connectAs(t, "W")
	manager := h.connectAs(t, "M")

	var entry TimeEntryView
	callTool(t, worker, "log_time", map[string]any{
		"entry_id": "1", "task_ref": "T1", "start_time": "100", "end_time": "160",
	}, &entry)
	require.Equal(t, TimeEntryView{EntryID: "1", Worker: "W", TaskRef: "T1", StartTime: "100", EndTime: "160", Hours: "60"}, entry)

	requireToolError(t, callTool(t, worker, "log_time", map[string]any{
		"entry_id": "2", "task_ref": "T1", "start_time": "100", "end_time": "100",
	}, nil), CodeInvalidTimeRange)
	requireToolError(t, callTool(t, worker, "log_time", map[string]any{
		"entry_id": "1", "task_ref": "T1", "start_time": "1", "end_time": "2",
	}, nil), CodeDuplicateID)

	var approval ApprovalResult
	callTool(t, manager, "is_time_approved", map[string]any{"entry_id": "1"}, &approval)
	require.False(t, approval.Approved)

	callTool(t, manager, "approve_time", map[string]any{"entry_id": "1"}, &entry)
	require.True(t, entry.Approved)
	callTool(t, manager, "approve_time", map[string]any{"entry_id": "1"}, &entry)
	require.True(t, entry.Approved)

	callTool(t, worker, "is_time_approved", map[string]any{"entry_id": "1"}, &approval)
	require.True(t, approval.Approved)

	callTool(t, worker, "is_time_approved", map[string]any{"entry_id": "99"}, &approval)
	require.False(t, approval.Approved)
	requireToolError(t, callTool(t, manager, "approve_time", map[string]any{"entry_id": "99"}, nil), CodeNotFound)

	var got GetTimeEntryResult
	callTool(t, worker, "get_time_entry", map[string]any{"entry_id": "99"}, &got)
	require.False(t, got.Found)

	callTool(t, manager, "log_time", map[string]any{
		"entry_id": "3", "worker": "W", "task_ref": "T2", "start_time": "0", "end_time": "8",
	}, &entry)
	require.Equal(t, "W", entry.Worker)
}

func TestServer_LargeIDsKeepFullPrecision(t *testing.T) {
	h := newHarness()
	cs := h.connectAs(t, "W")

	// 2^53 + 1 is not representable as a double.
	var entry TimeEntryView
	res := callTool(t, cs, "log_time", map[string]any{
		"entry_id": "9007199254740993", "task_ref": "T", "start_time": "9007199254740993", "end_time": "9007199254740995",
	}, &entry)
	require.False(t, res.IsError)
	require.Equal(t, TimeEntryView{
		EntryID: "9007199254740993", Worker: "W", TaskRef: "T",
		StartTime: "9007199254740993", EndTime: "9007199254740995", Hours: "2",
	}, entry)

	stored, err := h.services.TimeEntries.Get(context.Background(), 9007199254740993)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, uint64(2), stored.Hours)

	missing, err := h.services.TimeEntries.Get(context.Background(), 9007199254740992)
	require.NoError(t, err)
	require.Nil(t, missing)

	var ag AgreementView
	res = callTool(t, cs, "create_agreement", map[string]any{
		"rent_id": "18446744073709551615", "tenant": "T", "monthly_rent": "9223372036854775807", "security_deposit": "0",
	}, &ag)
	require.False(t, res.IsError)
	require.Equal(t, "18446744073709551615", ag.RentID)
	require.Equal(t, "9223372036854775807", ag.MonthlyRent)

	var got GetAgreementResult
	callTool(t, cs, "get_agreement", map[string]any{"rent_id": "18446744073709551615"}, &got)
	require.True(t, got.Found)
}

func TestServer_InvalidNumbers(t *testing.T) {
	h := newHarness()
	cs := h.connectAs(t, "W")

	requireToolError(t, callTool(t, cs, "get_agreement", map[string]any{"rent_id": "18446744073709551616"}, nil), CodeInvalidArgument)
	requireToolError(t, callTool(t, cs, "approve_time", map[string]any{"entry_id": "-1"}, nil), CodeInvalidArgument)
	requireToolError(t, callTool(t, cs, "log_time", map[string]any{
		"entry_id": "1", "task_ref": "T", "start_time": "1.5", "end_time": "3",
	}, nil), CodeInvalidArgument)
	requireToolError(t, callTool(t, cs, "create_agreement", map[string]any{
		"rent_id": "1", "tenant": "T", "monthly_rent": "ten", "security_deposit": "0",
	}, nil), CodeInvalidArgument)

	var got GetTimeEntryResult
	callTool(t, cs, "get_time_entry", map[string]any{"entry_id": "1"}, &got)
	require.False(t, got.Found)
}

func TestServer_SharedIDsAcrossFamilies(t *testing.T) {
	h := newHarness()
	cs := h.connectAs(t, "P")

	callTool(t, cs, "create_agreement", map[string]any{
		"rent_id": "5", "tenant": "T", "monthly_rent": "1", "security_deposit": "0",
	}, nil)
	res := callTool(t, cs, "log_time", map[string]any{
		"entry_id": "5", "task_ref": "T", "start_time": "0", "end_time": "1",
	}, nil)
	require.False(t, res.IsError)

	var ag GetAgreementResult
	callTool(t, cs, "get_agreement", map[string]any{"rent_id": "5"}, &ag)
	require.True(t, ag.Found)
	var entry GetTimeEntryResult
	callTool(t, cs, "get_time_entry", map[string]any{"entry_id": "5"}, &entry)
	require.True(t, entry.Found)
}

func TestServer_Metrics(t *testing.T) {
	h := newHarness()
	cs := h.connectAs(t, "L")

	callTool(t, cs, "create_agreement", map[string]any{
		"rent_id": "1", "tenant": "T", "monthly_rent": "1", "security_deposit": "0",
	}, nil)
	callTool(t, cs, "activate_agreement", map[string]any{"rent_id": "1"}, nil)
	callTool(t, cs, "is_time_approved", map[string]any{"entry_id": "1"}, nil)

	// create ok, activate UNAUTHORIZED, is_time_approved ok
	require.Equal(t, 3, testutil.CollectAndCount(h.metrics, "recordkeep_operations_total"))
}

func TestServer_DocResources(t *testing.T) {
	cs := newHarness().connectAs(t, "L")
	ctx := context.Background()

	list, err := cs.ListResources(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list.Resources, len(docResources))

	res, err := cs.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "recordkeep://docs/rent-lifecycle"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	require.Contains(t, res.Contents[0].Text, "terminal")
}
