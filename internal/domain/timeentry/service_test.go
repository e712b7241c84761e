package timeentry_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/rpggio/recordkeep/internal/domain/access"
	"github.com/rpggio/recordkeep/internal/domain/timeentry"
	"github.com/rpggio/recordkeep/internal/memstore"
	"github.com/rpggio/recordkeep/internal/repository"
	"github.com/rpggio/recordkeep/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, policy timeentry.ApprovalPolicy) (*timeentry.Service, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	entries := repository.NewCollection[timeentry.Entry](store, timeentry.Namespace)
	return timeentry.NewService(entries, policy, nil), store
}

func TestTimeEntryService_Log(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, nil)

	entry, err := svc.Log(ctx, timeentry.LogRequest{
		EntryID:   1,
		Worker:    "W",
		TaskRef:   "T1",
		StartTime: 100,
		EndTime:   160,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(60), entry.Hours)
	require.False(t, entry.Approved)

	loaded, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, entry, loaded)
}

func TestTimeEntryService_Log_InvalidRange(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t, nil)

	_, err := svc.Log(ctx, timeentry.LogRequest{EntryID: 1, Worker: "W", TaskRef: "T1", StartTime: 100, EndTime: 100})
	require.ErrorIs(t, err, timeentry.ErrInvalidTimeRange)

	_, err = svc.Log(ctx, timeentry.LogRequest{EntryID: 1, Worker: "W", TaskRef: "T1", StartTime: 200, EndTime: 100})
	require.ErrorIs(t, err, timeentry.ErrInvalidTimeRange)

	require.Equal(t, 0, store.Len())
}

func TestTimeEntryService_Log_Duplicate(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t, nil)

	_, err := svc.Log(ctx, timeentry.LogRequest{EntryID: 3, Worker: "W", TaskRef: "T1", StartTime: 0, EndTime: 10})
	require.NoError(t, err)
	before, err := store.Get(ctx, repository.NewKey(timeentry.Namespace, 3))
	require.NoError(t, err)

	_, err = svc.Log(ctx, timeentry.LogRequest{EntryID: 3, Worker: "X", TaskRef: "T2", StartTime: 5, EndTime: 500})
	require.ErrorIs(t, err, timeentry.ErrDuplicateID)

	after, err := store.Get(ctx, repository.NewKey(timeentry.Namespace, 3))
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestTimeEntryService_ApproveIsMonotonic(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, nil)

	_, err := svc.Log(ctx, timeentry.LogRequest{EntryID: 1, Worker: "W", TaskRef: "T1", StartTime: 100, EndTime: 160})
	require.NoError(t, err)

	approved, err := svc.IsApproved(ctx, 1)
	require.NoError(t, err)
	require.False(t, approved)

	entry, err := svc.Approve(ctx, timeentry.ApproveRequest{EntryID: 1})
	require.NoError(t, err)
	require.True(t, entry.Approved)

	entry, err = svc.Approve(ctx, timeentry.ApproveRequest{EntryID: 1, Caller: "anyone"})
	require.NoError(t, err)
	require.True(t, entry.Approved)

	approved, err = svc.IsApproved(ctx, 1)
	require.NoError(t, err)
	require.True(t, approved)
}

func TestTimeEntryService_AbsentAndUnapprovedLookAlike(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, nil)

	_, err := svc.Log(ctx, timeentry.LogRequest{EntryID: 1, Worker: "W", TaskRef: "T1", StartTime: 1, EndTime: 2})
	require.NoError(t, err)

	absent, err := svc.IsApproved(ctx, 99)
	require.NoError(t, err)
	unapproved, err := svc.IsApproved(ctx, 1)
	require.NoError(t, err)
	require.False(t, absent)
	require.False(t, unapproved)

	missing, err := svc.Get(ctx, 99)
	require.NoError(t, err)
	require.Nil(t, missing)

	present, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, present)
	require.False(t, present.Approved)
}

func TestTimeEntryService_ApproveNotFound(t *testing.T) {
	svc, _ := newService(t, nil)
	_, err := svc.Approve(context.Background(), timeentry.ApproveRequest{EntryID: 5})
	require.ErrorIs(t, err, timeentry.ErrEntryNotFound)
}

func TestTimeEntryService_ReapproveDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	store := &mocks.RecordStore{}
	store.On("Get", ctx, repository.NewKey(timeentry.Namespace, 8)).
		Return([]byte(`{"entry_id":8,"worker":"W","task_ref":"T","start_time":1,"end_time":3,"hours":2,"approved":true}`), nil)

	entries := repository.NewCollection[timeentry.Entry](store, timeentry.Namespace)
	svc := timeentry.NewService(entries, nil, nil)

	entry, err := svc.Approve(ctx, timeentry.ApproveRequest{EntryID: 8})
	require.NoError(t, err)
	require.True(t, entry.Approved)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

type workerOnlyPolicy struct{}

func (workerOnlyPolicy) AllowApproval(_ context.Context, entry *timeentry.Entry, caller access.Principal) error {
	if caller == entry.Worker {
		return fmt.Errorf("%w: workers cannot approve their own time", access.ErrUnauthorized)
	}
	return nil
}

func TestTimeEntryService_ApprovalPolicy(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, workerOnlyPolicy{})

	_, err := svc.Log(ctx, timeentry.LogRequest{EntryID: 1, Worker: "W", TaskRef: "T1", StartTime: 1, EndTime: 2})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, timeentry.ApproveRequest{EntryID: 1, Caller: "W"})
	require.ErrorIs(t, err, timeentry.ErrUnauthorized)

	approved, err := svc.IsApproved(ctx, 1)
	require.NoError(t, err)
	require.False(t, approved)

	entry, err := svc.Approve(ctx, timeentry.ApproveRequest{EntryID: 1, Caller: "manager"})
	require.NoError(t, err)
	require.True(t, entry.Approved)
}

func TestTimeEntryService_SharesStoreWithoutCollisions(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	entries := repository.NewCollection[timeentry.Entry](store, timeentry.Namespace)
	svc := timeentry.NewService(entries, nil, nil)

	require.NoError(t, store.Set(ctx, repository.NewKey("RENT", 1), []byte(`{"rent_id":1}`)))

	_, err := svc.Log(ctx, timeentry.LogRequest{EntryID: 1, Worker: "W", TaskRef: "T1", StartTime: 1, EndTime: 2})
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())
}
