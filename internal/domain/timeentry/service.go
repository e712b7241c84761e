package timeentry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/im7mortal/kmutex"
	"github.com/rpggio/recordkeep/internal/domain/access"
	"github.com/rpggio/recordkeep/internal/repository"
)

// Service handles time entry business logic.
type Service struct {
	entries Repository
	policy  ApprovalPolicy
	locks   *kmutex.Kmutex
	logger  *slog.Logger
}

// NewService creates a new time entry service. policy may be nil.
func NewService(entries Repository, policy ApprovalPolicy, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		entries: entries,
		policy:  policy,
		locks:   kmutex.New(),
		logger:  logger,
	}
}

// LogRequest describes a new time entry.
type LogRequest struct {
	EntryID   uint64
	Worker    access.Principal
	TaskRef   string
	StartTime uint64
	EndTime   uint64
}

// ApproveRequest identifies an entry to approve. Caller is only consulted
// when an approval policy is configured.
type ApproveRequest struct {
	EntryID uint64
	Caller  access.Principal
}

// Log stores a new unapproved entry with its duration precomputed.
func (s *Service) Log(ctx context.Context, req LogRequest) (*Entry, error) {
	if err := ValidateLogInput(req); err != nil {
		return nil, err
	}

	s.locks.Lock(req.EntryID)
	defer s.locks.Unlock(req.EntryID)

	exists, err := s.entries.Has(ctx, req.EntryID)
	if err != nil {
		return nil, fmt.Errorf("checking time entry: %w", err)
	}
	if exists {
		return nil, ErrDuplicateID
	}

	entry := &Entry{
		EntryID:   req.EntryID,
		Worker:    req.Worker,
		TaskRef:   req.TaskRef,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Hours:     Duration(req.StartTime, req.EndTime),
		Approved:  false,
	}
	if err := s.entries.Set(ctx, entry.EntryID, entry); err != nil {
		return nil, fmt.Errorf("logging time entry: %w", err)
	}

	s.logger.Debug("time logged", "entry_id", entry.EntryID, "worker", entry.Worker, "hours", entry.Hours)
	return entry, nil
}

// Approve marks an entry approved. Approving an approved entry is a no-op.
func (s *Service) Approve(ctx context.Context, req ApproveRequest) (*Entry, error) {
	s.locks.Lock(req.EntryID)
	defer s.locks.Unlock(req.EntryID)

	current, err := s.entries.Get(ctx, req.EntryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("loading time entry: %w", err)
	}

	if s.policy != nil {
		if err := s.policy.AllowApproval(ctx, current, req.Caller); err != nil {
			return nil, err
		}
	}

	if current.Approved {
		return current, nil
	}

	updated := *current
	updated.Approved = true
	if err := s.entries.Set(ctx, updated.EntryID, &updated); err != nil {
		return nil, fmt.Errorf("approving time entry: %w", err)
	}

	s.logger.Debug("time approved", "entry_id", updated.EntryID, "caller", req.Caller)
	return &updated, nil
}

// IsApproved reports whether an entry exists and is approved. A missing
// entry reads as not approved.
func (s *Service) IsApproved(ctx context.Context, id uint64) (bool, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return entry != nil && entry.Approved, nil
}

// Get returns the entry for id, or nil if none exists.
func (s *Service) Get(ctx context.Context, id uint64) (*Entry, error) {
	entry, err := s.entries.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting time entry: %w", err)
	}
	return entry, nil
}
