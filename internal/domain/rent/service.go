package rent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/im7mortal/kmutex"
	"github.com/rpggio/recordkeep/internal/domain/access"
	"github.com/rpggio/recordkeep/internal/repository"
)

// Service handles rent agreement business logic.
type Service struct {
	agreements Repository
	locks      *kmutex.Kmutex
	logger     *slog.Logger
}

// NewService creates a new rent agreement service.
func NewService(agreements Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		agreements: agreements,
		locks:      kmutex.New(),
		logger:     logger,
	}
}

// CreateRequest describes a new agreement.
type CreateRequest struct {
	RentID          uint64
	Landlord        access.Principal
	Tenant          access.Principal
	MonthlyRent     int64
	SecurityDeposit int64
}

// TransitionRequest identifies an agreement and the caller acting on it.
type TransitionRequest struct {
	RentID uint64
	Caller access.Principal
}

// Create stores a new agreement in the Created state.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Agreement, error) {
	if err := ValidateCreateInput(req); err != nil {
		return nil, err
	}

	s.locks.Lock(req.RentID)
	defer s.locks.Unlock(req.RentID)

	exists, err := s.agreements.Has(ctx, req.RentID)
	if err != nil {
		return nil, fmt.Errorf("checking agreement: %w", err)
	}
	if exists {
		return nil, ErrDuplicateID
	}

	ag := &Agreement{
		RentID:          req.RentID,
		Landlord:        req.Landlord,
		Tenant:          req.Tenant,
		MonthlyRent:     req.MonthlyRent,
		SecurityDeposit: req.SecurityDeposit,
		Status:          StatusCreated,
		MonthsPaid:      0,
	}
	if err := s.agreements.Set(ctx, ag.RentID, ag); err != nil {
		return nil, fmt.Errorf("creating agreement: %w", err)
	}

	s.logger.Debug("agreement created", "rent_id", ag.RentID, "landlord", ag.Landlord, "tenant", ag.Tenant)
	return ag, nil
}

// Activate moves a Created agreement to Active. Only the tenant may do this.
func (s *Service) Activate(ctx context.Context, req TransitionRequest) (*Agreement, error) {
	return s.transition(ctx, req, ActionActivate, nil)
}

// PayRent records one more paid month on an Active agreement. Only the tenant
// may do this. No funds move here.
func (s *Service) PayRent(ctx context.Context, req TransitionRequest) (*Agreement, error) {
	return s.transition(ctx, req, ActionPayRent, func(ag *Agreement) error {
		if ag.MonthsPaid == math.MaxUint32 {
			return fmt.Errorf("%w: months paid at maximum", ErrInvalidState)
		}
		ag.MonthsPaid++
		return nil
	})
}

// Complete moves an Active agreement to Completed. Only the landlord may do this.
func (s *Service) Complete(ctx context.Context, req TransitionRequest) (*Agreement, error) {
	return s.transition(ctx, req, ActionComplete, nil)
}

// Cancel moves a Created agreement to Cancelled. Only the landlord may do this.
func (s *Service) Cancel(ctx context.Context, req TransitionRequest) (*Agreement, error) {
	return s.transition(ctx, req, ActionCancel, nil)
}

// Get returns the agreement for id, or nil if none exists.
func (s *Service) Get(ctx context.Context, id uint64) (*Agreement, error) {
	ag, err := s.agreements.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting agreement: %w", err)
	}
	return ag, nil
}

func (s *Service) transition(ctx context.Context, req TransitionRequest, action Action, apply func(*Agreement) error) (*Agreement, error) {
	s.locks.Lock(req.RentID)
	defer s.locks.Unlock(req.RentID)

	current, err := s.agreements.Get(ctx, req.RentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAgreementNotFound
		}
		return nil, fmt.Errorf("loading agreement: %w", err)
	}

	next, err := ValidateTransition(current, action, req.Caller)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.Status = next
	if apply != nil {
		if err := apply(&updated); err != nil {
			return nil, err
		}
	}

	if err := s.agreements.Set(ctx, updated.RentID, &updated); err != nil {
		return nil, fmt.Errorf("updating agreement: %w", err)
	}

	s.logger.Debug("agreement transitioned",
		"rent_id", updated.RentID,
		"action", action,
		"from", current.Status,
		"to", updated.Status,
		"months_paid", updated.MonthsPaid,
		"caller", req.Caller,
	)
	return &updated, nil
}
