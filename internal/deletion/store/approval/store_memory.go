package approval

import (
	"context"
	"sync"

	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/models"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/sentinel"
)

// InMemory implements the approval store with a single mutex so the
// one-pending-per-resource check and the insert are a single atomic step,
// mirroring the partial unique index the Postgres store relies on.
type InMemory struct {
	mu        sync.Mutex
	approvals map[domain.ApprovalID]*models.DeletionApproval
}

func NewInMemory() *InMemory {
	return &InMemory{approvals: make(map[domain.ApprovalID]*models.DeletionApproval)}
}

// CreateIfNonePending inserts the approval unless a pending one already exists
// for the same resource, in which case it returns sentinel.ErrAlreadyUsed.
func (s *InMemory) CreateIfNonePending(_ context.Context, approval *models.DeletionApproval) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.approvals {
		if existing.IsPending() &&
			existing.Resource.Type == approval.Resource.Type &&
			existing.Resource.ID == approval.Resource.ID {
			return sentinel.ErrAlreadyUsed
		}
	}

	stored := *approval
	s.approvals[approval.ID] = &stored
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.ApprovalID) (*models.DeletionApproval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	approval, ok := s.approvals[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *approval
	return &copied, nil
}

// FindPendingByResource returns the pending approval for a resource, if any.
func (s *InMemory) FindPendingByResource(_ context.Context, rt domain.ResourceType, resourceID string) (*models.DeletionApproval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, approval := range s.approvals {
		if approval.IsPending() && approval.Resource.Type == rt && approval.Resource.ID == resourceID {
			copied := *approval
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// Execute runs validate then mutate on the approval while holding the store
// lock, so a decision cannot race another decision on the same approval.
func (s *InMemory) Execute(
	_ context.Context,
	id domain.ApprovalID,
	validate func(*models.DeletionApproval) error,
	mutate func(*models.DeletionApproval),
) (*models.DeletionApproval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	approval, ok := s.approvals[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(approval); err != nil {
		return nil, err
	}
	mutate(approval)
	copied := *approval
	return &copied, nil
}
