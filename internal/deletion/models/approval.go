package models

import (
	"time"

	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	dErrors "github.com/marcelarangelrhellorh/rhelloflow/pkg/domain-errors"
)

// ApprovalStatus is the lifecycle state of a DeletionApproval.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// DeletionApproval is a request for permission to hard-delete a high-risk
// resource.
//
// Invariants:
//   - Created in pending; transitions exactly once to approved or rejected
//     and is terminal thereafter
//   - At most one pending approval exists per (resource_type, resource_id);
//     the store enforces this atomically
//   - RequiresMFA is derived: true iff RiskLevel is critical
//   - The deciding actor must differ from the requester (separation of duties)
type DeletionApproval struct {
	ID              domain.ApprovalID
	Resource        domain.ResourceRef
	RequestedBy     string
	DeletionReason  string
	RiskLevel       RiskLevel
	RequiresMFA     bool
	Status          ApprovalStatus
	CorrelationID   domain.CorrelationID
	Metadata        map[string]any
	DecidedBy       string
	RejectionReason string
	CreatedAt       time.Time
	DecidedAt       time.Time
}

// NewDeletionApproval constructs a pending approval, validating its invariants.
func NewDeletionApproval(
	resource domain.ResourceRef,
	requestedBy string,
	reason string,
	risk RiskLevel,
	correlationID domain.CorrelationID,
	metadata map[string]any,
	now time.Time,
) (*DeletionApproval, error) {
	if err := resource.Validate(); err != nil {
		return nil, err
	}
	if requestedBy == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "approval requester is required")
	}
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "deletion reason is required")
	}
	if !risk.Valid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown risk level")
	}
	return &DeletionApproval{
		ID:             domain.NewApprovalID(),
		Resource:       resource,
		RequestedBy:    requestedBy,
		DeletionReason: reason,
		RiskLevel:      risk,
		RequiresMFA:    risk == RiskCritical,
		Status:         ApprovalPending,
		CorrelationID:  correlationID,
		Metadata:       metadata,
		CreatedAt:      now,
	}, nil
}

// IsPending reports whether the approval is still awaiting a decision.
func (a *DeletionApproval) IsPending() bool { return a.Status == ApprovalPending }

// CanDecide checks that the approval is still pending and that the decider is
// not the requester. Use with ApplyApproval/ApplyRejection in Execute
// callbacks so validation and mutation happen under the store's lock.
func (a *DeletionApproval) CanDecide(decidedBy string) error {
	if a.Status != ApprovalPending {
		return dErrors.New(dErrors.CodeInvariantViolation, "approval already decided")
	}
	if decidedBy == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "deciding actor is required")
	}
	if decidedBy == a.RequestedBy {
		return dErrors.New(dErrors.CodeForbidden, "approval requester cannot decide their own request")
	}
	return nil
}

// ApplyApproval transitions the approval to approved. Call CanDecide first.
func (a *DeletionApproval) ApplyApproval(decidedBy string, now time.Time) {
	a.Status = ApprovalApproved
	a.DecidedBy = decidedBy
	a.DecidedAt = now
}

// ApplyRejection transitions the approval to rejected. Call CanDecide first.
func (a *DeletionApproval) ApplyRejection(decidedBy, rejectionReason string, now time.Time) {
	a.Status = ApprovalRejected
	a.DecidedBy = decidedBy
	a.RejectionReason = rejectionReason
	a.DecidedAt = now
}
