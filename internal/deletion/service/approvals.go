package service

import (
	"context"
	"errors"

	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/models"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/attrs"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	dErrors "github.com/marcelarangelrhellorh/rhelloflow/pkg/domain-errors"
	audit "github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/audit"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/sentinel"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/requestcontext"
)

// ApprovalRequest asks for permission to hard-delete a high-risk resource.
type ApprovalRequest struct {
	Resource domain.ResourceRef
	Reason   string
	Metadata map[string]any
}

// Decision is the outcome applied to a pending approval.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// ParseDecision validates a decision received at a trust boundary.
func ParseDecision(s string) (Decision, error) {
	switch d := Decision(s); d {
	case DecisionApproved, DecisionRejected:
		return d, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "decision must be approved or rejected")
	}
}

// RequestApproval files a pending DeletionApproval for the resource. The risk
// level is assessed here, not taken from the caller.
func (s *Service) RequestApproval(ctx context.Context, actor domain.Actor, req ApprovalRequest) (*models.DeletionApproval, error) {
	ctx, span := s.tracer.Start(ctx, "deletion.RequestApproval")
	defer span.End()

	if err := s.requireAdmin(ctx, actor, req.Resource, audit.ActionApprovalRequest); err != nil {
		return nil, err
	}
	if err := req.Resource.Validate(); err != nil {
		return nil, err
	}
	if req.Reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "a deletion reason is required")
	}

	riskLevel, dependents, err := s.assessor.Assess(ctx, req.Resource.Type, req.Resource.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to assess deletion risk")
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["dependent_count"] = dependents

	return s.createApproval(ctx, actor, req.Resource, req.Reason, riskLevel, metadata)
}

func (s *Service) createApproval(
	ctx context.Context,
	actor domain.Actor,
	resource domain.ResourceRef,
	reason string,
	riskLevel models.RiskLevel,
	metadata map[string]any,
) (*models.DeletionApproval, error) {
	approval, err := models.NewDeletionApproval(
		resource, actor.ID, reason, riskLevel,
		domain.NewCorrelationID(), metadata, requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}

	if err := s.approvals.CreateIfNonePending(ctx, approval); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "a pending approval already exists for this resource")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create deletion approval")
	}

	auditAttrs := []any{
		"approval_id", approval.ID.String(),
		"reason", reason,
		"risk_level", string(riskLevel),
		"requires_mfa", approval.RequiresMFA,
	}
	s.emitAudit(ctx, audit.Event{
		Action:        audit.ActionApprovalRequest,
		Actor:         actor,
		Resource:      resource,
		Payload:       attrs.ToMap(auditAttrs),
		CorrelationID: approval.CorrelationID,
	})
	if s.metrics != nil {
		s.metrics.ApprovalsRequested.Inc()
	}

	return approval, nil
}

// GetApproval returns an approval by ID.
func (s *Service) GetApproval(ctx context.Context, id domain.ApprovalID) (*models.DeletionApproval, error) {
	approval, err := s.approvals.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "approval not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load approval")
	}
	return approval, nil
}

// DecideApproval applies a terminal decision to a pending approval. The
// deciding actor must hold the admin capability and must not be the
// requester. The audit event carries the correlation ID of the originating
// request so the full lifecycle reads from the log alone.
func (s *Service) DecideApproval(ctx context.Context, actor domain.Actor, id domain.ApprovalID, decision Decision, rejectionReason string) (*models.DeletionApproval, error) {
	ctx, span := s.tracer.Start(ctx, "deletion.DecideApproval")
	defer span.End()

	if err := s.requireAdmin(ctx, actor, domain.ResourceRef{}, audit.ActionApprovalGranted); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	approval, err := s.approvals.Execute(ctx, id,
		func(a *models.DeletionApproval) error {
			return a.CanDecide(actor.ID)
		},
		func(a *models.DeletionApproval) {
			if decision == DecisionApproved {
				a.ApplyApproval(actor.ID, now)
			} else {
				a.ApplyRejection(actor.ID, rejectionReason, now)
			}
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "approval not found")
		case dErrors.HasCode(err, dErrors.CodeInvariantViolation):
			return nil, dErrors.New(dErrors.CodeConflict, "approval already decided")
		case dErrors.HasCode(err, dErrors.CodeForbidden):
			return nil, err
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to decide approval")
		}
	}

	action := audit.ActionApprovalGranted
	if decision == DecisionRejected {
		action = audit.ActionApprovalRejected
	}
	auditAttrs := []any{
		"approval_id", approval.ID.String(),
		"decided_by", actor.ID,
		"requested_by", approval.RequestedBy,
		"risk_level", string(approval.RiskLevel),
	}
	if decision == DecisionRejected {
		auditAttrs = append(auditAttrs, "rejection_reason", rejectionReason)
	}
	s.emitAudit(ctx, audit.Event{
		Action:        action,
		Actor:         actor,
		Resource:      approval.Resource,
		Payload:       attrs.ToMap(auditAttrs),
		CorrelationID: approval.CorrelationID,
	})
	if s.metrics != nil {
		s.metrics.ApprovalsDecided.WithLabelValues(string(decision)).Inc()
	}

	return approval, nil
}
