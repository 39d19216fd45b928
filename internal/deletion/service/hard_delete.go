package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/models"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	dErrors "github.com/marcelarangelrhellorh/rhelloflow/pkg/domain-errors"
	audit "github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/audit"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/sentinel"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/requestcontext"
)

// HardDeleteRequest executes an irreversible physical delete previously
// authorized through the approval workflow.
type HardDeleteRequest struct {
	ApprovalID domain.ApprovalID
}

// HardDelete re-verifies the approval, re-snapshots the resource (state may
// have drifted since the approval was requested), physically removes the row,
// and records the fact. The audit payload carries recoverable:false and
// irreversible:true for readers of the log; nothing enforces those flags.
func (s *Service) HardDelete(ctx context.Context, actor domain.Actor, req HardDeleteRequest) (*DeleteResult, error) {
	ctx, span := s.tracer.Start(ctx, "deletion.HardDelete", trace.WithAttributes(
		attribute.String("approval.id", req.ApprovalID.String()),
	))
	defer span.End()

	approval, err := s.GetApproval(ctx, req.ApprovalID)
	if err != nil {
		return nil, err
	}

	action := audit.HardDeleteAction(approval.Resource.Type)
	if err := s.requireAdmin(ctx, actor, approval.Resource, action); err != nil {
		return nil, err
	}

	switch approval.Status {
	case models.ApprovalApproved:
		// proceed
	case models.ApprovalPending:
		return nil, dErrors.New(dErrors.CodeConflict, "approval is still pending")
	default:
		return nil, dErrors.New(dErrors.CodeForbidden, "approval was rejected")
	}

	now := requestcontext.Now(ctx)

	// Independent snapshot: the one implied at request time may be stale.
	state, err := s.resources.Load(ctx, approval.Resource.Type, approval.Resource.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "resource not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load resource state")
	}

	snapshotID, err := s.snapshots.Capture(ctx, models.Snapshot{
		Resource:      approval.Resource,
		State:         state,
		DeletionType:  models.DeletionHard,
		CorrelationID: approval.CorrelationID,
		CapturedBy:    actor.ID,
		CapturedAt:    now,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "snapshot capture failed; deletion aborted")
	}
	if s.metrics != nil {
		s.metrics.SnapshotsCaptured.Inc()
	}

	if err := s.resources.HardDelete(ctx, approval.Resource.Type, approval.Resource.ID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "resource not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete resource")
	}

	s.emitAudit(ctx, audit.Event{
		Action:   action,
		Actor:    actor,
		Resource: approval.Resource,
		Payload: map[string]any{
			"approval_id":   approval.ID.String(),
			"reason":        approval.DeletionReason,
			"risk_level":    string(approval.RiskLevel),
			"deletion_type": string(models.DeletionHard),
			"snapshot_id":   snapshotID.String(),
			"snapshot":      state,
			"recoverable":   false,
			"irreversible":  true,
		},
		CorrelationID: approval.CorrelationID,
	})
	if s.metrics != nil {
		s.metrics.HardDeletes.WithLabelValues(string(approval.Resource.Type)).Inc()
	}

	return &DeleteResult{
		Resource:      approval.Resource,
		RiskLevel:     approval.RiskLevel,
		SnapshotID:    snapshotID,
		CorrelationID: approval.CorrelationID,
	}, nil
}

// History returns the audit trail of a resource, oldest first. Read-only; the
// caller pages as needed.
func (s *Service) History(ctx context.Context, rt domain.ResourceType, resourceID string) ([]audit.Event, error) {
	if resourceID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "resource id is required")
	}
	events, err := s.auditor.List(ctx, rt, resourceID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit history")
	}
	return events, nil
}
