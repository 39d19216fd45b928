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

// SoftDeleteRequest asks for a recoverable delete of a resource.
type SoftDeleteRequest struct {
	Resource domain.ResourceRef
	Reason   string
	// PreSnapshotState optionally supplies the state to snapshot. When nil the
	// orchestrator loads the current row from the resource store.
	PreSnapshotState map[string]any
}

// DeleteResult reports the outcome of a delete operation.
type DeleteResult struct {
	Resource         domain.ResourceRef
	RiskLevel        models.RiskLevel
	DependentCount   int
	SnapshotID       domain.SnapshotID
	CorrelationID    domain.CorrelationID
	RequiresApproval bool
	ApprovalID       domain.ApprovalID
	LinksDeactivated int
}

// AssessRisk classifies a pending deletion by the blast radius of its
// dependents. Read-only; no side effects and no admin requirement.
func (s *Service) AssessRisk(ctx context.Context, rt domain.ResourceType, resourceID string) (models.RiskLevel, int, error) {
	if resourceID == "" {
		return "", 0, dErrors.New(dErrors.CodeInvalidInput, "resource id is required")
	}
	return s.assessor.Assess(ctx, rt, resourceID)
}

// SoftDelete runs the deletion state machine:
// authorize, duplicate-pending check, risk assessment, snapshot, mutation,
// audit. The snapshot is the durable point of no further rollback: if it
// cannot be captured nothing else happens; if the mutation fails afterwards
// the orphaned snapshot is harmless.
//
// When the assessed risk reaches the configured approval threshold the
// mutation is withheld and a pending approval is filed instead.
func (s *Service) SoftDelete(ctx context.Context, actor domain.Actor, req SoftDeleteRequest) (*DeleteResult, error) {
	ctx, span := s.tracer.Start(ctx, "deletion.SoftDelete", trace.WithAttributes(
		attribute.String("resource.type", string(req.Resource.Type)),
		attribute.String("resource.id", req.Resource.ID),
	))
	defer span.End()

	action := audit.SoftDeleteAction(req.Resource.Type)
	if err := s.requireAdmin(ctx, actor, req.Resource, action); err != nil {
		return nil, err
	}
	if err := req.Resource.Validate(); err != nil {
		return nil, err
	}
	if req.Reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "a deletion reason is required")
	}

	// Never queue behind an in-flight approval.
	if _, err := s.approvals.FindPendingByResource(ctx, req.Resource.Type, req.Resource.ID); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "a pending approval already exists for this resource")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check pending approvals")
	}

	riskLevel, dependents, err := s.assessor.Assess(ctx, req.Resource.Type, req.Resource.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to assess deletion risk")
	}
	span.SetAttributes(attribute.String("deletion.risk_level", string(riskLevel)))

	if riskLevel.AtLeast(s.approvalThreshold) {
		return s.routeToApproval(ctx, actor, req, riskLevel, dependents)
	}

	correlationID := domain.NewCorrelationID()
	now := requestcontext.Now(ctx)

	state := req.PreSnapshotState
	if state == nil {
		state, err = s.resources.Load(ctx, req.Resource.Type, req.Resource.ID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "resource not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load resource state")
		}
	}

	snapshotID, err := s.snapshots.Capture(ctx, models.Snapshot{
		Resource:      req.Resource,
		State:         state,
		DeletionType:  models.DeletionSoft,
		CorrelationID: correlationID,
		CapturedBy:    actor.ID,
		CapturedAt:    now,
	})
	if err != nil {
		// Fail-safe ordering: without a durable snapshot the deletion must
		// not proceed.
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "snapshot capture failed; deletion aborted")
	}
	if s.metrics != nil {
		s.metrics.SnapshotsCaptured.Inc()
	}

	mark := models.DeletionMark{
		DeletedAt:     now,
		DeletedBy:     actor.ID,
		DeletedReason: req.Reason,
		DeletionType:  models.DeletionSoft,
	}
	if err := s.resources.SoftDelete(ctx, req.Resource.Type, req.Resource.ID, mark); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "resource not found")
		}
		// The snapshot stays orphaned; retrying the delete is harmless.
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete resource")
	}

	linksDeactivated := 0
	if req.Resource.Type == domain.ResourceJob {
		linksDeactivated, err = s.resources.DeactivateShareLinks(ctx, req.Resource.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate job share links")
		}
	}

	payload := map[string]any{
		"reason":          req.Reason,
		"risk_level":      string(riskLevel),
		"dependent_count": dependents,
		"deletion_type":   string(models.DeletionSoft),
		"snapshot_id":     snapshotID.String(),
		"snapshot":        state,
		"recoverable":     true,
	}
	if req.Resource.Type == domain.ResourceJob {
		payload["share_links_deactivated"] = linksDeactivated
	}
	s.emitAudit(ctx, audit.Event{
		Action:        action,
		Actor:         actor,
		Resource:      req.Resource,
		Payload:       payload,
		CorrelationID: correlationID,
	})

	if s.metrics != nil {
		s.metrics.SoftDeletes.WithLabelValues(string(req.Resource.Type)).Inc()
	}

	return &DeleteResult{
		Resource:         req.Resource,
		RiskLevel:        riskLevel,
		DependentCount:   dependents,
		SnapshotID:       snapshotID,
		CorrelationID:    correlationID,
		LinksDeactivated: linksDeactivated,
	}, nil
}

// routeToApproval withholds the mutation and files a pending approval for a
// deletion whose risk reached the configured threshold.
func (s *Service) routeToApproval(ctx context.Context, actor domain.Actor, req SoftDeleteRequest, riskLevel models.RiskLevel, dependents int) (*DeleteResult, error) {
	approval, err := s.createApproval(ctx, actor, req.Resource, req.Reason, riskLevel, map[string]any{
		"dependent_count": dependents,
		"routed_by":       "risk threshold",
	})
	if err != nil {
		return nil, err
	}

	return &DeleteResult{
		Resource:         req.Resource,
		RiskLevel:        riskLevel,
		DependentCount:   dependents,
		CorrelationID:    approval.CorrelationID,
		RequiresApproval: true,
		ApprovalID:       approval.ID,
	}, nil
}
