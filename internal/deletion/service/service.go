// Package service implements the deletion orchestrator: the façade that
// authorizes the actor, assesses risk, captures a pre-mutation snapshot,
// performs the soft or hard delete, and emits audit events.
//
// The orchestrator holds no per-request state. Concurrency correctness rests
// on the backing stores: the single-pending-approval invariant is an atomic
// check-and-insert at the store layer, and approval decisions run under the
// store's lock via the Execute callback pattern.
package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	deletionmetrics "github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/metrics"
	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/models"
	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/risk"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	dErrors "github.com/marcelarangelrhellorh/rhelloflow/pkg/domain-errors"
	audit "github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/audit"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/requestcontext"
)

// ApprovalStore persists deletion approvals. CreateIfNonePending must be an
// atomic check-and-insert; Execute must hold the store's lock across validate
// and mutate.
type ApprovalStore interface {
	CreateIfNonePending(ctx context.Context, approval *models.DeletionApproval) error
	FindByID(ctx context.Context, id domain.ApprovalID) (*models.DeletionApproval, error)
	FindPendingByResource(ctx context.Context, rt domain.ResourceType, resourceID string) (*models.DeletionApproval, error)
	Execute(ctx context.Context, id domain.ApprovalID,
		validate func(*models.DeletionApproval) error,
		mutate func(*models.DeletionApproval)) (*models.DeletionApproval, error)
}

// SnapshotStore captures pre-mutation state. Capture is synchronous: it must
// commit before the orchestrator proceeds.
type SnapshotStore interface {
	Capture(ctx context.Context, snap models.Snapshot) (domain.SnapshotID, error)
}

// ResourceStore is the deletion-relevant view of the recruiting tables.
type ResourceStore interface {
	Load(ctx context.Context, rt domain.ResourceType, id string) (map[string]any, error)
	SoftDelete(ctx context.Context, rt domain.ResourceType, id string, mark models.DeletionMark) error
	HardDelete(ctx context.Context, rt domain.ResourceType, id string) error
	CountActiveDependents(ctx context.Context, rt domain.ResourceType, id string) (int, error)
	DeactivateShareLinks(ctx context.Context, jobID string) (int, error)
}

// AuditPublisher records audit events and serves history reads.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
	List(ctx context.Context, rt domain.ResourceType, resourceID string) ([]audit.Event, error)
}

// Service orchestrates deletion governance for recruiting resources.
type Service struct {
	resources ResourceStore
	approvals ApprovalStore
	snapshots SnapshotStore
	auditor   AuditPublisher
	assessor  *risk.Assessor

	logger  *slog.Logger
	metrics *deletionmetrics.Metrics
	tracer  trace.Tracer

	// approvalThreshold is the risk level at or above which a soft delete is
	// routed through the approval workflow instead of executing directly.
	approvalThreshold models.RiskLevel
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *deletionmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithApprovalThreshold routes deletions whose assessed risk is at or above
// the given level through the approval workflow.
func WithApprovalThreshold(level models.RiskLevel) Option {
	return func(s *Service) { s.approvalThreshold = level }
}

// New constructs the orchestrator.
func New(
	resources ResourceStore,
	approvals ApprovalStore,
	snapshots SnapshotStore,
	auditor AuditPublisher,
	opts ...Option,
) *Service {
	s := &Service{
		resources:         resources,
		approvals:         approvals,
		snapshots:         snapshots,
		auditor:           auditor,
		approvalThreshold: models.RiskCritical,
		tracer:            otel.Tracer("deletion"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.assessor = risk.NewAssessor(resources, s.logger)
	return s
}

// requireAdmin gates destructive operations. A denial is never silent: it is
// recorded as a security event attributed to the (possibly anonymous) actor.
func (s *Service) requireAdmin(ctx context.Context, actor domain.Actor, resource domain.ResourceRef, attempted audit.Action) error {
	if actor.IsAdmin() {
		return nil
	}

	s.emitAudit(ctx, audit.Event{
		Action:        audit.ActionDeleteAttemptDenied,
		Actor:         actor,
		Resource:      resource,
		CorrelationID: domain.NewCorrelationID(),
		Payload: map[string]any{
			"attempted_action": string(attempted),
			"reason":           "missing admin capability",
		},
	})
	if s.metrics != nil {
		s.metrics.DeniedAttempts.Inc()
	}

	s.logger.WarnContext(ctx, "deletion attempt denied",
		"actor_id", actor.ID,
		"actor_kind", string(actor.Kind),
		"resource_type", string(resource.Type),
		"resource_id", resource.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return dErrors.New(dErrors.CodeForbidden, "only admins can delete resources")
}

// emitAudit records an event. Audit-write failure after the fact is reported,
// never propagated: the mutation it describes is already externally visible,
// so the caller's result must not change. The snapshot makes a deletion
// reversible; the audit event only makes it explainable.
func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	userAgent := requestcontext.UserAgent(ctx)
	event.Client = audit.ClientInfo{
		UserAgent: userAgent,
		Browser:   audit.ParseBrowser(userAgent),
		IP:        requestcontext.ClientIP(ctx),
	}

	if err := s.auditor.Emit(ctx, event); err != nil {
		if s.metrics != nil {
			s.metrics.AuditWriteFailures.Inc()
		}
		s.logger.ErrorContext(ctx, "audit write failed",
			"action", string(event.Action),
			"resource_type", string(event.Resource.Type),
			"resource_id", event.Resource.ID,
			"correlation_id", event.CorrelationID.String(),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return
	}

	s.logAudit(ctx, string(event.Action),
		"actor_id", event.Actor.ID,
		"resource_type", string(event.Resource.Type),
		"resource_id", event.Resource.ID,
		"correlation_id", event.CorrelationID.String(),
	)
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}
