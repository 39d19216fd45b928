// Package handler exposes the deletion governance surface over HTTP. It stays
// thin: decode, resolve the actor, delegate, translate errors.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/models"
	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/service"
	"github.com/marcelarangelrhellorh/rhelloflow/internal/platform/middleware"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	dErrors "github.com/marcelarangelrhellorh/rhelloflow/pkg/domain-errors"
	audit "github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/audit"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/httputil"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/requestcontext"
)

// Service defines the deletion operations the handler delegates to.
type Service interface {
	SoftDelete(ctx context.Context, actor domain.Actor, req service.SoftDeleteRequest) (*service.DeleteResult, error)
	HardDelete(ctx context.Context, actor domain.Actor, req service.HardDeleteRequest) (*service.DeleteResult, error)
	RequestApproval(ctx context.Context, actor domain.Actor, req service.ApprovalRequest) (*models.DeletionApproval, error)
	DecideApproval(ctx context.Context, actor domain.Actor, id domain.ApprovalID, decision service.Decision, rejectionReason string) (*models.DeletionApproval, error)
	GetApproval(ctx context.Context, id domain.ApprovalID) (*models.DeletionApproval, error)
	AssessRisk(ctx context.Context, rt domain.ResourceType, resourceID string) (models.RiskLevel, int, error)
	History(ctx context.Context, rt domain.ResourceType, resourceID string) ([]audit.Event, error)
}

// Handler wires deletion endpoints to the orchestrator.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a deletion handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts deletion endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Delete("/resources/{resourceType}/{resourceID}", h.HandleSoftDelete)
	r.Get("/resources/{resourceType}/{resourceID}/risk", h.HandleAssessRisk)
	r.Get("/resources/{resourceType}/{resourceID}/history", h.HandleHistory)

	r.Post("/deletion-approvals", h.HandleRequestApproval)
	r.Get("/deletion-approvals/{approvalID}", h.HandleGetApproval)
	r.Post("/deletion-approvals/{approvalID}/decision", h.HandleDecideApproval)
	r.Post("/deletion-approvals/{approvalID}/execute", h.HandleHardDelete)
}

// resourceRefFromPath parses the {resourceType}/{resourceID} route parameters.
func resourceRefFromPath(r *http.Request) (domain.ResourceRef, error) {
	rt, err := domain.ParseResourceType(chi.URLParam(r, "resourceType"))
	if err != nil {
		return domain.ResourceRef{}, err
	}
	resourceID := chi.URLParam(r, "resourceID")
	if resourceID == "" {
		return domain.ResourceRef{}, dErrors.New(dErrors.CodeInvalidInput, "resource id is required")
	}
	return domain.ResourceRef{Type: rt, ID: resourceID}, nil
}

// HandleSoftDelete handles DELETE /resources/{resourceType}/{resourceID}.
func (h *Handler) HandleSoftDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	ref, err := resourceRefFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[SoftDeleteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.SoftDelete(ctx, middleware.GetActor(ctx), service.SoftDeleteRequest{
		Resource: ref,
		Reason:   req.Reason,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "soft delete refused",
			"request_id", requestID,
			"resource_type", string(ref.Type),
			"resource_id", ref.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if result.RequiresApproval {
		// The mutation was withheld; the response points at the approval.
		status = http.StatusAccepted
	}
	httputil.WriteJSON(w, status, FromResult(result))
}

// HandleAssessRisk handles GET /resources/{resourceType}/{resourceID}/risk.
func (h *Handler) HandleAssessRisk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ref, err := resourceRefFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	level, dependents, err := h.service.AssessRisk(ctx, ref.Type, ref.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, RiskResponse{
		ResourceType:   string(ref.Type),
		ResourceID:     ref.ID,
		RiskLevel:      string(level),
		DependentCount: dependents,
	})
}

// HandleHistory handles GET /resources/{resourceType}/{resourceID}/history.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ref, err := resourceRefFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.service.History(ctx, ref.Type, ref.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"events": FromEvents(events),
	})
}

// HandleRequestApproval handles POST /deletion-approvals.
func (h *Handler) HandleRequestApproval(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RequestApprovalRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	approval, err := h.service.RequestApproval(ctx, middleware.GetActor(ctx), service.ApprovalRequest{
		Resource: req.ResourceRef(),
		Reason:   req.Reason,
		Metadata: req.Metadata,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "approval request refused",
			"request_id", requestID,
			"resource_type", req.ResourceType,
			"resource_id", req.ResourceID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromApproval(approval))
}

// HandleGetApproval handles GET /deletion-approvals/{approvalID}.
func (h *Handler) HandleGetApproval(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	approvalID, err := domain.ParseApprovalID(chi.URLParam(r, "approvalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	approval, err := h.service.GetApproval(ctx, approvalID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromApproval(approval))
}

// HandleDecideApproval handles POST /deletion-approvals/{approvalID}/decision.
func (h *Handler) HandleDecideApproval(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	approvalID, err := domain.ParseApprovalID(chi.URLParam(r, "approvalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[DecideApprovalRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	approval, err := h.service.DecideApproval(ctx, middleware.GetActor(ctx), approvalID, req.ParsedDecision(), req.RejectionReason)
	if err != nil {
		h.logger.WarnContext(ctx, "approval decision refused",
			"request_id", requestID,
			"approval_id", approvalID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromApproval(approval))
}

// HandleHardDelete handles POST /deletion-approvals/{approvalID}/execute.
func (h *Handler) HandleHardDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	approvalID, err := domain.ParseApprovalID(chi.URLParam(r, "approvalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.HardDelete(ctx, middleware.GetActor(ctx), service.HardDeleteRequest{
		ApprovalID: approvalID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "hard delete refused",
			"request_id", requestID,
			"approval_id", approvalID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}
