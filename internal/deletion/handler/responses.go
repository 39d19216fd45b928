package handler

import (
	"time"

	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/models"
	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/service"
	audit "github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/audit"
)

// DeleteResponse reports the outcome of a soft or hard delete.
type DeleteResponse struct {
	ResourceType     string `json:"resource_type"`
	ResourceID       string `json:"resource_id"`
	RiskLevel        string `json:"risk_level"`
	DependentCount   int    `json:"dependent_count"`
	SnapshotID       string `json:"snapshot_id,omitempty"`
	CorrelationID    string `json:"correlation_id"`
	RequiresApproval bool   `json:"requires_approval"`
	ApprovalID       string `json:"approval_id,omitempty"`
	LinksDeactivated int    `json:"share_links_deactivated,omitempty"`
}

func FromResult(result *service.DeleteResult) DeleteResponse {
	resp := DeleteResponse{
		ResourceType:     string(result.Resource.Type),
		ResourceID:       result.Resource.ID,
		RiskLevel:        string(result.RiskLevel),
		DependentCount:   result.DependentCount,
		CorrelationID:    result.CorrelationID.String(),
		RequiresApproval: result.RequiresApproval,
		LinksDeactivated: result.LinksDeactivated,
	}
	if !result.SnapshotID.IsNil() {
		resp.SnapshotID = result.SnapshotID.String()
	}
	if !result.ApprovalID.IsNil() {
		resp.ApprovalID = result.ApprovalID.String()
	}
	return resp
}

// ApprovalResponse is the wire form of a deletion approval.
type ApprovalResponse struct {
	ID              string         `json:"id"`
	ResourceType    string         `json:"resource_type"`
	ResourceID      string         `json:"resource_id"`
	Status          string         `json:"status"`
	RiskLevel       string         `json:"risk_level"`
	RequiresMFA     bool           `json:"requires_mfa"`
	RequestedBy     string         `json:"requested_by"`
	DeletionReason  string         `json:"deletion_reason"`
	DecidedBy       string         `json:"decided_by,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CorrelationID   string         `json:"correlation_id"`
	RequestedAt     time.Time      `json:"requested_at"`
	DecidedAt       *time.Time     `json:"decided_at,omitempty"`
}

func FromApproval(a *models.DeletionApproval) ApprovalResponse {
	resp := ApprovalResponse{
		ID:              a.ID.String(),
		ResourceType:    string(a.Resource.Type),
		ResourceID:      a.Resource.ID,
		Status:          string(a.Status),
		RiskLevel:       string(a.RiskLevel),
		RequiresMFA:     a.RequiresMFA,
		RequestedBy:     a.RequestedBy,
		DeletionReason:  a.DeletionReason,
		DecidedBy:       a.DecidedBy,
		RejectionReason: a.RejectionReason,
		Metadata:        a.Metadata,
		CorrelationID:   a.CorrelationID.String(),
		RequestedAt:     a.CreatedAt,
	}
	if !a.DecidedAt.IsZero() {
		decidedAt := a.DecidedAt
		resp.DecidedAt = &decidedAt
	}
	return resp
}

// RiskResponse is the wire form of a risk assessment.
type RiskResponse struct {
	ResourceType   string `json:"resource_type"`
	ResourceID     string `json:"resource_id"`
	RiskLevel      string `json:"risk_level"`
	DependentCount int    `json:"dependent_count"`
}

// AuditEventResponse is the wire form of one audit trail entry.
type AuditEventResponse struct {
	ID            string         `json:"id"`
	Action        string         `json:"action"`
	Category      string         `json:"category"`
	ActorID       string         `json:"actor_id"`
	ActorKind     string         `json:"actor_kind"`
	ResourceType  string         `json:"resource_type"`
	ResourceID    string         `json:"resource_id"`
	Payload       map[string]any `json:"payload,omitempty"`
	CorrelationID string         `json:"correlation_id"`
	Timestamp     time.Time      `json:"timestamp"`
}

func FromEvents(events []audit.Event) []AuditEventResponse {
	out := make([]AuditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, AuditEventResponse{
			ID:            e.ID.String(),
			Action:        string(e.Action),
			Category:      string(e.Action.Category()),
			ActorID:       e.Actor.ID,
			ActorKind:     string(e.Actor.Kind),
			ResourceType:  string(e.Resource.Type),
			ResourceID:    e.Resource.ID,
			Payload:       e.Payload,
			CorrelationID: e.CorrelationID.String(),
			Timestamp:     e.Timestamp,
		})
	}
	return out
}
