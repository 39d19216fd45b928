package handler

import (
	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/service"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	dErrors "github.com/marcelarangelrhellorh/rhelloflow/pkg/domain-errors"
)

// SoftDeleteRequest is the body of DELETE /resources/{type}/{id}.
type SoftDeleteRequest struct {
	Reason string `json:"reason"`
}

func (r SoftDeleteRequest) Validate() error {
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "a deletion reason is required")
	}
	return nil
}

// RequestApprovalRequest is the body of POST /deletion-approvals.
type RequestApprovalRequest struct {
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	DisplayName  string         `json:"display_name,omitempty"`
	Reason       string         `json:"reason"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

func (r RequestApprovalRequest) Validate() error {
	if _, err := domain.ParseResourceType(r.ResourceType); err != nil {
		return err
	}
	if r.ResourceID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "resource_id is required")
	}
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "a deletion reason is required")
	}
	return nil
}

// ResourceRef builds the domain reference after Validate has passed.
func (r RequestApprovalRequest) ResourceRef() domain.ResourceRef {
	rt, _ := domain.ParseResourceType(r.ResourceType)
	return domain.ResourceRef{Type: rt, ID: r.ResourceID, DisplayName: r.DisplayName}
}

// DecideApprovalRequest is the body of POST /deletion-approvals/{id}/decision.
type DecideApprovalRequest struct {
	Decision        string `json:"decision"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

func (r DecideApprovalRequest) Validate() error {
	decision, err := service.ParseDecision(r.Decision)
	if err != nil {
		return err
	}
	if decision == service.DecisionRejected && r.RejectionReason == "" {
		return dErrors.New(dErrors.CodeValidation, "a rejection reason is required")
	}
	return nil
}

// ParsedDecision returns the decision after Validate has passed.
func (r DecideApprovalRequest) ParsedDecision() service.Decision {
	decision, _ := service.ParseDecision(r.Decision)
	return decision
}
