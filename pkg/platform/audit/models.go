package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// These require tamper-proof storage and long retention.
	// Examples: soft/hard deletes, approval lifecycle transitions.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring and forensics.
	// Examples: denied deletion attempts by non-admin actors.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. Unknown actions land here.
	CategoryOperations EventCategory = "operations"
)

// Action is the closed set of audit actions this subsystem can emit. New
// actions require a constant here and an entry in actionCategories, so an
// action can never exist without a payload contract.
type Action string

const (
	ActionCandidateSoftDelete Action = "CANDIDATE_SOFT_DELETE"
	ActionJobSoftDelete       Action = "JOB_SOFT_DELETE"
	ActionFeedbackSoftDelete  Action = "FEEDBACK_SOFT_DELETE"

	ActionCandidateHardDelete Action = "CANDIDATE_HARD_DELETE"
	ActionJobHardDelete       Action = "JOB_HARD_DELETE"
	ActionFeedbackHardDelete  Action = "FEEDBACK_HARD_DELETE"

	ActionDeleteAttemptDenied Action = "DELETE_ATTEMPT_DENIED"

	ActionApprovalRequest  Action = "DELETE_APPROVAL_REQUEST"
	ActionApprovalGranted  Action = "DELETE_APPROVAL_GRANTED"
	ActionApprovalRejected Action = "DELETE_APPROVAL_REJECTED"
)

// actionCategories maps each action to its category.
// Compliance: deletion facts and approval lifecycle, long retention required.
// Security: negative events that feed monitoring and alerting.
var actionCategories = map[Action]EventCategory{
	ActionCandidateSoftDelete: CategoryCompliance,
	ActionJobSoftDelete:       CategoryCompliance,
	ActionFeedbackSoftDelete:  CategoryCompliance,
	ActionCandidateHardDelete: CategoryCompliance,
	ActionJobHardDelete:       CategoryCompliance,
	ActionFeedbackHardDelete:  CategoryCompliance,
	ActionApprovalRequest:     CategoryCompliance,
	ActionApprovalGranted:     CategoryCompliance,
	ActionApprovalRejected:    CategoryCompliance,

	ActionDeleteAttemptDenied: CategorySecurity,
}

// Category returns the EventCategory for this action.
// Unknown actions default to CategoryOperations.
func (a Action) Category() EventCategory {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// SoftDeleteAction returns the soft-delete action for a resource type.
func SoftDeleteAction(rt domain.ResourceType) Action {
	switch rt {
	case domain.ResourceJob:
		return ActionJobSoftDelete
	case domain.ResourceFeedback:
		return ActionFeedbackSoftDelete
	default:
		return ActionCandidateSoftDelete
	}
}

// HardDeleteAction returns the hard-delete action for a resource type.
func HardDeleteAction(rt domain.ResourceType) Action {
	switch rt {
	case domain.ResourceJob:
		return ActionJobHardDelete
	case domain.ResourceFeedback:
		return ActionFeedbackHardDelete
	default:
		return ActionCandidateHardDelete
	}
}

// ClientInfo is caller metadata attributed at the server boundary. The IP is
// never trusted from the request payload.
type ClientInfo struct {
	UserAgent string `json:"user_agent,omitempty"`
	Browser   string `json:"browser,omitempty"`
	IP        string `json:"ip,omitempty"`
}

// Event is an immutable audit fact. Once appended it is never updated or
// deleted by this subsystem; the log is the system of record.
type Event struct {
	ID            uuid.UUID
	Action        Action
	Actor         domain.Actor
	Resource      domain.ResourceRef
	Payload       map[string]any
	Client        ClientInfo
	CorrelationID domain.CorrelationID
	Timestamp     time.Time
}

// Store is the append-only persistence contract. Implementations must keep
// per-log timestamps monotonically non-decreasing and never expose mutation.
type Store interface {
	Append(ctx context.Context, event Event) error
	// ListByResource returns events for a resource ordered by timestamp
	// ascending. Paging is the caller's concern.
	ListByResource(ctx context.Context, rt domain.ResourceType, resourceID string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Sink receives a copy of every emitted event for fan-out to external systems
// (Kafka, SIEM). Sink failures are reported, never propagated to callers.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}
