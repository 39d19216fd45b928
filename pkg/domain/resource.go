package domain

import (
	dErrors "github.com/marcelarangelrhellorh/rhelloflow/pkg/domain-errors"
)

// ResourceType enumerates the deletable entities the governance core knows
// about. The core never creates these resources; it only marks or removes them.
type ResourceType string

const (
	ResourceCandidate ResourceType = "candidate"
	ResourceJob       ResourceType = "job"
	ResourceFeedback  ResourceType = "feedback"
)

// ParseResourceType validates a resource type received at a trust boundary.
func ParseResourceType(s string) (ResourceType, error) {
	switch rt := ResourceType(s); rt {
	case ResourceCandidate, ResourceJob, ResourceFeedback:
		return rt, nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown resource type: "+s)
	}
}

// ResourceRef is an abstract handle to a deletable entity. DisplayName is used
// only for audit readability, never for identity.
type ResourceRef struct {
	Type        ResourceType `json:"resource_type"`
	ID          string       `json:"resource_id"`
	DisplayName string       `json:"display_name,omitempty"`
}

// Validate enforces the minimal identity invariant of a resource handle.
func (r ResourceRef) Validate() error {
	if _, err := ParseResourceType(string(r.Type)); err != nil {
		return err
	}
	if r.ID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "resource id is required")
	}
	return nil
}
