package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/marcelarangelrhellorh/rhelloflow/pkg/domain-errors"
)

// Typed UUID wrappers so an approval ID can never be passed where a snapshot ID
// is expected. Parsing enforces the invariant that IDs are valid, non-nil UUIDs
// at trust boundaries (HTTP handlers, store scans).

type (
	// ApprovalID identifies a DeletionApproval.
	ApprovalID uuid.UUID
	// SnapshotID identifies a pre-mutation Snapshot.
	SnapshotID uuid.UUID
	// CorrelationID groups every event belonging to one logical deletion
	// operation (request, approval decision, execution).
	CorrelationID uuid.UUID
)

func (id ApprovalID) String() string    { return uuid.UUID(id).String() }
func (id SnapshotID) String() string    { return uuid.UUID(id).String() }
func (id CorrelationID) String() string { return uuid.UUID(id).String() }

func (id ApprovalID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id SnapshotID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CorrelationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewApprovalID generates a fresh approval ID.
func NewApprovalID() ApprovalID { return ApprovalID(uuid.New()) }

// NewSnapshotID generates a fresh snapshot ID.
func NewSnapshotID() SnapshotID { return SnapshotID(uuid.New()) }

// NewCorrelationID generates a fresh correlation ID for a deletion operation.
func NewCorrelationID() CorrelationID { return CorrelationID(uuid.New()) }

// ParseApprovalID parses and validates an approval ID from its string form.
func ParseApprovalID(s string) (ApprovalID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ApprovalID{}, err
	}
	return ApprovalID(u), nil
}

// ParseCorrelationID parses and validates a correlation ID from its string form.
func ParseCorrelationID(s string) (CorrelationID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return CorrelationID{}, err
	}
	return CorrelationID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}
