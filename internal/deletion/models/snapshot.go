package models

import (
	"time"

	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
)

// DeletionType distinguishes recoverable marks from physical removal.
type DeletionType string

const (
	DeletionSoft DeletionType = "SOFT"
	DeletionHard DeletionType = "HARD"
)

// Snapshot is the full serialized state of a resource immediately before a
// delete mutation. It must be durably persisted before the mutation is
// attempted; it is the recovery guarantee for soft deletes and the forensic
// guarantee for hard deletes.
type Snapshot struct {
	ID            domain.SnapshotID
	Resource      domain.ResourceRef
	State         map[string]any
	DeletionType  DeletionType
	CorrelationID domain.CorrelationID
	CapturedBy    string
	CapturedAt    time.Time
}

// DeletionMark carries the soft-delete columns written onto a resource row.
// The row stays physically present and recoverable.
type DeletionMark struct {
	DeletedAt     time.Time
	DeletedBy     string
	DeletedReason string
	DeletionType  DeletionType
}
