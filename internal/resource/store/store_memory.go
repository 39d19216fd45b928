// Package store holds the deletion-relevant view of recruiting resources:
// candidate, job, and feedback rows with their soft-delete columns, job share
// links, and active-dependent counting. General CRUD of the recruiting domain
// lives elsewhere; this layer only marks, removes, and counts.
package store

import (
	"context"
	"sync"

	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/models"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/sentinel"
)

type recordKey struct {
	rt domain.ResourceType
	id string
}

// record is a resource row: its domain fields plus the deletion mark.
type record struct {
	fields  map[string]any
	deleted *models.DeletionMark
}

// ShareLink is a public link onto a job posting. Deactivated in cascade when
// its job is deleted.
type ShareLink struct {
	ID     string
	JobID  string
	Active bool
}

// InMemory backs the resource store with maps for unit tests and local runs.
type InMemory struct {
	mu      sync.RWMutex
	records map[recordKey]*record
	links   map[string][]*ShareLink

	countErr error
}

func NewInMemory() *InMemory {
	return &InMemory{
		records: make(map[recordKey]*record),
		links:   make(map[string][]*ShareLink),
	}
}

// Seed inserts a resource row. Test and fixture helper.
func (s *InMemory) Seed(rt domain.ResourceType, id string, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	s.records[recordKey{rt: rt, id: id}] = &record{fields: copied}
}

// SeedShareLink attaches an active share link to a job.
func (s *InMemory) SeedShareLink(jobID, linkID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[jobID] = append(s.links[jobID], &ShareLink{ID: linkID, JobID: jobID, Active: true})
}

// FailDependentCounts makes CountActiveDependents return the given error.
// Test hook for the assessor's degraded path.
func (s *InMemory) FailDependentCounts(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countErr = err
}

// Load returns the resource's current field values, including any deletion
// mark, as the snapshot source.
func (s *InMemory) Load(_ context.Context, rt domain.ResourceType, id string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[recordKey{rt: rt, id: id}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	state := make(map[string]any, len(rec.fields)+4)
	for k, v := range rec.fields {
		state[k] = v
	}
	if rec.deleted != nil {
		state["deleted_at"] = rec.deleted.DeletedAt
		state["deleted_by"] = rec.deleted.DeletedBy
		state["deleted_reason"] = rec.deleted.DeletedReason
		state["deletion_type"] = string(rec.deleted.DeletionType)
	}
	return state, nil
}

// SoftDelete marks the row deleted, leaving it physically present. Marking an
// already-marked row is a no-op so a retried delete stays harmless.
func (s *InMemory) SoftDelete(_ context.Context, rt domain.ResourceType, id string, mark models.DeletionMark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[recordKey{rt: rt, id: id}]
	if !ok {
		return sentinel.ErrNotFound
	}
	if rec.deleted == nil {
		rec.deleted = &mark
	}
	return nil
}

// HardDelete physically removes the row.
func (s *InMemory) HardDelete(_ context.Context, rt domain.ResourceType, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey{rt: rt, id: id}
	if _, ok := s.records[key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.records, key)
	return nil
}

// CountActiveDependents counts non-deleted records referencing the resource:
// active candidates tied to a job, feedback rows tied to a candidate.
// Feedback has no dependents.
func (s *InMemory) CountActiveDependents(_ context.Context, rt domain.ResourceType, id string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.countErr != nil {
		return 0, s.countErr
	}

	var refField string
	var dependentType domain.ResourceType
	switch rt {
	case domain.ResourceJob:
		refField, dependentType = "job_id", domain.ResourceCandidate
	case domain.ResourceCandidate:
		refField, dependentType = "candidate_id", domain.ResourceFeedback
	default:
		return 0, nil
	}

	count := 0
	for key, rec := range s.records {
		if key.rt != dependentType || rec.deleted != nil {
			continue
		}
		if ref, ok := rec.fields[refField].(string); ok && ref == id {
			count++
		}
	}
	return count, nil
}

// DeactivateShareLinks deactivates every active share link of a job and
// returns how many were touched.
func (s *InMemory) DeactivateShareLinks(_ context.Context, jobID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, link := range s.links[jobID] {
		if link.Active {
			link.Active = false
			n++
		}
	}
	return n, nil
}

// ShareLinks returns the job's share links. Test helper.
func (s *InMemory) ShareLinks(jobID string) []ShareLink {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ShareLink, 0, len(s.links[jobID]))
	for _, link := range s.links[jobID] {
		out = append(out, *link)
	}
	return out
}

// IsDeleted reports whether the row carries a deletion mark. Test helper.
func (s *InMemory) IsDeleted(rt domain.ResourceType, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[recordKey{rt: rt, id: id}]
	return ok && rec.deleted != nil
}

// Exists reports whether the row is physically present. Test helper.
func (s *InMemory) Exists(rt domain.ResourceType, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.records[recordKey{rt: rt, id: id}]
	return ok
}
