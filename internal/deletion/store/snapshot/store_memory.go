package snapshot

import (
	"context"
	"sync"

	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/models"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/sentinel"
)

// InMemory keeps snapshots keyed by ID. Snapshots are write-once; there is no
// update path.
type InMemory struct {
	mu        sync.RWMutex
	snapshots map[domain.SnapshotID]models.Snapshot

	// failNext simulates a persistence failure for fail-safe ordering tests.
	failNext bool
}

func NewInMemory() *InMemory {
	return &InMemory{snapshots: make(map[domain.SnapshotID]models.Snapshot)}
}

// FailNext makes the next Capture return ErrUnavailable. Test hook only.
func (s *InMemory) FailNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = true
}

// Capture durably records the snapshot and returns its ID.
func (s *InMemory) Capture(_ context.Context, snap models.Snapshot) (domain.SnapshotID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failNext {
		s.failNext = false
		return domain.SnapshotID{}, sentinel.ErrUnavailable
	}

	if snap.ID.IsNil() {
		snap.ID = domain.NewSnapshotID()
	}
	s.snapshots[snap.ID] = snap
	return snap.ID, nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.SnapshotID) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &snap, nil
}

// ListByCorrelation returns every snapshot taken under one operation.
func (s *InMemory) ListByCorrelation(_ context.Context, correlationID domain.CorrelationID) ([]models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Snapshot
	for _, snap := range s.snapshots {
		if snap.CorrelationID == correlationID {
			out = append(out, snap)
		}
	}
	return out, nil
}
