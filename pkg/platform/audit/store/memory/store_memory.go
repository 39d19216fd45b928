package memory

import (
	"context"
	"sync"

	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	audit "github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/audit"
)

type resourceKey struct {
	rt domain.ResourceType
	id string
}

// InMemoryStore keeps events in insertion order per resource. Append-only by
// construction: there is no update or delete path.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[resourceKey][]audit.Event
	all    []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[resourceKey][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[resourceKey][]audit.Event)
	s.all = nil
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Timestamps are monotonically non-decreasing per log: clamp a write that
	// would go backwards (clock skew between goroutines) to the last one seen.
	if n := len(s.all); n > 0 && event.Timestamp.Before(s.all[n-1].Timestamp) {
		event.Timestamp = s.all[n-1].Timestamp
	}

	key := resourceKey{rt: event.Resource.Type, id: event.Resource.ID}
	s.events[key] = append(s.events[key], event)
	s.all = append(s.all, event)
	return nil
}

// ListByResource returns events for a resource ordered oldest first.
func (s *InMemoryStore) ListByResource(_ context.Context, rt domain.ResourceType, resourceID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := resourceKey{rt: rt, id: resourceID}
	return append([]audit.Event{}, s.events[key]...), nil
}

// ListRecent returns the most recent N events across all resources.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := len(s.all) - limit
	if start < 0 {
		start = 0
	}
	return append([]audit.Event{}, s.all[start:]...), nil
}
