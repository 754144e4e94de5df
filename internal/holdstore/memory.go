package holdstore

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests.  The clock is
// injected so TTL expiry can be driven without waiting on wall time.
type MemoryStore struct {
	mu   sync.Mutex
	now  func() time.Time
	data map[string]memoryEntry
}

type memoryEntry struct {
	rec       HoldRecord
	expiresAt time.Time
}

// NewMemoryStore returns a MemoryStore reading time from now.  Passing
// nil uses the wall clock.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{now: now, data: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, scheduleID uint64, userID string) (*HoldRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.data[Key(scheduleID, userID)]
	if !ok || !entry.expiresAt.After(s.now()) {
		return nil, nil
	}
	rec := entry.rec
	return &rec, nil
}

func (s *MemoryStore) Put(_ context.Context, userID string, rec HoldRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[Key(rec.ScheduleID, userID)] = memoryEntry{rec: rec, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Scan(_ context.Context, scheduleID uint64) (map[string]HoldRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := KeyPrefix(scheduleID)
	holds := make(map[string]HoldRecord)
	for key, entry := range s.data {
		if !strings.HasPrefix(key, prefix) || !entry.expiresAt.After(s.now()) {
			continue
		}
		holds[strings.TrimPrefix(key, prefix)] = entry.rec
	}
	return holds, nil
}

func (s *MemoryStore) Delete(_ context.Context, scheduleID uint64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, Key(scheduleID, userID))
	return nil
}
