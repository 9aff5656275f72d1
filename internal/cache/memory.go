package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a bounded in-process Store. When full, the oldest written
// entry is evicted first.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	queue      []queuedKey // FIFO of writes, oldest first
	seq        uint64
	maxEntries int
	now        func() time.Time
}

type memoryEntry struct {
	value   []byte
	expires time.Time
	seq     uint64
}

// queuedKey ties a queue slot to the write that created it, so a slot left
// behind by an overwritten key does not evict the newer value.
type queuedKey struct {
	key string
	seq uint64
}

// NewMemoryStore creates a new in-memory store holding at most maxEntries.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &MemoryStore{
		entries:    make(map[string]memoryEntry),
		queue:      make([]queuedKey, 0),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get retrieves a value that has not expired.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrMiss
	}
	if !s.now().Before(e.expires) {
		s.mu.Lock()
		if cur, ok := s.entries[key]; ok && cur.seq == e.seq {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, ErrMiss
	}
	return e.value, nil
}

// Set stores value until ttl elapses.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.entries[key] = memoryEntry{
		value:   value,
		expires: s.now().Add(ttl),
		seq:     s.seq,
	}
	s.queue = append(s.queue, queuedKey{key: key, seq: s.seq})

	for len(s.entries) > s.maxEntries && len(s.queue) > 0 {
		oldest := s.queue[0]
		s.queue = s.queue[1:]
		if e, ok := s.entries[oldest.key]; ok && e.seq == oldest.seq {
			delete(s.entries, oldest.key)
		}
	}
	s.compact()

	return nil
}

// compact drops queue slots whose entry was overwritten or expired away,
// keeping the queue proportional to the live entries.
func (s *MemoryStore) compact() {
	if len(s.queue) <= 2*s.maxEntries {
		return
	}
	live := make([]queuedKey, 0, len(s.entries))
	for _, q := range s.queue {
		if e, ok := s.entries[q.key]; ok && e.seq == q.seq {
			live = append(live, q)
		}
	}
	s.queue = live
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
