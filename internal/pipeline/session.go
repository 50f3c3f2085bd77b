package pipeline

import (
	"sort"
	"sync"
)

// SessionStore keeps processed batches by session key until they are committed or
// discarded. Each batch is only reachable through its own key.
type SessionStore interface {
	Put(r *BatchResult)
	Get(key string) (*BatchResult, bool)
	Delete(key string)
	Keys() []string
}

// MemorySessions is an in-process SessionStore.
type MemorySessions struct {
	mu       sync.RWMutex
	sessions map[string]*BatchResult
}

// NewMemorySessions creates an empty store.
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]*BatchResult)}
}

// Put implements SessionStore.
func (s *MemorySessions) Put(r *BatchResult) {
	if r == nil || r.SessionKey == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[r.SessionKey] = r
}

// Get implements SessionStore.
func (s *MemorySessions) Get(key string) (*BatchResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.sessions[key]
	return r, ok
}

// Delete implements SessionStore.
func (s *MemorySessions) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}

// Keys implements SessionStore.
func (s *MemorySessions) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.sessions))
	for k := range s.sessions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
