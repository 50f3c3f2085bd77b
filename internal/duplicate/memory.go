package duplicate

import (
	"context"
	"sync"
)

// MemoryHistory is an in-process HistoryStore.
type MemoryHistory struct {
	mu     sync.RWMutex
	posted map[string]string
	// Err, when set, is returned by every lookup.
	Err error
}

// NewMemoryHistory creates a store holding fingerprint to reference pairs.
func NewMemoryHistory(posted map[string]string) *MemoryHistory {
	m := &MemoryHistory{posted: make(map[string]string, len(posted))}
	for fp, ref := range posted {
		m.posted[fp] = ref
	}
	return m
}

// Seen implements HistoryStore.
func (m *MemoryHistory) Seen(_ context.Context, fingerprints []string) (map[string]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string)
	for _, fp := range fingerprints {
		if ref, ok := m.posted[fp]; ok {
			out[fp] = ref
		}
	}
	return out, nil
}

// Record marks a fingerprint as posted.
func (m *MemoryHistory) Record(fingerprint, ref string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posted[fingerprint] = ref
}
