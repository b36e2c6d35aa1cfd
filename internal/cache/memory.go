package cache

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is an in-process Store. Values are kept encoded so callers never
// share slices with the cached copy.
type Memory struct {
	freshness
	mu    sync.Mutex
	value []byte
}

var _ Store = (*Memory)(nil)

func NewMemory(opts Options) *Memory {
	opts = opts.withDefaults()
	return &Memory{freshness: freshness{ttl: opts.TTL, now: opts.Now}}
}

func (m *Memory) Read(_ context.Context) (*Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.value == nil {
		return nil, false
	}
	snap, err := decode(string(m.value))
	if err != nil {
		return nil, false
	}
	return snap, true
}

func (m *Memory) Write(_ context.Context, snap Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	m.mu.Lock()
	m.value = data
	m.mu.Unlock()
}
