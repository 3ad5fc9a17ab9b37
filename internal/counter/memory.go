package counter

import (
	"context"
	"sync"
)

// Memory implementa Store en memoria; para dev y tests.
type Memory struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewMemory() *Memory {
	return &Memory{counts: make(map[string]int64)}
}

func (m *Memory) Increment(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return nil
}

// Value lee un contador; sólo para asserts en tests.
func (m *Memory) Value(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}
