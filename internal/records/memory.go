package records

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend is an in-process backend for development and tests.
type MemoryBackend struct {
	mu      sync.Mutex
	items   map[string]Record
	offline bool
	failPut bool
	puts    int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string]Record)}
}

// SetOffline makes Ping fail, simulating an unreachable store.
func (m *MemoryBackend) SetOffline(offline bool) {
	m.mu.Lock()
	m.offline = offline
	m.mu.Unlock()
}

// SetFailPut makes Put fail while Ping and Get keep working.
func (m *MemoryBackend) SetFailPut(fail bool) {
	m.mu.Lock()
	m.failPut = fail
	m.mu.Unlock()
}

// Puts returns how many writes succeeded.
func (m *MemoryBackend) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

func (m *MemoryBackend) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.offline {
		return ErrUnavailable
	}
	return ctx.Err()
}

func (m *MemoryBackend) Get(ctx context.Context, owner, name string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.offline {
		return Record{}, ErrUnavailable
	}
	rec, ok := m.items[owner+"/"+name]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return rec, nil
}

func (m *MemoryBackend) Put(ctx context.Context, owner string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.offline || m.failPut {
		return ErrUnavailable
	}
	rec.Fields = append([]byte(nil), rec.Fields...)
	rec.ModifiedAt = time.Now().UTC()
	m.items[owner+"/"+rec.Name] = rec
	m.puts++
	return nil
}

var _ Backend = (*MemoryBackend)(nil)
