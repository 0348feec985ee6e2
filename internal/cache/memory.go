package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pribylovaa/gamerfeeds/internal/models"
)

type memoryEntry struct {
	forest    models.Forest
	expiresAt time.Time
}

// Memory — кэш в памяти процесса. Леса неизменяемы (copy-on-write),
// поэтому отдаются наружу без копирования.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[models.Target]memoryEntry
	gens    map[models.Target]uint64
}

// NewMemory создаёт кэш в памяти; ttl <= 0 — записи не истекают.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[models.Target]memoryEntry),
		gens:    make(map[models.Target]uint64),
	}
}

func (m *Memory) Get(_ context.Context, target models.Target) (models.Forest, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[target]
	m.mu.RUnlock()

	if !ok || m.expired(e) {
		return nil, false, nil
	}

	return e.forest, true, nil
}

func (m *Memory) Set(_ context.Context, target models.Target, forest models.Forest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[target] = memoryEntry{forest: forest, expiresAt: m.deadline()}
	return nil
}

func (m *Memory) Generation(_ context.Context, target models.Target) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.gens[target], nil
}

func (m *Memory) Fill(_ context.Context, target models.Target, forest models.Forest, gen uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gens[target] != gen {
		return false, nil
	}

	m.entries[target] = memoryEntry{forest: forest, expiresAt: m.deadline()}
	return true, nil
}

func (m *Memory) Apply(_ context.Context, target models.Target, fn ApplyFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gens[target]++

	e, ok := m.entries[target]
	if !ok {
		return nil
	}

	if m.expired(e) {
		delete(m.entries, target)
		return nil
	}

	next, err := fn(e.forest)
	if err != nil {
		delete(m.entries, target)
		return err
	}

	// TTL не продлевается: ветка истекает от момента сборки.
	e.forest = next
	m.entries[target] = e
	return nil
}

func (m *Memory) Invalidate(_ context.Context, target models.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gens[target]++
	delete(m.entries, target)
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) deadline() time.Time {
	if m.ttl <= 0 {
		return time.Time{}
	}

	return m.now().Add(m.ttl)
}

func (m *Memory) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)
}
