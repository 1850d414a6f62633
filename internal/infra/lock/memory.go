// Package lock provides the single-process KeyLocker used in dev mode and
// tests. Production deployments use the Redis locker so serialization
// holds across processes.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"mitra-support/internal/domain"
	"mitra-support/internal/domain/ports"
)

var _ ports.KeyLocker = (*MemoryLocker)(nil)

type entry struct {
	token string
	ch    chan struct{} // closed on release
}

// MemoryLocker is a keyed mutex with the same bounded-wait contract as the
// Redis locker. TTLs are ignored; in-process holders always unlock.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*entry)}
}

func (m *MemoryLocker) TryLock(ctx context.Context, key string, _ time.Duration) (string, error) {
	deadline := time.Now().Add(5 * time.Second)
	for {
		m.mu.Lock()
		cur, held := m.locks[key]
		if !held {
			token := uuid.NewString()
			m.locks[key] = &entry{token: token, ch: make(chan struct{})}
			m.mu.Unlock()
			return token, nil
		}
		ch := cur.ch
		m.mu.Unlock()

		if time.Now().After(deadline) {
			return "", domain.ErrLockUnavailable
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ch:
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func (m *MemoryLocker) Unlock(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, held := m.locks[key]
	if !held || cur.token != token {
		return nil
	}
	close(cur.ch)
	delete(m.locks, key)
	return nil
}
