package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory кэш в памяти процесса; просроченные ключи удаляются при обращении и при записи
type Memory struct {
	mtx   sync.RWMutex
	items map[string]entry
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]entry), now: time.Now}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mtx.RLock()
	e, ok := m.items[key]
	m.mtx.RUnlock()

	if !ok || e.expired(m.now()) {
		return nil, ErrMiss
	}
	res := make([]byte, len(e.value))
	copy(res, e.value)
	return res, nil
}

// Set с ttl <= 0 хранит значение бессрочно
func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	now := m.now()
	m.cleanup(now)

	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	m.items[key] = e
	return nil
}

func (m *Memory) Delete(ctx context.Context, keys ...string) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Get(ctx, key)
	if err == ErrMiss {
		return false, nil
	}
	return err == nil, err
}

func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

func (m *Memory) Close() error {
	return nil
}

func (m *Memory) cleanup(now time.Time) {
	for k, e := range m.items {
		if e.expired(now) {
			delete(m.items, k)
		}
	}
}
