package cart

import (
	"context"
	"sync"
	"time"

	redisclient "github.com/keksoko/storefront/pkg/redis"
)

// Storage persists one session's serialized cart. Load returns nil with
// no error when nothing is stored yet.
type Storage interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}

type redisStorage struct {
	client *redisclient.Client
	key    string
	ttl    time.Duration
}

// NewRedisStorage builds cart storage backed by the shared redis client,
// keyed by the buyer's session.
func NewRedisStorage(client *redisclient.Client, sessionID string, ttl time.Duration) Storage {
	return &redisStorage{
		client: client,
		key:    client.CartKey(sessionID),
		ttl:    ttl,
	}
}

func (s *redisStorage) Load(ctx context.Context) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key)
	if err != nil {
		if redisclient.IsNil(err) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(value), nil
}

func (s *redisStorage) Save(ctx context.Context, data []byte) error {
	return s.client.Set(ctx, s.key, string(data), s.ttl)
}

func (s *redisStorage) Delete(ctx context.Context) error {
	return s.client.Del(ctx, s.key)
}

// MemoryStorage is an in-process Storage used by tests and local runs.
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
	set  bool

	SaveErr error
	LoadErr error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Seed places raw bytes into storage, bypassing Save errors.
func (m *MemoryStorage) Seed(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.set = true
}

// Bytes returns a copy of the stored payload, or nil when empty.
func (m *MemoryStorage) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil
	}
	return append([]byte(nil), m.data...)
}

func (m *MemoryStorage) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if !m.set {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryStorage) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.data = append([]byte(nil), data...)
	m.set = true
	return nil
}

func (m *MemoryStorage) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	m.set = false
	return nil
}
