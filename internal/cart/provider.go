package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/keksoko/storefront/pkg/logger"
	redisclient "github.com/keksoko/storefront/pkg/redis"
)

const defaultMaxStores = 10000

type providerEntry struct {
	store    *Store
	lastSeen time.Time
	loadOnce sync.Once
	loadErr  error
}

// Provider hands out one cart store per buyer session. Stores are
// cached so concurrent requests for the same session share an instance
// and its mutex, rather than racing a load-modify-save cycle through
// redis. Idle sessions are evicted once the cache grows past its cap;
// the durable state stays in redis and is reloaded on next use.
type Provider struct {
	mu      sync.Mutex
	entries map[string]*providerEntry
	max     int

	storageFor func(sessionID string) Storage
	logg       *logger.Logger
}

// NewProvider builds a cart provider over the shared redis client.
func NewProvider(client *redisclient.Client, ttl time.Duration, logg *logger.Logger) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &Provider{
		entries: make(map[string]*providerEntry),
		max:     defaultMaxStores,
		storageFor: func(sessionID string) Storage {
			return NewRedisStorage(client, sessionID, ttl)
		},
		logg: logg,
	}, nil
}

// ForSession returns the session's cart store, hydrated from storage
// on first use.
func (p *Provider) ForSession(ctx context.Context, sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}

	entry, err := p.entryFor(sessionID)
	if err != nil {
		return nil, err
	}

	entry.loadOnce.Do(func() {
		entry.loadErr = entry.store.Load(ctx)
	})
	if entry.loadErr != nil {
		p.drop(sessionID, entry)
		return nil, entry.loadErr
	}
	return entry.store, nil
}

func (p *Provider) entryFor(sessionID string) (*providerEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if entry, ok := p.entries[sessionID]; ok {
		entry.lastSeen = time.Now()
		return entry, nil
	}

	if len(p.entries) >= p.max {
		p.evictOldestLocked()
	}

	store, err := NewStore(p.storageFor(sessionID), p.logg)
	if err != nil {
		return nil, err
	}
	entry := &providerEntry{store: store, lastSeen: time.Now()}
	p.entries[sessionID] = entry
	return entry, nil
}

// drop removes a failed entry so the next request retries the load.
func (p *Provider) drop(sessionID string, entry *providerEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if current, ok := p.entries[sessionID]; ok && current == entry {
		delete(p.entries, sessionID)
	}
}

func (p *Provider) evictOldestLocked() {
	oldestKey := ""
	var oldest time.Time
	for key, entry := range p.entries {
		if oldestKey == "" || entry.lastSeen.Before(oldest) {
			oldestKey = key
			oldest = entry.lastSeen
		}
	}
	if oldestKey != "" {
		delete(p.entries, oldestKey)
	}
}
