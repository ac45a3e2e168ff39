package catalog

import (
	"fmt"
	"sync"
	"time"

	"github.com/keksoko/storefront/pkg/logger"
)

const defaultMaxSessions = 10000

type registryEntry struct {
	browser  *Browser
	lastSeen time.Time
}

// Registry keeps one browse session per buyer so filter state and the
// stale-response guard survive across requests. Idle sessions are
// evicted when the registry grows past its cap.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
	max     int

	products lister
	logg     *logger.Logger
}

// NewRegistry builds a browser registry over the product lister.
func NewRegistry(products lister, logg *logger.Logger) (*Registry, error) {
	if products == nil {
		return nil, fmt.Errorf("product lister required")
	}
	return &Registry{
		entries:  make(map[string]*registryEntry),
		max:      defaultMaxSessions,
		products: products,
		logg:     logg,
	}, nil
}

// ForSession returns the session's browser, creating it on first use.
func (r *Registry) ForSession(sessionID string) (*Browser, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[sessionID]; ok {
		entry.lastSeen = time.Now()
		return entry.browser, nil
	}

	if len(r.entries) >= r.max {
		r.evictOldestLocked()
	}

	browser, err := NewBrowser(r.products, r.logg)
	if err != nil {
		return nil, err
	}
	r.entries[sessionID] = &registryEntry{browser: browser, lastSeen: time.Now()}
	return browser, nil
}

func (r *Registry) evictOldestLocked() {
	oldestKey := ""
	var oldest time.Time
	for key, entry := range r.entries {
		if oldestKey == "" || entry.lastSeen.Before(oldest) {
			oldestKey = key
			oldest = entry.lastSeen
		}
	}
	if oldestKey != "" {
		delete(r.entries, oldestKey)
	}
}
