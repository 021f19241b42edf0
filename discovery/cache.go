// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/rivaas-dev/netkit/logging"
)

// cacheEntry pairs a cached Service with the refresh-serialization lock and
// the ticker goroutine's cancel func installed for it.
type cacheEntry struct {
	service   *Service
	refreshMu sync.Mutex
	stop      context.CancelFunc
}

// CachingDiscoveryService wraps a delegate DiscoveryService and maintains a
// ServiceID -> Service cache. Concurrent resolves for the same ServiceID
// observe the same Service reference until TTL expiry or zero-instance
// eviction.
type CachingDiscoveryService struct {
	delegate DiscoveryService
	ttl      time.Duration
	logger   *logging.Logger

	mu      sync.Mutex
	entries map[ServiceID]*cacheEntry
}

// CacheOption configures a CachingDiscoveryService.
type CacheOption func(*CachingDiscoveryService)

// WithCacheLogger attaches a logger that records each background refresh's
// outcome and duration.
func WithCacheLogger(l *logging.Logger) CacheOption {
	return func(c *CachingDiscoveryService) { c.logger = l }
}

// NewCachingDiscoveryService wraps delegate, refreshing each cached Service
// every ttl.
func NewCachingDiscoveryService(delegate DiscoveryService, ttl time.Duration, opts ...CacheOption) *CachingDiscoveryService {
	c := &CachingDiscoveryService{delegate: delegate, ttl: ttl, entries: make(map[ServiceID]*cacheEntry)}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *CachingDiscoveryService) SupportedSchemes() map[string]struct{} {
	return c.delegate.SupportedSchemes()
}

// Resolve returns the cached Service for id if present, else resolves via
// the delegate, caches the result, and installs a periodic refresh.
func (c *CachingDiscoveryService) Resolve(ctx context.Context, id ServiceID, policy Policy) (*Service, error) {
	c.mu.Lock()
	if entry, ok := c.entries[id]; ok {
		c.mu.Unlock()
		return entry.service, nil
	}
	c.mu.Unlock()

	svc, err := c.delegate.Resolve(ctx, id, policy)
	if err != nil {
		return nil, err
	}

	refreshCtx, cancel := context.WithCancel(context.Background())
	entry := &cacheEntry{service: svc, stop: cancel}

	c.mu.Lock()
	if existing, ok := c.entries[id]; ok {
		// Lost the race against a concurrent first resolver; keep the
		// winner's Service so every caller observes the same reference.
		c.mu.Unlock()
		cancel()
		return existing.service, nil
	}
	c.entries[id] = entry
	c.mu.Unlock()

	if c.ttl > 0 {
		go c.refreshLoop(refreshCtx, id, entry, policy)
	}
	return svc, nil
}

func (c *CachingDiscoveryService) refreshLoop(ctx context.Context, id ServiceID, entry *cacheEntry, policy Policy) {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.refreshOne(ctx, id, entry, policy)
		}
	}
}

// refreshOne runs one refresh tick for entry, serialized per Service, and
// evicts the entry if the refreshed instance set is empty.
func (c *CachingDiscoveryService) refreshOne(ctx context.Context, id ServiceID, entry *cacheEntry, policy Policy) {
	entry.refreshMu.Lock()
	defer entry.refreshMu.Unlock()

	start := time.Now()
	if err := entry.service.Refresh(ctx, policy); err != nil {
		if c.logger != nil {
			c.logger.LogError(err, "service refresh failed", "service", id.String())
		}
		return
	}
	if c.logger != nil {
		c.logger.LogDuration("service refresh completed", start, "service", id.String())
	}
	if entry.service.Empty() {
		c.mu.Lock()
		if c.entries[id] == entry {
			delete(c.entries, id)
		}
		c.mu.Unlock()
		entry.stop()
	}
}

// Evict removes id from the cache immediately, stopping its refresh loop.
// Exposed so tests can force eviction without waiting on TTL.
func (c *CachingDiscoveryService) Evict(id ServiceID) {
	c.mu.Lock()
	entry, ok := c.entries[id]
	if ok {
		delete(c.entries, id)
	}
	c.mu.Unlock()
	if ok {
		entry.stop()
	}
}

// Close stops every installed refresh loop.
func (c *CachingDiscoveryService) Close() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[ServiceID]*cacheEntry)
	c.mu.Unlock()
	for _, e := range entries {
		e.stop()
	}
}
