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

package discovery_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/netkit/discovery"
	"github.com/rivaas-dev/netkit/neterr"
)

// stubDiscoveryService resolves a fixed scheme to a Service backed by a
// mutable instance list, so tests can simulate a backing store shrinking
// between refreshes.
type stubDiscoveryService struct {
	scheme string

	mu        sync.Mutex
	instances []discovery.Instance
}

func (s *stubDiscoveryService) SupportedSchemes() map[string]struct{} {
	return map[string]struct{}{s.scheme: {}}
}

func (s *stubDiscoveryService) setInstances(in []discovery.Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances = in
}

func (s *stubDiscoveryService) current() []discovery.Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]discovery.Instance, len(s.instances))
	copy(out, s.instances)
	return out
}

func (s *stubDiscoveryService) Resolve(ctx context.Context, id discovery.ServiceID, policy discovery.Policy) (*discovery.Service, error) {
	return discovery.NewConfigurationDiscoveryService(s.scheme, "svc", &stubConfigSource{s: s}, func(raw string) (discovery.Descriptor, error) {
		return discovery.Descriptor{Instances: s.current()}, nil
	}).Resolve(ctx, id, policy)
}

// stubConfigSource always returns a non-empty placeholder so readInstances
// invokes the ReadDescriptor (which ignores raw and reads live state off s).
type stubConfigSource struct {
	s *stubDiscoveryService
}

func (c *stubConfigSource) String(key string) string { return "placeholder" }

func TestCompositeDispatchesByScheme(t *testing.T) {
	t.Parallel()

	a := &stubDiscoveryService{scheme: "a"}
	a.setInstances([]discovery.Instance{{Address: "a-1"}})
	b := &stubDiscoveryService{scheme: "b"}
	b.setInstances([]discovery.Instance{{Address: "b-1"}})

	composite := discovery.NewComposite(a, b)
	schemes := composite.SupportedSchemes()
	_, hasA := schemes["a"]
	_, hasB := schemes["b"]
	assert.True(t, hasA)
	assert.True(t, hasB)

	id, err := discovery.ParseServiceID("b://svc/path")
	require.NoError(t, err)
	svc, err := composite.Resolve(context.Background(), id, discovery.Policy{})
	require.NoError(t, err)
	require.Len(t, svc.Instances(), 1)
	assert.Equal(t, "b-1", svc.Instances()[0].Address)
}

func TestCompositeRejectsUnsupportedScheme(t *testing.T) {
	t.Parallel()

	composite := discovery.NewComposite(&stubDiscoveryService{scheme: "a"})
	id, err := discovery.ParseServiceID("z://svc/path")
	require.NoError(t, err)

	_, err = composite.Resolve(context.Background(), id, discovery.Policy{})
	require.Error(t, err)

	nerr, ok := err.(*neterr.Error)
	require.True(t, ok)
	assert.Equal(t, neterr.IllegalScheme, nerr.Kind)
}

func TestCachingDiscoveryServiceReturnsSameReference(t *testing.T) {
	t.Parallel()

	stub := &stubDiscoveryService{scheme: "config"}
	stub.setInstances([]discovery.Instance{{Address: "1.1.1.1"}})

	cache := discovery.NewCachingDiscoveryService(stub, 0)
	defer cache.Close()

	id, err := discovery.ParseServiceID("config://svc/path")
	require.NoError(t, err)

	first, err := cache.Resolve(context.Background(), id, discovery.Policy{})
	require.NoError(t, err)
	second, err := cache.Resolve(context.Background(), id, discovery.Policy{})
	require.NoError(t, err)
	assert.Same(t, first, second, "concurrent resolves for the same ServiceID must observe the same Service reference")
}

func TestCachingDiscoveryServiceRefreshesAndEvictsWhenEmpty(t *testing.T) {
	t.Parallel()

	stub := &stubDiscoveryService{scheme: "config"}
	stub.setInstances([]discovery.Instance{{Address: "1.1.1.1"}, {Address: "2.2.2.2"}})

	const ttl = 20 * time.Millisecond
	cache := discovery.NewCachingDiscoveryService(stub, ttl)
	defer cache.Close()

	id, err := discovery.ParseServiceID("config://svc/path")
	require.NoError(t, err)

	svc, err := cache.Resolve(context.Background(), id, discovery.Policy{})
	require.NoError(t, err)
	require.Len(t, svc.Instances(), 2)

	// Shrink the backing instance set to one and let the refresh loop pick
	// it up, matching a config-watch going from 2 instances to 1.
	stub.setInstances([]discovery.Instance{{Address: "1.1.1.1"}})
	require.Eventually(t, func() bool {
		return len(svc.Instances()) == 1
	}, time.Second, 5*time.Millisecond)

	// Now drain it entirely; the cache should evict the entry, so the next
	// Resolve re-creates it from the delegate instead of returning svc.
	stub.setInstances(nil)
	require.Eventually(t, func() bool {
		return svc.Empty()
	}, time.Second, 5*time.Millisecond)

	time.Sleep(ttl) // let the eviction (installed by refreshOne) take effect
	fresh, err := cache.Resolve(context.Background(), id, discovery.Policy{})
	require.NoError(t, err)
	assert.NotSame(t, svc, fresh, "evicted ServiceID should be re-resolved from the delegate")
}
