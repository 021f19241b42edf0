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

	"github.com/rivaas-dev/netkit/balancer"
	"github.com/rivaas-dev/netkit/neterr"
)

// Policy is the traffic policy used to construct a load-balancer over a
// Service's instances: round-robin, random, or weighted random, plus the
// weights a WeightedRandom policy needs.
type Policy struct {
	Kind    PolicyKind
	Weights []int64 // parallel to the instance order, only used by Weighted
}

// PolicyKind selects which balancer.Balancer a Policy builds.
type PolicyKind int

const (
	RoundRobin PolicyKind = iota
	Random
	Weighted
)

// Instance is a live endpoint backing a Service: an address plus the
// per-instance client that transports requests to it.
type Instance struct {
	Address string
	Client  any // transport client, e.g. a *client.Endpoint
	Weight  int64
}

// Service is a live handle to a named service: its identifier, current
// policy, last-refresh timestamp, instance set, and load-balancer.
type Service struct {
	ID     ServiceID
	mu     sync.RWMutex
	policy Policy

	instances     []Instance
	balancer      balancer.Balancer
	lastRefreshed time.Time
	refresher     Refresher
}

// newService builds a Service from an initial instance set; balancer is nil
// iff instances is empty.
func newService(id ServiceID, policy Policy, instances []Instance) *Service {
	s := &Service{ID: id, policy: policy}
	s.swap(instances)
	return s
}

func (s *Service) swap(instances []Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances = instances
	s.lastRefreshed = time.Now()
	if len(instances) == 0 {
		s.balancer = nil
		return
	}
	s.balancer = buildBalancer(s.policy, instances)
}

func buildBalancer(policy Policy, instances []Instance) balancer.Balancer {
	bi := make([]balancer.Instance, len(instances))
	for i, in := range instances {
		bi[i] = in
	}
	switch policy.Kind {
	case Random:
		return balancer.NewRandom(bi)
	case Weighted:
		weights := policy.Weights
		if len(weights) != len(instances) {
			weights = make([]int64, len(instances))
			for i, in := range instances {
				w := in.Weight
				if w <= 0 {
					w = 1
				}
				weights[i] = w
			}
		}
		return balancer.NewWeightedRandom(bi, weights)
	default:
		return balancer.NewRoundRobin(bi)
	}
}

// GetInstance copies the current load-balancer reference under the
// Service's read lock and delegates to it outside the lock. It is not
// wait-free: it waits while a Refresh holds the write lock to swap the
// instance set. Returns false when the Service has zero instances.
func (s *Service) GetInstance() (Instance, bool) {
	s.mu.RLock()
	b := s.balancer
	s.mu.RUnlock()
	if b == nil {
		return Instance{}, false
	}
	return b.Next().(Instance), true
}

// Instances returns a snapshot of the current instance set.
func (s *Service) Instances() []Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Instance, len(s.instances))
	copy(out, s.instances)
	return out
}

// LastRefreshed returns the time of the most recent successful refresh.
func (s *Service) LastRefreshed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefreshed
}

// Refresher computes a Service's next instance set, e.g. by re-reading a
// configuration property or re-resolving a DNS name.
type Refresher interface {
	Refresh(ctx context.Context) ([]Instance, error)
}

// Service is considered empty once its instance set becomes empty after a
// refresh; CachingDiscoveryService evicts such Services.
func (s *Service) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.instances) == 0
}

// Service implements Refresh by delegating back to whatever produced it;
// resolvers that support live refresh install a refresher via
// withRefresher.
func (s *Service) withRefresher(r Refresher) *Service {
	s.refresher = r
	return s
}

// Refresh recomputes the instance set via the installed refresher (if any)
// and swaps it in. Services with no refresher are no-ops.
func (s *Service) Refresh(ctx context.Context, policy Policy) error {
	s.mu.Lock()
	r := s.refresher
	s.mu.Unlock()
	if r == nil {
		return nil
	}
	instances, err := r.Refresh(ctx)
	if err != nil {
		return neterr.Wrap(neterr.Unavailable, err)
	}
	s.mu.Lock()
	s.policy = policy
	s.mu.Unlock()
	s.swap(instances)
	return nil
}
