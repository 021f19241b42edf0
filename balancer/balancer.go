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

// Package balancer implements the traffic load-balancers a discovered
// Service selects an instance through: round-robin, random, and weighted
// random. All are thread-safe and non-blocking; each balancer is stateful
// over an immutable instance snapshot fixed for its lifetime.
package balancer

import (
	"math/rand/v2"
	"sort"
	"sync/atomic"
)

// Instance is anything a balancer can select: the balancer package only
// needs a stable index, not the instance's transport details.
type Instance interface{}

// Balancer selects one instance from a fixed, non-empty snapshot.
type Balancer interface {
	Next() Instance
}

// RoundRobin cycles through instances via a monotonically increasing atomic
// counter modulo len(instances). Over k*len(instances) picks, each instance
// is returned exactly k times.
type RoundRobin struct {
	instances []Instance
	counter   atomic.Uint64
}

// NewRoundRobin constructs a RoundRobin over a non-empty instance snapshot.
func NewRoundRobin(instances []Instance) *RoundRobin {
	return &RoundRobin{instances: instances}
}

// Next returns the next instance in round-robin order.
func (r *RoundRobin) Next() Instance {
	i := r.counter.Add(1) - 1
	return r.instances[i%uint64(len(r.instances))]
}

// Random picks uniformly among the instances on every call.
type Random struct {
	instances []Instance
}

// NewRandom constructs a Random over a non-empty instance snapshot.
func NewRandom(instances []Instance) *Random {
	return &Random{instances: instances}
}

// Next returns a uniformly random instance.
func (r *Random) Next() Instance {
	return r.instances[rand.IntN(len(r.instances))]
}

// WeightedRandom picks instance i with probability w_i / sum(w). It
// maintains a cumulative-weights array and resolves each draw via binary
// search over the smallest prefix sum exceeding the draw.
type WeightedRandom struct {
	instances []Instance
	cumWeight []int64
	total     int64
}

// NewWeightedRandom constructs a WeightedRandom over instances and their
// matching positive integer weights (same length and order as instances).
func NewWeightedRandom(instances []Instance, weights []int64) *WeightedRandom {
	cum := make([]int64, len(weights))
	var running int64
	for i, w := range weights {
		running += w
		cum[i] = running
	}
	return &WeightedRandom{instances: instances, cumWeight: cum, total: running}
}

// Next draws r in [0, total) and returns the instance at the smallest
// cumulative-weight prefix strictly greater than r.
func (w *WeightedRandom) Next() Instance {
	r := rand.Int64N(w.total)
	idx := sort.Search(len(w.cumWeight), func(i int) bool {
		return w.cumWeight[i] > r
	})
	return w.instances[idx]
}
