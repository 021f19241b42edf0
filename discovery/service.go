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

	"github.com/rivaas-dev/netkit/neterr"
)

// Service is resolved by a DiscoveryService given a ServiceID and traffic
// Policy. SupportedSchemes reports the URI schemes a DiscoveryService
// resolves; scheme matching is case-sensitive.
type DiscoveryService interface {
	SupportedSchemes() map[string]struct{}
	Resolve(ctx context.Context, id ServiceID, policy Policy) (*Service, error)
}

// CompositeDiscoveryService dispatches resolve to the first child whose
// SupportedSchemes contains the requested scheme, in construction order.
type CompositeDiscoveryService struct {
	children []DiscoveryService
}

// NewComposite constructs a CompositeDiscoveryService over children, tried
// in the given order.
func NewComposite(children ...DiscoveryService) *CompositeDiscoveryService {
	return &CompositeDiscoveryService{children: children}
}

func (c *CompositeDiscoveryService) SupportedSchemes() map[string]struct{} {
	out := make(map[string]struct{})
	for _, child := range c.children {
		for scheme := range child.SupportedSchemes() {
			out[scheme] = struct{}{}
		}
	}
	return out
}

func (c *CompositeDiscoveryService) Resolve(ctx context.Context, id ServiceID, policy Policy) (*Service, error) {
	for _, child := range c.children {
		if _, ok := child.SupportedSchemes()[id.Scheme]; ok {
			return child.Resolve(ctx, id, policy)
		}
	}
	return nil, neterr.New(neterr.IllegalScheme, "no discovery service supports scheme %q", id.Scheme)
}
