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
	"fmt"
	"net"

	"github.com/rivaas-dev/netkit/neterr"
)

// Resolver is the address-resolution collaborator a DnsDiscoveryService
// delegates to; *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// DnsDiscoveryService resolves a ServiceID's host to a set of socket
// addresses via an injected Resolver; each address becomes one
// ServiceInstance.
type DnsDiscoveryService struct {
	scheme   string
	resolver Resolver
	port     int
}

// NewDnsDiscoveryService constructs a resolver for scheme, looking up hosts
// via resolver (nil uses net.DefaultResolver) and pairing each resolved
// address with port.
func NewDnsDiscoveryService(scheme string, resolver Resolver, port int) *DnsDiscoveryService {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &DnsDiscoveryService{scheme: scheme, resolver: resolver, port: port}
}

func (d *DnsDiscoveryService) SupportedSchemes() map[string]struct{} {
	return map[string]struct{}{d.scheme: {}}
}

func (d *DnsDiscoveryService) Resolve(ctx context.Context, id ServiceID, policy Policy) (*Service, error) {
	instances, err := d.readInstances(ctx, id)
	if err != nil {
		return nil, err
	}
	svc := newService(id, policy, instances)
	return svc.withRefresher(&dnsRefresher{parent: d, id: id}), nil
}

func (d *DnsDiscoveryService) readInstances(ctx context.Context, id ServiceID) ([]Instance, error) {
	host, _, err := net.SplitHostPort(id.Authority)
	if err != nil {
		host = id.Authority
	}
	addrs, err := d.resolver.LookupHost(ctx, host)
	if err != nil {
		return nil, neterr.Wrap(neterr.Unavailable, err)
	}
	instances := make([]Instance, 0, len(addrs))
	for _, a := range addrs {
		instances = append(instances, Instance{Address: fmt.Sprintf("%s:%d", a, d.port), Weight: 1})
	}
	return instances, nil
}

type dnsRefresher struct {
	parent *DnsDiscoveryService
	id     ServiceID
}

func (r *dnsRefresher) Refresh(ctx context.Context) ([]Instance, error) {
	return r.parent.readInstances(ctx, r.id)
}
