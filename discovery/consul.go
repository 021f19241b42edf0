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

	"github.com/hashicorp/consul/api"

	"github.com/rivaas-dev/netkit/neterr"
)

// CatalogService defines the Consul catalog operation this resolver needs,
// enabling test doubles without standing up a real Consul agent.
type CatalogService interface {
	Service(service, tag string, q *api.QueryOptions) ([]*api.CatalogService, *api.QueryMeta, error)
}

// ConsulDiscoveryService resolves "consul://<service-name>/" ServiceIDs
// against a Consul catalog's healthy service instances.
type ConsulDiscoveryService struct {
	catalog CatalogService
	tag     string
}

// NewConsulDiscoveryService constructs a resolver using the given Consul
// client configuration (CONSUL_HTTP_ADDR etc., as consumed by api.NewClient).
func NewConsulDiscoveryService(cfg *api.Config, tag string) (*ConsulDiscoveryService, error) {
	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("discovery: create consul client: %w", err)
	}
	return &ConsulDiscoveryService{catalog: client.Catalog(), tag: tag}, nil
}

func (c *ConsulDiscoveryService) SupportedSchemes() map[string]struct{} {
	return map[string]struct{}{"consul": {}}
}

func (c *ConsulDiscoveryService) Resolve(ctx context.Context, id ServiceID, policy Policy) (*Service, error) {
	instances, err := c.readInstances(ctx, id)
	if err != nil {
		return nil, err
	}
	svc := newService(id, policy, instances)
	return svc.withRefresher(&consulRefresher{parent: c, id: id}), nil
}

func (c *ConsulDiscoveryService) readInstances(ctx context.Context, id ServiceID) ([]Instance, error) {
	name := id.Authority
	if name == "" {
		name = id.Opaque
	}
	entries, _, err := c.catalog.Service(name, c.tag, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, neterr.Wrap(neterr.Unavailable, err)
	}
	instances := make([]Instance, 0, len(entries))
	for _, e := range entries {
		addr := e.ServiceAddress
		if addr == "" {
			addr = e.Address
		}
		instances = append(instances, Instance{
			Address: fmt.Sprintf("%s:%d", addr, e.ServicePort),
			Weight:  1,
		})
	}
	return instances, nil
}

type consulRefresher struct {
	parent *ConsulDiscoveryService
	id     ServiceID
}

func (r *consulRefresher) Refresh(ctx context.Context) ([]Instance, error) {
	return r.parent.readInstances(ctx, r.id)
}
