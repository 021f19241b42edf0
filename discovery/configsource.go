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

	"github.com/rivaas-dev/netkit/config"
)

// ConfigurationSource is the minimal surface a ConfigurationDiscoveryService
// needs from a configuration store: reading a single string property.
type ConfigurationSource interface {
	String(key string) string
}

// compile-time assertion that *config.Config satisfies ConfigurationSource.
var _ ConfigurationSource = (*config.Config)(nil)

// Descriptor is the parsed form of a configuration property value, e.g.
// "host1:1234,host2:5678" split into individual instances.
type Descriptor struct {
	Instances []Instance
}

// ReadDescriptor parses a raw property value into a Descriptor. The default
// implementation used by ConfigurationDiscoveryService splits on commas and
// treats each entry as "host:port".
type ReadDescriptor func(raw string) (Descriptor, error)

// ConfigurationDiscoveryService resolves a ServiceID by reading the
// property "<prefix>.<serviceName>" from a ConfigurationSource. A missing
// property yields a Service with an empty instance set, not an error.
type ConfigurationDiscoveryService struct {
	scheme  string
	prefix  string
	source  ConfigurationSource
	read    ReadDescriptor
	cfgLoad func(ctx context.Context) error // optional: re-Load before each refresh
}

// NewConfigurationDiscoveryService constructs a resolver for scheme,
// reading "<prefix>.<serviceName>" entries from src via read.
func NewConfigurationDiscoveryService(scheme, prefix string, src ConfigurationSource, read ReadDescriptor) *ConfigurationDiscoveryService {
	if read == nil {
		read = DefaultReadDescriptor
	}
	svc := &ConfigurationDiscoveryService{scheme: scheme, prefix: prefix, source: src, read: read}
	if c, ok := src.(*config.Config); ok {
		svc.cfgLoad = c.Load
	}
	return svc
}

func (c *ConfigurationDiscoveryService) SupportedSchemes() map[string]struct{} {
	return map[string]struct{}{c.scheme: {}}
}

// serviceName derives the config property's service-name segment from a
// ServiceID's authority (hierarchical) or opaque part.
func (c *ConfigurationDiscoveryService) serviceName(id ServiceID) string {
	if id.Authority != "" {
		return id.Authority
	}
	return id.Opaque
}

func (c *ConfigurationDiscoveryService) Resolve(ctx context.Context, id ServiceID, policy Policy) (*Service, error) {
	instances, err := c.readInstances(id)
	if err != nil {
		return nil, err
	}
	svc := newService(id, policy, instances)
	return svc.withRefresher(&configRefresher{parent: c, id: id}), nil
}

func (c *ConfigurationDiscoveryService) readInstances(id ServiceID) ([]Instance, error) {
	key := fmt.Sprintf("%s.%s", c.prefix, c.serviceName(id))
	raw := c.source.String(key)
	if raw == "" {
		return nil, nil
	}
	desc, err := c.read(raw)
	if err != nil {
		return nil, err
	}
	return desc.Instances, nil
}

type configRefresher struct {
	parent *ConfigurationDiscoveryService
	id     ServiceID
}

func (r *configRefresher) Refresh(ctx context.Context) ([]Instance, error) {
	if r.parent.cfgLoad != nil {
		if err := r.parent.cfgLoad(ctx); err != nil {
			return nil, err
		}
	}
	return r.parent.readInstances(r.id)
}

// DefaultReadDescriptor splits a comma-separated "host:port" list.
func DefaultReadDescriptor(raw string) (Descriptor, error) {
	var d Descriptor
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == ',' {
			if i > start {
				d.Instances = append(d.Instances, Instance{Address: raw[start:i]})
			}
			start = i + 1
		}
	}
	return d, nil
}
