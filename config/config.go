// Copyright 2025 The Rivaas Authors
// Copyright 2025 Company.info B.V.
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

// Package config implements the ConfigurationSource surface consumed (but
// not specified) by this module's service discovery pipeline: spec.md §6
// calls out "a ConfigurationSource exposing get(keys…) → list<property>"
// as an external collaborator whose compiler we consume but do not
// specify. This package is that consumed surface — a small merge-on-load
// store fed by pluggable [Source]s (file, Consul) and decoded by
// pluggable [codec.Decoder]s, with no struct-binding, schema-validation,
// or templating machinery layered on top of it.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rivaas-dev/netkit/config/codec"
	"github.com/rivaas-dev/netkit/config/source"
)

// Option is a functional option that can be used to configure a Config instance.
type Option func(c *Config) error

// Config manages configuration data loaded from multiple sources.
// It provides thread-safe access to configuration values read from
// the most recently completed Load.
//
// Config is safe for concurrent use by multiple goroutines.
type Config struct {
	values  map[string]any
	sources []Source
	mu      sync.RWMutex
}

// WithSource adds a source to the configuration loader.
func WithSource(src Source) Option {
	return func(c *Config) error {
		if src == nil {
			return errors.New("source cannot be nil")
		}
		c.sources = append(c.sources, src)
		return nil
	}
}

// WithFile returns an Option that loads configuration data from a file.
// The format is detected from the file extension (.yaml, .yml, .json, .toml).
func WithFile(path string) Option {
	return func(c *Config) error {
		path = os.ExpandEnv(path)
		dec, err := codec.ForPath(path)
		if err != nil {
			return fmt.Errorf("config: file source %q: %w", path, err)
		}
		c.sources = append(c.sources, source.NewFile(path, dec))
		return nil
	}
}

// WithConsul returns an Option that loads configuration data from a Consul
// KV entry. If CONSUL_HTTP_ADDR is unset the option is silently skipped,
// so a caller can compose this unconditionally in development.
func WithConsul(path string, decoder codec.Decoder) Option {
	return func(c *Config) error {
		if os.Getenv("CONSUL_HTTP_ADDR") == "" {
			return nil
		}
		src, err := source.NewConsul(path, decoder, nil)
		if err != nil {
			return fmt.Errorf("config: consul source %q: %w", path, err)
		}
		c.sources = append(c.sources, src)
		return nil
	}
}

// New creates a new Config instance with the provided options.
func New(options ...Option) (*Config, error) {
	var errs error
	c := &Config{values: map[string]any{}}

	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(c); err != nil {
			errs = errors.Join(errs, err)
		}
	}

	return c, errs
}

// MustNew creates a new Config instance, panicking if any option fails.
func MustNew(options ...Option) *Config {
	cfg, err := New(options...)
	if err != nil {
		panic(fmt.Sprintf("config: failed to create config: %v", err))
	}
	return cfg
}

// Load loads configuration data from the registered sources, in order,
// merging later sources over earlier ones, and atomically swaps the
// internal value map. Load is safe to call concurrently and repeatedly —
// discovery's CachingDiscoveryService calls it once per refresh tick.
func (c *Config) Load(ctx context.Context) error {
	if ctx == nil {
		return errors.New("config: context cannot be nil")
	}

	merged := make(map[string]any)
	for i, src := range c.sources {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		vals, err := src.Load(ctx)
		if err != nil {
			return fmt.Errorf("config: source[%d] load: %w", i, err)
		}
		for k, v := range vals {
			merged[strings.ToLower(k)] = v
		}
	}

	c.mu.Lock()
	c.values = merged
	c.mu.Unlock()
	return nil
}

// Get returns the raw value for a dot-separated key, or nil if absent.
func (c *Config) Get(key string) any {
	if c == nil || key == "" {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	key = strings.ToLower(key)
	if v, ok := c.values[key]; ok {
		return v
	}

	cur := any(c.values)
	for _, seg := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := m[seg]
		if !ok {
			for k, mv := range m {
				if strings.EqualFold(k, seg) {
					v, ok = mv, true
					break
				}
			}
		}
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// String returns the value for key as a string, or "" if absent or not a string.
func (c *Config) String(key string) string {
	v, _ := c.Get(key).(string)
	return v
}

// StringOr returns the value for key as a string, or def if absent.
func (c *Config) StringOr(key, def string) string {
	v := c.Get(key)
	if v == nil {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}
