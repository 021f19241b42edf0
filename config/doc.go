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

// Package config implements the ConfigurationSource surface consumed by the
// discovery pipeline's configuration-backed resolvers.
//
// A [Config] merges values loaded from an ordered list of [Source]s — a file
// decoded by extension, or a Consul KV entry — with later sources overriding
// earlier ones. All keys are case-insensitive and addressable with dot
// notation.
//
// # Quick start
//
//	cfg := config.MustNew(
//	    config.WithFile("service.yaml"),
//	    config.WithConsul("production/service.yaml", codec.YAMLCodec{}),
//	)
//
//	if err := cfg.Load(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
//	host := cfg.StringOr("server.host", "localhost")
//
// # Sources
//
// File sources detect their codec from the extension (.json, .yaml/.yml,
// .toml) via [github.com/rivaas-dev/netkit/config/codec.ForPath]. Consul
// sources take an explicit [github.com/rivaas-dev/netkit/config/codec.Decoder]
// since a KV path carries no extension.
//
// # Thread safety
//
// Config is safe for concurrent use. Load swaps the internal value map
// atomically under a lock; Get/String/StringOr read under a read lock.
package config
