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

// Package discovery implements the discovery pipeline: the DiscoveryService
// contract, a composite that dispatches by scheme, configuration- and
// DNS-backed resolvers, and a caching decorator with TTL refresh.
package discovery

import (
	"fmt"
	"net/url"
	"strings"
)

// ServiceID is an absolute URI identifying a logical service, plus a
// request target derived from it that is always an absolute path starting
// with "/".
type ServiceID struct {
	raw           string
	Scheme        string
	Authority     string // host[:port], empty for opaque URIs
	Opaque        string // scheme-specific part, empty for hierarchical URIs
	RequestTarget string
}

// ParseServiceID validates and parses raw into a ServiceID.
//
// Accepted forms: "scheme://authority/path" (hierarchical, authority
// required) and "scheme:ssp#/path" (opaque, fragment path must be
// absolute). Any other form is rejected with one of three exact messages;
// input that net/url cannot parse at all fails with an "invalid URI" error.
func ParseServiceID(raw string) (ServiceID, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return ServiceID{}, fmt.Errorf("invalid URI: %s: %w", raw, err)
	}
	if !u.IsAbs() {
		return ServiceID{}, fmt.Errorf("URI must be absolute: %s", raw)
	}

	if u.Opaque != "" {
		if !strings.HasPrefix(u.Fragment, "/") {
			return ServiceID{}, fmt.Errorf("Opaque URI fragment path must be absolute: %s", raw)
		}
		return ServiceID{
			raw:           raw,
			Scheme:        u.Scheme,
			Opaque:        u.Opaque,
			RequestTarget: u.Fragment,
		}, nil
	}

	if u.Host == "" {
		return ServiceID{}, fmt.Errorf("URI must have an authority component: %s", raw)
	}
	target := u.Path
	if target == "" {
		target = "/"
	}
	return ServiceID{
		raw:           raw,
		Scheme:        u.Scheme,
		Authority:     u.Host,
		RequestTarget: target,
	}, nil
}

// String returns the original raw URI this ServiceID was parsed from.
func (s ServiceID) String() string { return s.raw }
