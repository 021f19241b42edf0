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

// Package routing implements the Router core: a chain of RoutingLinks
// dispatching, in order, on path, method, request content-type, accept
// (response content-type), and accept-language.
package routing

// Predicates is the comparable predicate set a Route is keyed by. Two
// routes with identical predicate sets are considered equal, per the Route
// equality rule.
type Predicates struct {
	PathExact          string
	PathPattern        string
	Method             string
	RequestContentType string
	ResponseType       string
	Language           string
}

// Route is a predicate tuple plus the resource (handler or interceptor
// list) it dispatches to.
type Route struct {
	Predicates Predicates
	Resource   any

	disabled bool
}

// Disable marks the route skipped during resolution; it remains visible to
// GetRoutes.
func (r *Route) Disable() { r.disabled = true }

// Enable reverses a prior Disable.
func (r *Route) Enable() { r.disabled = false }

// Disabled reports whether Disable has been called without a matching
// Enable.
func (r *Route) Disabled() bool { return r.disabled }

// Equal reports whether two routes share the same predicate set.
func (r *Route) Equal(other *Route) bool {
	return r.Predicates == other.Predicates
}
