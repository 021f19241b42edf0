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

package routing

// Router is a chain of RoutingLinks: path -> method -> request content-type
// -> accept -> accept-language. It is append-only from callers' perspective
// between requests; Resolve/ResolveAll only ever read.
type Router struct {
	root   *pathLink
	routes []*Route
}

// NewRouter constructs an empty Router.
func NewRouter() *Router {
	return &Router{root: newPathLink()}
}

// RouteBuilder accumulates predicates for one route registration. Multiple
// response content types and/or languages expand to the cartesian product
// of Route entries at Set time.
type RouteBuilder struct {
	router        *Router
	p             Predicates
	responseTypes []string
	languages     []string
}

// Route starts a new route registration.
func (r *Router) Route() *RouteBuilder {
	return &RouteBuilder{router: r}
}

// Path sets an exact path predicate.
func (b *RouteBuilder) Path(path string) *RouteBuilder {
	b.p.PathExact = path
	return b
}

// PathPattern sets a path-template predicate (mutually exclusive with Path).
func (b *RouteBuilder) PathPattern(pattern string) *RouteBuilder {
	b.p.PathPattern = pattern
	return b
}

// Method sets the method predicate; empty means "any".
func (b *RouteBuilder) Method(method string) *RouteBuilder {
	b.p.Method = method
	return b
}

// RequestContentType sets the request Content-Type predicate.
func (b *RouteBuilder) RequestContentType(ct string) *RouteBuilder {
	b.p.RequestContentType = ct
	return b
}

// AcceptContentType registers one or more response media types this route
// can produce; Set expands each into its own Route.
func (b *RouteBuilder) AcceptContentType(ct ...string) *RouteBuilder {
	b.responseTypes = append(b.responseTypes, ct...)
	return b
}

// Language registers one or more response languages this route can
// produce; Set expands each into its own Route.
func (b *RouteBuilder) Language(lang ...string) *RouteBuilder {
	b.languages = append(b.languages, lang...)
	return b
}

// Set inserts the route (or, when multiple response content types and/or
// languages were registered, the cartesian product of routes) with
// resource, returning every Route created.
func (b *RouteBuilder) Set(resource any) []*Route {
	responseTypes := b.responseTypes
	if len(responseTypes) == 0 {
		responseTypes = []string{""}
	}
	languages := b.languages
	if len(languages) == 0 {
		languages = []string{""}
	}

	var created []*Route
	for _, rt := range responseTypes {
		for _, lang := range languages {
			p := b.p
			p.ResponseType = rt
			p.Language = lang

			mLink := b.router.root.child(p.PathExact, p.PathPattern)
			ctLink := mLink.child(p.Method)
			aLink := ctLink.child(p.RequestContentType)
			lLink := aLink.child(p.ResponseType)
			leaf := lLink.child(p.Language)

			route := &Route{Predicates: p, Resource: resource}
			leaf.routes = append(leaf.routes, route)
			b.router.routes = append(b.router.routes, route)
			created = append(created, route)
		}
	}
	return created
}

// Resolve returns the single best-matching resource for in, or nil.
func (r *Router) Resolve(in Input) any {
	all := r.ResolveAll(in)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

// ResolveAll returns every matching resource ordered from most specific to
// least specific: path > method > content-type > accept > language, with
// the catch-all link last.
func (r *Router) ResolveAll(in Input) []any {
	var out []any
	for _, mLink := range r.root.candidates(in.Path) {
		for _, ctLink := range mLink.candidates(in.Method) {
			for _, aLink := range ctLink.candidates(in.RequestContentType) {
				for _, lLink := range aLink.candidates(in.Accept) {
					for _, leaf := range lLink.candidates(in.AcceptLanguage) {
						for _, route := range leaf.routes {
							if !route.Disabled() {
								out = append(out, route.Resource)
							}
						}
					}
				}
			}
		}
	}
	return out
}

// FindRoutes returns every registered Route whose predicate set includes
// every predicate set in want (intersection semantics: a zero-value field
// in want matches any value for that dimension).
func (r *Router) FindRoutes(want Predicates) []*Route {
	var out []*Route
	for _, route := range r.routes {
		if predicateSubset(want, route.Predicates) {
			out = append(out, route)
		}
	}
	return out
}

func predicateSubset(want, have Predicates) bool {
	if want.PathExact != "" && want.PathExact != have.PathExact {
		return false
	}
	if want.PathPattern != "" && want.PathPattern != have.PathPattern {
		return false
	}
	if want.Method != "" && want.Method != have.Method {
		return false
	}
	if want.RequestContentType != "" && want.RequestContentType != have.RequestContentType {
		return false
	}
	if want.ResponseType != "" && want.ResponseType != have.ResponseType {
		return false
	}
	if want.Language != "" && want.Language != have.Language {
		return false
	}
	return true
}

// GetRoutes returns every registered route, including disabled ones.
func (r *Router) GetRoutes() []*Route {
	out := make([]*Route, len(r.routes))
	copy(out, r.routes)
	return out
}
