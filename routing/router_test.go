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

package routing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/netkit/routing"
)

// TestResolveAllPrecedenceOrdering exercises the path dimension of the
// router chain's precedence order: an exact path match is returned before a
// pattern match. The method, content-type, accept and accept-language
// dimensions are covered by the tests that follow.
func TestResolveAllPrecedenceOrdering(t *testing.T) {
	t.Parallel()

	r := routing.NewRouter()
	r.Route().PathPattern("/orders/:id").Method("GET").Set("pattern-route")
	r.Route().Path("/orders/42").Method("GET").Set("exact-route")

	got := r.ResolveAll(routing.Input{Path: "/orders/42", Method: "GET"})
	require.Len(t, got, 2)
	assert.Equal(t, "exact-route", got[0], "exact path match must outrank a pattern match")
	assert.Equal(t, "pattern-route", got[1])
}

func TestResolveAllMethodExactOutranksAny(t *testing.T) {
	t.Parallel()

	r := routing.NewRouter()
	r.Route().Path("/widgets").Set("any-method-route")
	r.Route().Path("/widgets").Method("GET").Set("get-route")

	got := r.ResolveAll(routing.Input{Path: "/widgets", Method: "GET"})
	require.Len(t, got, 2)
	assert.Equal(t, "get-route", got[0])
	assert.Equal(t, "any-method-route", got[1])
}

func TestResolveAllContentTypeExactOutranksWildcard(t *testing.T) {
	t.Parallel()

	r := routing.NewRouter()
	r.Route().Path("/widgets").Method("POST").RequestContentType("*/*").Set("wildcard-ct-route")
	r.Route().Path("/widgets").Method("POST").RequestContentType("application/json").Set("exact-ct-route")

	got := r.ResolveAll(routing.Input{Path: "/widgets", Method: "POST", RequestContentType: "application/json"})
	require.Len(t, got, 2)
	assert.Equal(t, "exact-ct-route", got[0])
	assert.Equal(t, "wildcard-ct-route", got[1])
}

func TestResolveAllOrdersByAcceptScore(t *testing.T) {
	t.Parallel()

	r := routing.NewRouter()
	r.Route().Path("/report").AcceptContentType("application/xml").Set("xml-route")
	r.Route().Path("/report").AcceptContentType("application/json").Set("json-route")

	got := r.ResolveAll(routing.Input{Path: "/report", Accept: "application/xml;q=0.5, application/json"})
	require.Len(t, got, 2)
	assert.Equal(t, "json-route", got[0], "higher-quality Accept entry should be preferred")
	assert.Equal(t, "xml-route", got[1])
}

func TestResolveAllOrdersByLanguageScore(t *testing.T) {
	t.Parallel()

	r := routing.NewRouter()
	r.Route().Path("/greeting").Language("fr").Set("fr-route")
	r.Route().Path("/greeting").Language("en").Set("en-route")

	got := r.ResolveAll(routing.Input{Path: "/greeting", AcceptLanguage: "fr;q=0.3, en"})
	require.Len(t, got, 2)
	assert.Equal(t, "en-route", got[0])
	assert.Equal(t, "fr-route", got[1])
}

func TestResolveAllCatchAllPatternIsTriedLast(t *testing.T) {
	t.Parallel()

	r := routing.NewRouter()
	r.Route().PathPattern("/files/*rest").Set("catch-all-route")
	r.Route().Path("/files/readme.txt").Set("exact-file-route")

	got := r.ResolveAll(routing.Input{Path: "/files/readme.txt"})
	require.Len(t, got, 2)
	assert.Equal(t, "exact-file-route", got[0])
	assert.Equal(t, "catch-all-route", got[1])
}

func TestResolveReturnsNilWhenNoRouteMatches(t *testing.T) {
	t.Parallel()

	r := routing.NewRouter()
	r.Route().Path("/known").Set("known-route")

	assert.Nil(t, r.Resolve(routing.Input{Path: "/unknown"}))
}

func TestResolveAllSkipsDisabledRoutes(t *testing.T) {
	t.Parallel()

	r := routing.NewRouter()
	routes := r.Route().Path("/toggle").Set("toggle-route")
	require.Len(t, routes, 1)

	assert.Equal(t, "toggle-route", r.Resolve(routing.Input{Path: "/toggle"}))

	routes[0].Disable()
	assert.Nil(t, r.Resolve(routing.Input{Path: "/toggle"}))

	routes[0].Enable()
	assert.Equal(t, "toggle-route", r.Resolve(routing.Input{Path: "/toggle"}))
}

func TestRouteBuilderSetExpandsCartesianProduct(t *testing.T) {
	t.Parallel()

	r := routing.NewRouter()
	created := r.Route().Path("/multi").
		AcceptContentType("application/json", "application/xml").
		Language("en", "fr").
		Set("handler")

	assert.Len(t, created, 4, "2 content types x 2 languages should expand to 4 routes")
}

func TestFindRoutesIntersection(t *testing.T) {
	t.Parallel()

	r := routing.NewRouter()
	r.Route().Path("/a").Method("GET").Set("get-a")
	r.Route().Path("/a").Method("POST").Set("post-a")
	r.Route().Path("/b").Method("GET").Set("get-b")

	found := r.FindRoutes(routing.Predicates{Method: "GET"})
	assert.Len(t, found, 2)
}
