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

import (
	"strings"

	"github.com/rivaas-dev/netkit/header"
)

// Input is the set of request attributes the router chain dispatches on.
type Input struct {
	Path               string
	Method             string
	RequestContentType string // "type/subtype", may be empty
	Accept             string // raw Accept header value, may be empty
	AcceptLanguage     string // raw Accept-Language header value, may be empty
}

// pathEntry is one (pattern, next) pair in a PathLink's ordered list;
// insertion order is preserved so ties between matching patterns resolve
// by declaration order, per the path-link precedence rule.
type pathEntry struct {
	pattern *URIPattern
	next    *methodLink
}

// pathLink is the root RoutingLink: exact string matches take precedence
// over pattern matches.
type pathLink struct {
	exact    map[string]*methodLink
	patterns []pathEntry
}

func newPathLink() *pathLink {
	return &pathLink{exact: make(map[string]*methodLink)}
}

func (l *pathLink) child(pathExact, pathPattern string) *methodLink {
	if pathPattern != "" {
		for _, e := range l.patterns {
			if e.pattern.String() == pathPattern {
				return e.next
			}
		}
		next := newMethodLink()
		l.patterns = append(l.patterns, pathEntry{pattern: NewURIPattern(pathPattern), next: next})
		return next
	}
	if next, ok := l.exact[pathExact]; ok {
		return next
	}
	next := newMethodLink()
	l.exact[pathExact] = next
	return next
}

// candidates returns every methodLink whose path predicate matches path,
// exact match first, then patterns in declaration order.
func (l *pathLink) candidates(path string) []*methodLink {
	var out []*methodLink
	if next, ok := l.exact[path]; ok {
		out = append(out, next)
	}
	for _, e := range l.patterns {
		if _, ok := e.pattern.Match(path); ok {
			out = append(out, e.next)
		}
	}
	return out
}

// methodLink dispatches on request method; a missing method falls back to
// the "any" branch.
type methodLink struct {
	exact map[string]*contentTypeLink
	any   *contentTypeLink
}

func newMethodLink() *methodLink {
	return &methodLink{exact: make(map[string]*contentTypeLink)}
}

func (l *methodLink) child(method string) *contentTypeLink {
	if method == "" {
		if l.any == nil {
			l.any = newContentTypeLink()
		}
		return l.any
	}
	if next, ok := l.exact[method]; ok {
		return next
	}
	next := newContentTypeLink()
	l.exact[method] = next
	return next
}

// candidates returns the matching contentTypeLink(s) for method: the exact
// entry first (if any), then the any-branch.
func (l *methodLink) candidates(method string) []*contentTypeLink {
	var out []*contentTypeLink
	if next, ok := l.exact[method]; ok {
		out = append(out, next)
	}
	if l.any != nil {
		out = append(out, l.any)
	}
	return out
}

// ctEntry is a wildcard content-type entry ("type/*" or "*/*").
type ctEntry struct {
	typ, subtype string
	next         *acceptLink
}

// contentTypeLink dispatches on the request's Content-Type; wildcards are
// tried only when the exact map misses.
type contentTypeLink struct {
	exact    map[string]*acceptLink
	wildcard []ctEntry
}

func newContentTypeLink() *contentTypeLink {
	return &contentTypeLink{exact: make(map[string]*acceptLink)}
}

func (l *contentTypeLink) child(contentType string) *acceptLink {
	if contentType == "" || contentType == "*/*" {
		return l.wildcardChild("*", "*")
	}
	typ, subtype, hasWild := splitWildcard(contentType)
	if hasWild {
		return l.wildcardChild(typ, subtype)
	}
	key := strings.ToLower(contentType)
	if next, ok := l.exact[key]; ok {
		return next
	}
	next := newAcceptLink()
	l.exact[key] = next
	return next
}

func (l *contentTypeLink) wildcardChild(typ, subtype string) *acceptLink {
	for _, e := range l.wildcard {
		if e.typ == typ && e.subtype == subtype {
			return e.next
		}
	}
	next := newAcceptLink()
	l.wildcard = append(l.wildcard, ctEntry{typ: typ, subtype: subtype, next: next})
	return next
}

func splitWildcard(ct string) (typ, subtype string, hasWild bool) {
	typ, subtype, ok := strings.Cut(strings.ToLower(ct), "/")
	if !ok {
		return "", "", false
	}
	return typ, subtype, typ == "*" || subtype == "*"
}

// candidates returns the matching acceptLink(s) for a request content type:
// the exact entry first, then any wildcard entries whose type/subtype
// accepts it.
func (l *contentTypeLink) candidates(contentType string) []*acceptLink {
	var out []*acceptLink
	typ, subtype, ok := strings.Cut(strings.ToLower(contentType), "/")
	if ok {
		if next, ok := l.exact[typ+"/"+subtype]; ok {
			out = append(out, next)
		}
	}
	for _, e := range l.wildcard {
		if (e.typ == "*" || e.typ == typ) && (e.subtype == "*" || e.subtype == subtype) {
			out = append(out, e.next)
		}
	}
	return out
}

// acceptLink collects candidate response media types registered beneath it
// and, given a request Accept header, returns the candidate maximizing
// MediaRange score.
type acceptLink struct {
	entries map[string]*languageLink // keyed by normalized "type/subtype", "" for none-declared
}

func newAcceptLink() *acceptLink {
	return &acceptLink{entries: make(map[string]*languageLink)}
}

func (l *acceptLink) child(responseType string) *languageLink {
	key := strings.ToLower(responseType)
	if next, ok := l.entries[key]; ok {
		return next
	}
	next := newLanguageLink()
	l.entries[key] = next
	return next
}

// candidates returns every registered languageLink, best Accept-score
// first. When accept is empty every candidate scores 0, and the order of
// candidates with equal scores is not defined.
func (l *acceptLink) candidates(accept string) []*languageLink {
	type scored struct {
		next  *languageLink
		score int
	}
	var ranges []header.MediaRange
	if accept != "" {
		ranges, _ = header.ParseAccept(accept)
	}
	scoredList := make([]scored, 0, len(l.entries))
	for key, next := range l.entries {
		typ, subtype, _ := strings.Cut(key, "/")
		best := 0
		if key == "" || len(ranges) == 0 {
			best = 0
		} else {
			for _, r := range ranges {
				if r.Matches(typ, subtype, nil) {
					if s := r.Score(); s > best {
						best = s
					}
				}
			}
		}
		scoredList = append(scoredList, scored{next: next, score: best})
	}
	// Stable sort by descending score, preserving map-iteration ties as
	// insertion order is not retained by Go maps; acceptable since ties at
	// equal score are not given an ordering guarantee by the spec beyond
	// score comparison itself.
	for i := 1; i < len(scoredList); i++ {
		for j := i; j > 0 && scoredList[j].score > scoredList[j-1].score; j-- {
			scoredList[j], scoredList[j-1] = scoredList[j-1], scoredList[j]
		}
	}
	out := make([]*languageLink, len(scoredList))
	for i, s := range scoredList {
		out[i] = s.next
	}
	return out
}

// languageLink is the final RoutingLink, dispatching on Accept-Language the
// same way acceptLink dispatches on Accept.
type languageLink struct {
	entries map[string]*leaf
}

func newLanguageLink() *languageLink {
	return &languageLink{entries: make(map[string]*leaf)}
}

func (l *languageLink) child(language string) *leaf {
	key := strings.ToLower(language)
	if next, ok := l.entries[key]; ok {
		return next
	}
	next := &leaf{}
	l.entries[key] = next
	return next
}

func (l *languageLink) candidates(acceptLanguage string) []*leaf {
	type scored struct {
		next  *leaf
		score int
	}
	var ranges []header.LanguageRange
	if acceptLanguage != "" {
		ranges, _ = header.ParseAcceptLanguage(acceptLanguage)
	}
	scoredList := make([]scored, 0, len(l.entries))
	for tag, next := range l.entries {
		best := 0
		if tag != "" && len(ranges) > 0 {
			for _, r := range ranges {
				if r.Matches(tag) {
					if s := r.Score(); s > best {
						best = s
					}
				}
			}
		}
		scoredList = append(scoredList, scored{next: next, score: best})
	}
	for i := 1; i < len(scoredList); i++ {
		for j := i; j > 0 && scoredList[j].score > scoredList[j-1].score; j-- {
			scoredList[j], scoredList[j-1] = scoredList[j-1], scoredList[j]
		}
	}
	out := make([]*leaf, len(scoredList))
	for i, s := range scoredList {
		out[i] = s.next
	}
	return out
}

// leaf terminates the link chain, holding every Route registered for the
// exact predicate tuple that reached it.
type leaf struct {
	routes []*Route
}
