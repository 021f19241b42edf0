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

import "strings"

// URIPattern matches a request path against a template with ":name" and
// "*name" segments. ":name" matches exactly one path segment; "*name"
// matches the remainder of the path including slashes, and must be last.
type URIPattern struct {
	raw      string
	segments []patternSegment
}

type patternSegment struct {
	literal  string
	param    string
	wildcard bool
}

// NewURIPattern compiles a path template into a URIPattern.
func NewURIPattern(template string) *URIPattern {
	p := &URIPattern{raw: template}
	for _, seg := range strings.Split(strings.Trim(template, "/"), "/") {
		switch {
		case strings.HasPrefix(seg, ":"):
			p.segments = append(p.segments, patternSegment{param: seg[1:]})
		case strings.HasPrefix(seg, "*"):
			p.segments = append(p.segments, patternSegment{param: seg[1:], wildcard: true})
		default:
			p.segments = append(p.segments, patternSegment{literal: seg})
		}
	}
	return p
}

// String returns the original template.
func (p *URIPattern) String() string { return p.raw }

// Match reports whether path satisfies the pattern, returning the bound
// path parameters on success.
func (p *URIPattern) Match(path string) (map[string]string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	var params map[string]string

	for i, seg := range p.segments {
		if seg.wildcard {
			if params == nil {
				params = make(map[string]string)
			}
			params[seg.param] = strings.Join(parts[i:], "/")
			return params, true
		}
		if i >= len(parts) {
			return nil, false
		}
		if seg.param != "" {
			if params == nil {
				params = make(map[string]string)
			}
			params[seg.param] = parts[i]
			continue
		}
		if seg.literal != parts[i] {
			return nil, false
		}
	}
	if len(parts) != len(p.segments) {
		return nil, false
	}
	return params, true
}
