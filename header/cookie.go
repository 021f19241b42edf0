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

package header

import "strings"

// Cookie is one name=value pair decoded from a request's Cookie header.
type Cookie struct {
	Name  string
	Value string
}

// ParseCookies decodes a request Cookie header into its constituent pairs,
// preserving declaration order (cookies may legally repeat a name).
func ParseCookies(value string) []Cookie {
	parts := strings.Split(value, ";")
	out := make([]Cookie, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		name, val, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		out = append(out, Cookie{Name: strings.TrimSpace(name), Value: strings.Trim(strings.TrimSpace(val), `"`)})
	}
	return out
}
