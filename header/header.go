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

// Package header decodes and encodes HTTP header values and converts their
// parameters to typed Go values. It is consumed by every connection engine
// (http1, http2x) to turn raw wire bytes into the Header value the Request
// type exposes, and by the router's accept/language RoutingLinks to score
// candidate responses.
package header

import (
	"fmt"
	"strings"

	"github.com/rivaas-dev/netkit/neterr"
)

// Header is a name plus its raw value, decoded lazily. Names are compared
// case-insensitively per RFC 7230 §3.2.
type Header struct {
	Name  string
	Value string
}

// forbiddenNames are pseudo-headers that must never appear on the wire in
// plain HTTP/1.x form; they are synthesized by the connection engine itself.
var forbiddenNames = map[string]struct{}{
	":authority": {},
	":method":    {},
	":path":      {},
	":scheme":    {},
	":status":    {},
}

// Decode parses a raw header line value, rejecting the HTTP/2 pseudo-header
// names and any value carrying a bare CR or LF (request smuggling vectors).
func Decode(name, rawValue string) (Header, error) {
	lower := strings.ToLower(name)
	if _, forbidden := forbiddenNames[lower]; forbidden {
		return Header{}, neterr.New(neterr.MalformedHeader, "pseudo-header %q not permitted on the wire", name)
	}
	if strings.ContainsAny(rawValue, "\r\n") {
		return Header{}, neterr.New(neterr.MalformedHeader, "header %q value contains a bare CR or LF", name)
	}
	return Header{Name: name, Value: strings.TrimSpace(rawValue)}, nil
}

// Encode renders h in canonical wire form: "Name: value".
func Encode(h Header) string {
	return fmt.Sprintf("%s: %s", h.Name, h.Value)
}

// EqualFold reports whether two header names refer to the same header.
func EqualFold(a, b string) bool {
	return strings.EqualFold(a, b)
}

// HopByHop is the set of headers stripped when a connection is upgraded from
// HTTP/1.x to HTTP/2, per RFC 7540 §8.1.2.2.
var HopByHop = map[string]struct{}{
	"connection":          {},
	"transfer-encoding":   {},
	"keep-alive":          {},
	"proxy-connection":    {},
	"upgrade":             {},
	"te":                  {},
	"trailer":             {},
	"http2-settings":      {},
	"proxy-authenticate":  {},
	"proxy-authorization": {},
}

// StripHopByHop removes hop-by-hop headers in place, returning the filtered
// slice (reusing the backing array).
func StripHopByHop(headers []Header) []Header {
	out := headers[:0]
	for _, h := range headers {
		if _, skip := HopByHop[strings.ToLower(h.Name)]; skip {
			continue
		}
		out = append(out, h)
	}
	return out
}
