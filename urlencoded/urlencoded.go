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

// Package urlencoded decodes and encodes application/x-www-form-urlencoded
// bodies and query strings, preserving repeated-key order.
package urlencoded

import (
	"strings"

	"github.com/rivaas-dev/netkit/neterr"
)

// Pair is one decoded key/value entry. Order is preserved and keys may
// repeat.
type Pair struct {
	Key   string
	Value string
}

// Decode percent-decodes raw per application/x-www-form-urlencoded rules:
// '+' decodes to space, and repeated keys are all preserved in order.
func Decode(raw string) ([]Pair, error) {
	if raw == "" {
		return nil, nil
	}
	segments := strings.Split(raw, "&")
	out := make([]Pair, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		k, v, _ := strings.Cut(seg, "=")
		key, err := decodeComponent(k)
		if err != nil {
			return nil, err
		}
		val, err := decodeComponent(v)
		if err != nil {
			return nil, err
		}
		out = append(out, Pair{Key: key, Value: val})
	}
	return out, nil
}

func decodeComponent(s string) (string, error) {
	s = strings.ReplaceAll(s, "+", " ")
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%':
			if i+2 >= len(s) {
				return "", neterr.New(neterr.BadRequest, "urlencoded: truncated percent-escape at offset %d", i)
			}
			hi, ok1 := hexDigit(s[i+1])
			lo, ok2 := hexDigit(s[i+2])
			if !ok1 || !ok2 {
				return "", neterr.New(neterr.BadRequest, "urlencoded: invalid percent-escape %q", s[i:i+3])
			}
			b.WriteByte(hi<<4 | lo)
			i += 2
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// Encode renders pairs back into application/x-www-form-urlencoded form.
func Encode(pairs []Pair) string {
	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(encodeComponent(p.Key))
		b.WriteByte('=')
		b.WriteString(encodeComponent(p.Value))
	}
	return b.String()
}

const hexDigits = "0123456789ABCDEF"

func encodeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			b.WriteByte('+')
		case (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == '.' || c == '*':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0xf])
		}
	}
	return b.String()
}
