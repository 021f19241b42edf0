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

import (
	"math/big"
	"net"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rivaas-dev/netkit/neterr"
)

// Converter decodes a raw string parameter value into a Go value of a
// specific type, and re-encodes it back to a string. Dispatch is by the
// static type token a caller registers the converter under, mirroring the
// string-to-typed-value registry a route parameter binder needs.
type Converter struct {
	Decode func(string) (any, error)
	Encode func(any) (string, error)
}

// registry holds the built-in and user-registered converters, keyed by a
// type token such as "int" or "LocalDate". Extensible via Register.
type registry struct {
	converters map[string]Converter
}

var defaultRegistry = newRegistry()

func newRegistry() *registry {
	r := &registry{converters: make(map[string]Converter, 32)}
	r.registerBuiltins()
	return r
}

// Register adds or overrides a converter for the given type token.
func Register(typeToken string, c Converter) {
	defaultRegistry.converters[typeToken] = c
}

// Convert decodes value into the type identified by typeToken, failing with
// UNSUPPORTED_TYPE if no converter is registered for that token.
func Convert(typeToken, value string) (any, error) {
	c, ok := defaultRegistry.converters[typeToken]
	if !ok {
		return nil, neterr.New(neterr.UnsupportedType, "no converter registered for type %q", typeToken)
	}
	v, err := c.Decode(value)
	if err != nil {
		return nil, neterr.Wrap(neterr.BadRequest, err)
	}
	return v, nil
}

func (r *registry) registerBuiltins() {
	str := func(v any) (string, error) { return v.(string), nil }

	r.converters["string"] = Converter{
		Decode: func(s string) (any, error) { return s, nil },
		Encode: str,
	}
	r.converters["byte"] = Converter{
		Decode: func(s string) (any, error) {
			v, err := strconv.ParseInt(s, 10, 8)
			return int8(v), err
		},
		Encode: func(v any) (string, error) { return strconv.FormatInt(int64(v.(int8)), 10), nil },
	}
	r.converters["short"] = Converter{
		Decode: func(s string) (any, error) {
			v, err := strconv.ParseInt(s, 10, 16)
			return int16(v), err
		},
		Encode: func(v any) (string, error) { return strconv.FormatInt(int64(v.(int16)), 10), nil },
	}
	r.converters["int"] = Converter{
		Decode: func(s string) (any, error) {
			v, err := strconv.ParseInt(s, 10, 32)
			return int32(v), err
		},
		Encode: func(v any) (string, error) { return strconv.FormatInt(int64(v.(int32)), 10), nil },
	}
	r.converters["long"] = Converter{
		Decode: func(s string) (any, error) { return strconv.ParseInt(s, 10, 64) },
		Encode: func(v any) (string, error) { return strconv.FormatInt(v.(int64), 10), nil },
	}
	r.converters["float"] = Converter{
		Decode: func(s string) (any, error) {
			v, err := strconv.ParseFloat(s, 32)
			return float32(v), err
		},
		Encode: func(v any) (string, error) { return strconv.FormatFloat(float64(v.(float32)), 'g', -1, 32), nil },
	}
	r.converters["double"] = Converter{
		Decode: func(s string) (any, error) { return strconv.ParseFloat(s, 64) },
		Encode: func(v any) (string, error) { return strconv.FormatFloat(v.(float64), 'g', -1, 64), nil },
	}
	r.converters["bool"] = Converter{
		Decode: func(s string) (any, error) { return strconv.ParseBool(s) },
		Encode: func(v any) (string, error) { return strconv.FormatBool(v.(bool)), nil },
	}
	r.converters["char"] = Converter{
		Decode: func(s string) (any, error) {
			r := []rune(s)
			if len(r) != 1 {
				return nil, neterr.New(neterr.BadRequest, "expected exactly one character, got %q", s)
			}
			return r[0], nil
		},
		Encode: func(v any) (string, error) { return string(v.(rune)), nil },
	}
	r.converters["BigInteger"] = Converter{
		Decode: func(s string) (any, error) {
			i, ok := new(big.Int).SetString(s, 10)
			if !ok {
				return nil, neterr.New(neterr.BadRequest, "invalid integer: %q", s)
			}
			return i, nil
		},
		Encode: func(v any) (string, error) { return v.(*big.Int).String(), nil },
	}
	r.converters["BigDecimal"] = Converter{
		Decode: func(s string) (any, error) {
			f, ok := new(big.Float).SetString(s)
			if !ok {
				return nil, neterr.New(neterr.BadRequest, "invalid decimal: %q", s)
			}
			return f, nil
		},
		Encode: func(v any) (string, error) { return v.(*big.Float).Text('g', -1), nil },
	}
	r.converters["LocalDate"] = timeConverter("2006-01-02")
	r.converters["LocalDateTime"] = timeConverter("2006-01-02T15:04:05")
	r.converters["ZonedDateTime"] = timeConverter(time.RFC3339)
	r.converters["URI"] = Converter{
		Decode: func(s string) (any, error) { return url.Parse(s) },
		Encode: func(v any) (string, error) { return v.(*url.URL).String(), nil },
	}
	r.converters["URL"] = r.converters["URI"]
	r.converters["Path"] = Converter{
		Decode: func(s string) (any, error) { return filepath.Clean(s), nil },
		Encode: func(v any) (string, error) { return v.(string), nil },
	}
	r.converters["Pattern"] = Converter{
		Decode: func(s string) (any, error) { return regexp.Compile(s) },
		Encode: func(v any) (string, error) { return v.(*regexp.Regexp).String(), nil },
	}
	r.converters["InetAddress"] = Converter{
		Decode: func(s string) (any, error) {
			ip := net.ParseIP(s)
			if ip == nil {
				addrs, err := net.LookupIP(s)
				if err != nil || len(addrs) == 0 {
					return nil, neterr.New(neterr.BadRequest, "invalid address: %q", s)
				}
				return addrs[0], nil
			}
			return ip, nil
		},
		Encode: func(v any) (string, error) { return v.(net.IP).String(), nil },
	}
	r.converters["Locale"] = Converter{
		Decode: func(s string) (any, error) { return strings.ReplaceAll(s, "_", "-"), nil },
		Encode: str,
	}
	r.converters["Currency"] = Converter{
		Decode: func(s string) (any, error) { return strings.ToUpper(s), nil },
		Encode: str,
	}
}

func timeConverter(layout string) Converter {
	return Converter{
		Decode: func(s string) (any, error) { return time.Parse(layout, s) },
		Encode: func(v any) (string, error) { return v.(time.Time).Format(layout), nil },
	}
}
