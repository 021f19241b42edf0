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

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/rivaas-dev/netkit/header"
	"github.com/rivaas-dev/netkit/neterr"
)

// BodyKind selects which shape a RequestBuilder's body takes.
type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyBytes
	BodyURLEncoded
	BodyMultipart
)

// RequestBuilder accumulates one outgoing request's method, URI template,
// headers, and body. The request is transmitted only when Send is called
// ("on subscribe" in the reactive original); interceptors run first and
// may short-circuit with a synthetic Response.
type RequestBuilder struct {
	client       *http.Client
	method       string
	template     string
	pathParams   map[string]string
	queryParams  []header.Header
	headers      []header.Header
	body         BodyKind
	bodyBytes    []byte
	interceptors []Interceptor
}

// Interceptor runs before transmission and may return a non-nil Response to
// short-circuit the request entirely.
type Interceptor func(req *RequestBuilder) (*http.Response, error)

// NewRequest starts a request builder for method against a URI template,
// e.g. "https://svc/users/{id}".
func NewRequest(httpClient *http.Client, method, template string) *RequestBuilder {
	return &RequestBuilder{client: httpClient, method: method, template: template}
}

// PathParam binds a "{name}" placeholder in the URI template.
func (b *RequestBuilder) PathParam(name, value string) *RequestBuilder {
	if b.pathParams == nil {
		b.pathParams = make(map[string]string)
	}
	b.pathParams[name] = value
	return b
}

// QueryParam appends a query parameter.
func (b *RequestBuilder) QueryParam(name, value string) *RequestBuilder {
	b.queryParams = append(b.queryParams, header.Header{Name: name, Value: value})
	return b
}

// Header sets a request header.
func (b *RequestBuilder) Header(name, value string) *RequestBuilder {
	b.headers = append(b.headers, header.Header{Name: name, Value: value})
	return b
}

// Intercept registers an interceptor, run in registration order before
// transmission.
func (b *RequestBuilder) Intercept(i Interceptor) *RequestBuilder {
	b.interceptors = append(b.interceptors, i)
	return b
}

// BodyRaw sets a raw byte body.
func (b *RequestBuilder) BodyRaw(data []byte) *RequestBuilder {
	b.body = BodyBytes
	b.bodyBytes = data
	return b
}

// BodyString sets a string body.
func (b *RequestBuilder) BodyString(s string) *RequestBuilder {
	return b.BodyRaw([]byte(s))
}

func (b *RequestBuilder) resolveURL() (string, error) {
	out := b.template
	for name, value := range b.pathParams {
		out = strings.ReplaceAll(out, "{"+name+"}", url.PathEscape(value))
	}
	if len(b.queryParams) == 0 {
		return out, nil
	}
	u, err := url.Parse(out)
	if err != nil {
		return "", neterr.Wrap(neterr.BadRequest, err)
	}
	q := u.Query()
	for _, p := range b.queryParams {
		q.Add(p.Name, p.Value)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Send transmits the request, running interceptors first; the first
// interceptor to return a non-nil response or error short-circuits the
// remainder. The client does not retry by default: callers wrap Send in
// their own retry loop if the call is known idempotent.
func (b *RequestBuilder) Send(ctx context.Context) (*http.Response, error) {
	for _, i := range b.interceptors {
		resp, err := i(b)
		if err != nil {
			return nil, err
		}
		if resp != nil {
			return resp, nil
		}
	}

	target, err := b.resolveURL()
	if err != nil {
		return nil, err
	}

	var bodyReader *strings.Reader
	if b.body != BodyNone {
		bodyReader = strings.NewReader(string(b.bodyBytes))
	}
	var req *http.Request
	if bodyReader != nil {
		req, err = http.NewRequestWithContext(ctx, b.method, target, bodyReader)
	} else {
		req, err = http.NewRequestWithContext(ctx, b.method, target, nil)
	}
	if err != nil {
		return nil, neterr.Wrap(neterr.BadRequest, err)
	}
	for _, h := range b.headers {
		req.Header.Add(h.Name, h.Value)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, neterr.Wrap(neterr.Unavailable, err)
	}
	return resp, nil
}

// UpgradeWebSocket performs the request as a WebSocket upgrade instead of a
// plain HTTP exchange, returning the established connection.
func (b *RequestBuilder) UpgradeWebSocket(ctx context.Context) (*websocket.Conn, *http.Response, error) {
	target, err := b.resolveURL()
	if err != nil {
		return nil, nil, err
	}
	target, err = toWebSocketScheme(target)
	if err != nil {
		return nil, nil, err
	}

	hdr := http.Header{}
	for _, h := range b.headers {
		hdr.Add(h.Name, h.Value)
	}

	dialer := websocket.Dialer{}
	conn, resp, err := dialer.DialContext(ctx, target, hdr)
	if err != nil {
		return nil, resp, neterr.Wrap(neterr.UpgradeRefused, err)
	}
	return conn, resp, nil
}

func toWebSocketScheme(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", neterr.Wrap(neterr.BadRequest, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", neterr.New(neterr.IllegalScheme, "cannot upgrade scheme %q to WebSocket", u.Scheme)
	}
	return u.String(), nil
}

// String implements fmt.Stringer for debugging/log output.
func (b *RequestBuilder) String() string {
	return fmt.Sprintf("%s %s", b.method, b.template)
}
