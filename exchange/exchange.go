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

// Package exchange defines the Exchange: one request/response pair plus its
// context and terminal disposition, owned exclusively by the connection
// that created it until the response stream terminates or is canceled.
package exchange

import (
	"context"
	"net"
	"sync"

	"github.com/rivaas-dev/netkit/header"
)

// Disposition is the terminal state of an Exchange.
type Disposition int

const (
	// Pending indicates the Exchange has not yet reached a terminal state.
	Pending Disposition = iota
	Completed
	Canceled
	Failed
)

func (d Disposition) String() string {
	switch d {
	case Completed:
		return "completed"
	case Canceled:
		return "canceled"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Request is immutable after its headers are frozen by the connection
// engine that parsed them.
type Request struct {
	Method    string
	Scheme    string
	Authority string
	RawPath   string
	Query     string
	Path      string // normalized absolute path
	Params    []QueryParam
	Cookies   []header.Cookie
	Headers   []header.Header

	RemoteAddr net.Addr
	LocalAddr  net.Addr
	TLSChain   [][]byte // peer certificate chain, DER-encoded; nil if not TLS

	Body ReadCloser // nil iff the method forbids a body
}

// QueryParam is one decoded, possibly-repeated query parameter.
type QueryParam struct {
	Key   string
	Value string
}

// ReadCloser is the minimal streaming-body contract a Request/Response body
// exposes; engines adapt their own framing (chunked, HTTP/2 DATA, gRPC
// frames) to it.
type ReadCloser interface {
	Read(p []byte) (int, error)
	Close() error
}

// Header returns the first header matching name, case-insensitively.
func (r *Request) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if header.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// BodyVariant identifies which shape a Response's body producer uses.
type BodyVariant int

const (
	BodyEmpty BodyVariant = iota
	BodyRaw
	BodyString
	BodyResource
	BodySSE
)

// Response is mutable until the first byte of body is committed.
type Response struct {
	mu        sync.Mutex
	committed bool

	Status  int
	Reason  string
	Headers []header.Header
	Trailers []header.Header

	BodyVariant BodyVariant
	Body        any // shape depends on BodyVariant: []byte, string or io.Reader; BodySSE has no defined shape and the engines write no body for it
}

// SetHeader sets (or replaces) a response header, failing silently (a no-op)
// once the response is committed, matching the set-only-before-commit
// invariant.
func (r *Response) SetHeader(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.committed {
		return
	}
	for i, h := range r.Headers {
		if header.EqualFold(h.Name, name) {
			r.Headers[i].Value = value
			return
		}
	}
	r.Headers = append(r.Headers, header.Header{Name: name, Value: value})
}

// Commit marks the response committed; subsequent SetHeader calls are
// no-ops. Idempotent.
func (r *Response) Commit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = true
}

// Committed reports whether Commit has been called.
func (r *Response) Committed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.committed
}

// Exchange is one request/response pair, owned exclusively by the
// connection that accepted it.
type Exchange struct {
	ctx      context.Context
	cancel   context.CancelCauseFunc
	Request  *Request
	Response *Response

	mu          sync.Mutex
	disposition Disposition
	err         error
	values      map[any]any
}

// New constructs a pending Exchange bound to parent, whose cancellation
// also cancels the Exchange.
func New(parent context.Context, req *Request) *Exchange {
	ctx, cancel := context.WithCancelCause(parent)
	return &Exchange{
		ctx:      ctx,
		cancel:   cancel,
		Request:  req,
		Response: &Response{Status: 200},
	}
}

// Context returns the Exchange's context, canceled when the Exchange
// reaches a terminal disposition.
func (e *Exchange) Context() context.Context { return e.ctx }

// SetValue stores an arbitrary scratch value under key, for handlers and
// interceptors to pass state along the chain.
func (e *Exchange) SetValue(key, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.values == nil {
		e.values = make(map[any]any)
	}
	e.values[key] = value
}

// Value retrieves a scratch value previously stored with SetValue.
func (e *Exchange) Value(key any) any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.values[key]
}

// Disposition returns the Exchange's current terminal state (Pending until
// one of Complete/Cancel/Fail is called).
func (e *Exchange) Disposition() Disposition {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disposition
}

// Err returns the cause recorded by Fail or Cancel, if any.
func (e *Exchange) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Complete marks the Exchange successfully finished.
func (e *Exchange) Complete() {
	e.terminate(Completed, nil)
}

// Cancel marks the Exchange canceled, propagating cause to subscribers of
// both request and response bodies via ctx.
func (e *Exchange) Cancel(cause error) {
	e.terminate(Canceled, cause)
}

// Fail marks the Exchange failed with err.
func (e *Exchange) Fail(err error) {
	e.terminate(Failed, err)
}

func (e *Exchange) terminate(d Disposition, err error) {
	e.mu.Lock()
	if e.disposition != Pending {
		e.mu.Unlock()
		return
	}
	e.disposition = d
	e.err = err
	e.mu.Unlock()
	e.cancel(err)
}
