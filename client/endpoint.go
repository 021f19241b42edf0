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

// Package client implements the HTTP client's Endpoint connection pool: a
// bounded set of connections to a single (host, port) pair, acquired under
// a fixed policy (prefer an HTTP/2 connection with spare streams, then an
// idle HTTP/1.x connection, then a fresh connection up to the cap, then a
// bounded FIFO wait).
package client

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	"time"

	"golang.org/x/net/http2"

	"github.com/rivaas-dev/netkit/neterr"
)

// conn is one pooled transport connection, either HTTP/1.x (serves exactly
// one in-flight exchange) or HTTP/2 (serves up to MaxConcurrentStreams).
type conn struct {
	netConn  net.Conn
	h2       *http2.ClientConn
	inFlight int
}

func (c *conn) isHTTP2() bool { return c.h2 != nil }

func (c *conn) available(maxStreams int) bool {
	if c.isHTTP2() {
		return c.h2.CanTakeNewRequest() && c.inFlight < maxStreams
	}
	return c.inFlight == 0
}

// Endpoint is a pool of connections to one (host, port) pair.
type Endpoint struct {
	addr              string
	tlsConfig         *tls.Config
	maxConns          int
	maxStreams        int
	acquireTimeout    time.Duration
	dialTimeout       time.Duration

	mu      sync.Mutex
	conns   []*conn
	waiters []chan struct{}
}

// Option configures an Endpoint.
type Option func(*Endpoint)

// WithMaxConnections bounds the number of pooled connections (default 8).
func WithMaxConnections(n int) Option { return func(e *Endpoint) { e.maxConns = n } }

// WithMaxConcurrentStreams bounds streams per HTTP/2 connection (default 100).
func WithMaxConcurrentStreams(n int) Option { return func(e *Endpoint) { e.maxStreams = n } }

// WithTLSConfig enables TLS dialing (and thus ALPN-negotiated HTTP/2).
func WithTLSConfig(cfg *tls.Config) Option { return func(e *Endpoint) { e.tlsConfig = cfg } }

// WithAcquireTimeout bounds how long Acquire waits in the FIFO once the
// pool is at capacity and every connection is busy (default 10s).
func WithAcquireTimeout(d time.Duration) Option { return func(e *Endpoint) { e.acquireTimeout = d } }

// NewEndpoint constructs a connection pool to addr ("host:port").
func NewEndpoint(addr string, opts ...Option) *Endpoint {
	e := &Endpoint{
		addr:           addr,
		maxConns:       8,
		maxStreams:     100,
		acquireTimeout: 10 * time.Second,
		dialTimeout:    5 * time.Second,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Lease is an acquired connection; the caller must call Release when done
// so the next pipelined waiter (or a new HTTP/1.x exchange) can proceed.
type Lease struct {
	endpoint *Endpoint
	conn     *conn
}

// Release returns the connection to the pool, decrementing its in-flight
// count and waking one FIFO waiter.
func (l *Lease) Release() {
	l.endpoint.mu.Lock()
	l.conn.inFlight--
	l.endpoint.wake()
	l.endpoint.mu.Unlock()
}

// Conn exposes the underlying net.Conn for the transport layer to write to
// and read from.
func (l *Lease) Conn() net.Conn { return l.conn.netConn }

// IsHTTP2 reports whether the leased connection negotiated HTTP/2.
func (l *Lease) IsHTTP2() bool { return l.conn.isHTTP2() }

func (e *Endpoint) wake() {
	if len(e.waiters) == 0 {
		return
	}
	ch := e.waiters[0]
	e.waiters = e.waiters[1:]
	close(ch)
}

// Acquire picks a connection per the pool's policy: an HTTP/2 connection
// with spare streams; else an idle HTTP/1.x connection; else a fresh
// connection up to maxConns; else a bounded FIFO wait.
func (e *Endpoint) Acquire(ctx context.Context) (*Lease, error) {
	for {
		e.mu.Lock()
		if c := e.pickExisting(); c != nil {
			c.inFlight++
			e.mu.Unlock()
			return &Lease{endpoint: e, conn: c}, nil
		}
		if len(e.conns) < e.maxConns {
			e.mu.Unlock()
			c, err := e.dial(ctx)
			if err != nil {
				return nil, neterr.Wrap(neterr.Unavailable, err)
			}
			e.mu.Lock()
			e.conns = append(e.conns, c)
			c.inFlight++
			e.mu.Unlock()
			return &Lease{endpoint: e, conn: c}, nil
		}

		waitCh := make(chan struct{})
		e.waiters = append(e.waiters, waitCh)
		e.mu.Unlock()

		timeout := time.NewTimer(e.acquireTimeout)
		select {
		case <-waitCh:
			timeout.Stop()
		case <-timeout.C:
			return nil, neterr.New(neterr.PoolExhausted, "endpoint %s: no connection available within %s", e.addr, e.acquireTimeout)
		case <-ctx.Done():
			timeout.Stop()
			return nil, neterr.Wrap(neterr.Canceled, ctx.Err())
		}
	}
}

// pickExisting must be called with e.mu held.
func (e *Endpoint) pickExisting() *conn {
	var bestH1 *conn
	for _, c := range e.conns {
		if c.isHTTP2() && c.available(e.maxStreams) {
			return c
		}
		if !c.isHTTP2() && c.available(0) && bestH1 == nil {
			bestH1 = c
		}
	}
	return bestH1
}

func (e *Endpoint) dial(ctx context.Context) (*conn, error) {
	d := net.Dialer{Timeout: e.dialTimeout}
	var nc net.Conn
	var err error
	var h2cc *http2.ClientConn

	if e.tlsConfig != nil {
		tlsConf := e.tlsConfig.Clone()
		if len(tlsConf.NextProtos) == 0 {
			tlsConf.NextProtos = []string{"h2", "http/1.1"}
		}
		tc, derr := tls.DialWithDialer(&d, "tcp", e.addr, tlsConf)
		nc, err = tc, derr
		if err == nil && tc.ConnectionState().NegotiatedProtocol == "h2" {
			t := &http2.Transport{}
			h2cc, err = t.NewClientConn(tc)
		}
	} else {
		nc, err = d.DialContext(ctx, "tcp", e.addr)
	}
	if err != nil {
		return nil, err
	}
	return &conn{netConn: nc, h2: h2cc}, nil
}

// Close tears down every pooled connection.
func (e *Endpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var firstErr error
	for _, c := range e.conns {
		if err := c.netConn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.conns = nil
	return firstErr
}
