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

package http1

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/rivaas-dev/netkit/exchange"
	"github.com/rivaas-dev/netkit/header"
	"github.com/rivaas-dev/netkit/neterr"
)

const defaultMaxHeaderLineBytes = 8000

// Conn runs the per-connection event loop for one HTTP/1.x connection.
// State transitions: AwaitingRequest -> ReadingHeaders -> ReadingBody ->
// Dispatched -> WritingResponse -> (AwaitingRequest | Closed). Requests are
// accepted (pipelined) while earlier responses are still being written;
// the connection maintains a FIFO so responses are emitted in request
// arrival order regardless of handler completion order.
type Conn struct {
	netConn        net.Conn
	reader         *bufio.Reader
	writer         *bufio.Writer
	handler        exchange.Handler
	errorHandler   exchange.ErrorHandler
	maxHeaderBytes int
	logger         *slog.Logger

	state State

	onUpgrade func(req *exchange.Request, settings string) // installed by the server to hand off to http2x
}

// Option configures a Conn.
type Option func(*Conn)

// WithMaxHeaderLineBytes bounds the length of any single header line
// (default 8000, per RFC 7230's common default).
func WithMaxHeaderLineBytes(n int) Option { return func(c *Conn) { c.maxHeaderBytes = n } }

// WithLogger installs a structured logger for connection-lifecycle events.
func WithLogger(l *slog.Logger) Option { return func(c *Conn) { c.logger = l } }

// WithUpgradeHandler installs the callback invoked when a valid H2C
// upgrade request is observed; it receives the original request and the
// raw HTTP2-Settings field value.
func WithUpgradeHandler(f func(req *exchange.Request, settings string)) Option {
	return func(c *Conn) { c.onUpgrade = f }
}

// NewConn constructs a Conn over an accepted net.Conn.
func NewConn(nc net.Conn, handler exchange.Handler, errorHandler exchange.ErrorHandler, opts ...Option) *Conn {
	c := &Conn{
		netConn:        nc,
		reader:         bufio.NewReaderSize(nc, 4096),
		writer:         bufio.NewWriterSize(nc, 4096),
		handler:        handler,
		errorHandler:   errorHandler,
		maxHeaderBytes: defaultMaxHeaderLineBytes,
		logger:         slog.Default(),
		state:          AwaitingRequest,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type pendingWrite struct {
	ready chan struct{}
	ex    *exchange.Exchange
}

// Serve runs the connection's read/dispatch/write loop until the peer
// closes the connection, an unrecoverable parse error occurs, or ctx is
// found canceled before the next request is read. A read already waiting
// on the connection is not interrupted by ctx. It returns without error on
// a clean peer-initiated close.
func (c *Conn) Serve(ctx context.Context) error {
	queue := make(chan *pendingWrite, 64)
	writeErrCh := make(chan error, 1)
	go c.writeLoop(queue, writeErrCh)
	defer close(queue)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.state = AwaitingRequest
		req, upgrade, err := c.readRequest(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			c.writeError(err)
			c.state = Closed
			return err
		}

		if upgrade != "" {
			if c.onUpgrade == nil {
				c.writeError(neterr.New(neterr.UpgradeRefused, "H2C upgrade not supported by this server"))
				return nil
			}
			c.write101()
			c.onUpgrade(req, upgrade)
			return nil
		}

		ex := exchange.New(ctx, req)
		c.state = Dispatched
		pw := &pendingWrite{ready: make(chan struct{}), ex: ex}
		select {
		case queue <- pw:
		case <-ctx.Done():
			return ctx.Err()
		}

		go func() {
			_ = exchange.Dispatch(ex, c.handler, c.errorHandler)
			close(pw.ready)
		}()
	}
}

// writeLoop drains the FIFO strictly in order: it starts writing the head
// of a response only once the previous Exchange has fully written its
// final byte (enforced by processing the channel sequentially and blocking
// on each pw.ready before writing).
func (c *Conn) writeLoop(queue chan *pendingWrite, errCh chan error) {
	for pw := range queue {
		<-pw.ready
		c.state = WritingResponse
		if err := writeResponse(c.writer, pw.ex.Response); err != nil {
			errCh <- err
			return
		}
		if err := c.writer.Flush(); err != nil {
			errCh <- err
			return
		}
	}
}

func (c *Conn) writeError(err error) {
	nerr, ok := err.(*neterr.Error)
	status := 400
	if ok {
		status = nerr.HTTPStatus()
	}
	resp := &exchange.Response{Status: status, Reason: httpReason(status)}
	_ = writeResponse(c.writer, resp)
	_ = c.writer.Flush()
}

func (c *Conn) write101() {
	fmt.Fprintf(c.writer, "HTTP/1.1 101 Switching Protocols\r\nConnection: Upgrade\r\nUpgrade: h2c\r\n\r\n")
	_ = c.writer.Flush()
}

// readRequest parses one request line and header block. If the request
// carries a valid H2C upgrade ("Connection: upgrade, http2-settings" plus
// exactly one HTTP2-Settings header), it returns the settings value as
// upgrade instead of a body-bearing request.
func (c *Conn) readRequest(ctx context.Context) (*exchange.Request, string, error) {
	line, err := c.readLimitedLine()
	if err != nil {
		if nerr, ok := err.(*neterr.Error); ok && nerr.Kind == neterr.HeadersTooLarge {
			return nil, "", neterr.New(neterr.URITooLong, "request line exceeds %d bytes", c.maxHeaderBytes)
		}
		return nil, "", err
	}
	method, target, proto, err := parseRequestLine(line)
	if err != nil {
		return nil, "", err
	}

	c.state = ReadingHeaders
	headers, err := c.readHeaders()
	if err != nil {
		return nil, "", err
	}

	if settings, isUpgrade := h2cUpgradeSettings(method, headers); isUpgrade {
		return nil, settings, nil
	}

	req := &exchange.Request{
		Method:     method,
		RawPath:    target,
		Path:       normalizePath(target),
		Headers:    headers,
		RemoteAddr: c.netConn.RemoteAddr(),
		LocalAddr:  c.netConn.LocalAddr(),
	}
	if path, query, ok := strings.Cut(target, "?"); ok {
		req.Path = normalizePath(path)
		req.Query = query
	}
	for _, h := range headers {
		if header.EqualFold(h.Name, "Cookie") {
			req.Cookies = append(req.Cookies, header.ParseCookies(h.Value)...)
		}
	}

	_ = proto
	c.state = ReadingBody
	req.Body, err = c.bodyReader(headers, method)
	if err != nil {
		return nil, "", err
	}
	return req, "", nil
}

func (c *Conn) bodyReader(headers []header.Header, method string) (exchange.ReadCloser, error) {
	if !methodAllowsBody(method) {
		return nil, nil
	}
	te, hasTE := lookupHeader(headers, "Transfer-Encoding")
	if hasTE && strings.EqualFold(strings.TrimSpace(te), "chunked") {
		return &chunkedReader{r: c.reader}, nil
	}
	cl, hasCL := lookupHeader(headers, "Content-Length")
	if !hasCL {
		return nil, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
	if err != nil || n < 0 {
		return nil, neterr.New(neterr.BadRequest, "invalid Content-Length: %q", cl)
	}
	if n == 0 {
		return nil, nil
	}
	return &limitedBody{r: io.LimitReader(c.reader, n)}, nil
}

func lookupHeader(headers []header.Header, name string) (string, bool) {
	for _, h := range headers {
		if header.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

func methodAllowsBody(method string) bool {
	switch method {
	case "GET", "HEAD", "OPTIONS", "TRACE":
		return false
	default:
		return true
	}
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}
