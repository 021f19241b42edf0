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

package http2x

import (
	"context"
	"fmt"
	"net"
	"sync"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/hpack"

	"github.com/rivaas-dev/netkit/exchange"
	"github.com/rivaas-dev/netkit/header"
	"github.com/rivaas-dev/netkit/neterr"
)

// Conn runs one HTTP/2 connection's event loop: negotiated settings, peer
// settings, next-stream-id, and the open-stream map. Streams are processed
// concurrently; frame I/O itself is single-threaded on the connection,
// matching the teacher's one-event-loop-per-connection model.
type Conn struct {
	nc     net.Conn
	framer *http2.Framer
	hpackD *hpack.Decoder
	hpackE *hpack.Encoder
	hpackBuf writeBuffer

	handler      exchange.Handler
	errorHandler exchange.ErrorHandler

	writeMu sync.Mutex

	mu          sync.Mutex
	streams     map[uint32]*stream
	nextPeerID  uint32
	connSend    *flowWindow
	connRecv    *flowWindow
	headerTableSize uint32
}

type writeBuffer struct{ data []byte }

func (w *writeBuffer) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}

// NewConn constructs an http2x Conn over nc. A non-nil injectedReq passed
// to Serve is handled as stream id 1.
func NewConn(nc net.Conn, handler exchange.Handler, errorHandler exchange.ErrorHandler) *Conn {
	c := &Conn{
		nc:           nc,
		framer:       http2.NewFramer(nc, nc),
		handler:      handler,
		errorHandler: errorHandler,
		streams:      make(map[uint32]*stream),
		connSend:     newFlowWindow(defaultInitialWindow),
		connRecv:     newFlowWindow(defaultInitialWindow),
		headerTableSize: 4096,
	}
	c.hpackD = hpack.NewDecoder(c.headerTableSize, nil)
	c.hpackE = hpack.NewEncoder(&c.hpackBuf)
	return c
}

// Serve runs the connection loop. If injectedReq is non-nil it is
// dispatched as stream id 1 before the loop starts reading frames (the H2C
// upgrade path), with its body already closed; frames are read afterward
// for any subsequent streams.
func (c *Conn) Serve(ctx context.Context, injectedReq *exchange.Request) error {
	c.writeSettings()

	if injectedReq != nil {
		st := newStream(1, defaultInitialWindow, defaultInitialWindow)
		st.transition(Open)
		c.mu.Lock()
		c.streams[1] = st
		c.nextPeerID = 1
		c.mu.Unlock()
		st.ex = exchange.New(ctx, injectedReq)
		close(st.body) // the H2C-injected request's body, if any, was already fully read by http1
		c.dispatchStream(st)
	}

	for {
		f, err := c.framer.ReadFrame()
		if err != nil {
			return err
		}
		if err := c.handleFrame(ctx, f); err != nil {
			return err
		}
	}
}

func (c *Conn) writeSettings() {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.framer.WriteSettings(http2.Setting{ID: http2.SettingInitialWindowSize, Val: defaultInitialWindow})
}

func (c *Conn) handleFrame(ctx context.Context, f http2.Frame) error {
	switch fr := f.(type) {
	case *http2.SettingsFrame:
		if !fr.IsAck() {
			c.writeMu.Lock()
			_ = c.framer.WriteSettingsAck()
			c.writeMu.Unlock()
		}
		return nil
	case *http2.HeadersFrame:
		return c.handleHeaders(ctx, fr)
	case *http2.DataFrame:
		return c.handleData(fr)
	case *http2.RSTStreamFrame:
		return c.handleRSTStream(fr)
	case *http2.WindowUpdateFrame:
		return c.handleWindowUpdate(fr)
	case *http2.PingFrame:
		if !fr.IsAck() {
			c.writeMu.Lock()
			_ = c.framer.WritePing(true, fr.Data)
			c.writeMu.Unlock()
		}
		return nil
	case *http2.GoAwayFrame:
		return fmt.Errorf("http2x: peer sent GOAWAY: %v", fr.ErrCode)
	default:
		return nil
	}
}

func (c *Conn) handleHeaders(ctx context.Context, fr *http2.HeadersFrame) error {
	hf, err := c.hpackD.DecodeFull(fr.HeaderBlockFragment())
	if err != nil {
		return neterr.Wrap(neterr.MalformedHeader, err)
	}

	st := newStream(fr.StreamID, defaultInitialWindow, defaultInitialWindow)
	st.transition(Open)
	c.mu.Lock()
	c.streams[fr.StreamID] = st
	c.mu.Unlock()

	req := requestFromHeaderFields(hf, c.nc)
	st.ex = exchange.New(ctx, req)

	if fr.StreamEnded() {
		close(st.body)
		st.closeRemoteHalf()
		req.Body = nil
	} else {
		req.Body = &bodyReader{s: st}
	}

	c.dispatchStream(st)
	return nil
}

func requestFromHeaderFields(hf []hpack.HeaderField, nc net.Conn) *exchange.Request {
	req := &exchange.Request{RemoteAddr: nc.RemoteAddr(), LocalAddr: nc.LocalAddr()}
	for _, f := range hf {
		switch f.Name {
		case ":method":
			req.Method = f.Value
		case ":scheme":
			req.Scheme = f.Value
		case ":authority":
			req.Authority = f.Value
		case ":path":
			req.RawPath = f.Value
			if path, query, ok := cutQuery(f.Value); ok {
				req.Path, req.Query = path, query
			} else {
				req.Path = f.Value
			}
		default:
			h, err := header.Decode(f.Name, f.Value)
			if err == nil {
				req.Headers = append(req.Headers, h)
				if header.EqualFold(h.Name, "Cookie") {
					req.Cookies = append(req.Cookies, header.ParseCookies(h.Value)...)
				}
			}
		}
	}
	return req
}

func cutQuery(path string) (string, string, bool) {
	for i := 0; i < len(path); i++ {
		if path[i] == '?' {
			return path[:i], path[i+1:], true
		}
	}
	return path, "", false
}

func (c *Conn) handleData(fr *http2.DataFrame) error {
	c.mu.Lock()
	st, ok := c.streams[fr.StreamID]
	c.mu.Unlock()
	if !ok {
		return nil
	}
	data := fr.Data()
	if len(data) > 0 {
		buf := make([]byte, len(data))
		copy(buf, data)
		select {
		case st.body <- buf:
		default:
		}
		if inc := c.connRecv.consume(int32(len(data))); inc > 0 {
			c.writeMu.Lock()
			_ = c.framer.WriteWindowUpdate(0, uint32(inc))
			c.writeMu.Unlock()
		}
		if inc := st.recvWindow.consume(int32(len(data))); inc > 0 {
			c.writeMu.Lock()
			_ = c.framer.WriteWindowUpdate(fr.StreamID, uint32(inc))
			c.writeMu.Unlock()
		}
	}
	if fr.StreamEnded() {
		close(st.body)
		st.closeRemoteHalf()
	}
	return nil
}

func (c *Conn) handleRSTStream(fr *http2.RSTStreamFrame) error {
	c.mu.Lock()
	st, ok := c.streams[fr.StreamID]
	c.mu.Unlock()
	if !ok {
		return nil
	}
	st.transition(Closed)
	if st.ex != nil {
		st.ex.Cancel(neterr.New(neterr.Canceled, "peer sent RST_STREAM"))
	}
	return nil
}

func (c *Conn) handleWindowUpdate(fr *http2.WindowUpdateFrame) error {
	if fr.StreamID == 0 {
		c.connSend.grant(int32(fr.Increment))
		return nil
	}
	c.mu.Lock()
	st, ok := c.streams[fr.StreamID]
	c.mu.Unlock()
	if ok {
		st.sendWindow.grant(int32(fr.Increment))
	}
	return nil
}

// dispatchStream runs the handler on its own goroutine so streams are
// processed concurrently; it must not block the frame-read loop.
func (c *Conn) dispatchStream(st *stream) {
	go func() {
		err := exchange.Dispatch(st.ex, c.handler, c.errorHandler)
		c.writeResponse(st, err)
	}()
}

func (c *Conn) writeResponse(st *stream, handlerErr error) {
	resp := st.ex.Response
	resp.Commit()

	hf := []hpack.HeaderField{{Name: ":status", Value: fmt.Sprintf("%d", resp.Status)}}
	for _, h := range resp.Headers {
		hf = append(hf, hpack.HeaderField{Name: toLowerASCII(h.Name), Value: h.Value})
	}

	c.writeMu.Lock()
	c.hpackBuf.data = c.hpackBuf.data[:0]
	for _, f := range hf {
		_ = c.hpackE.WriteField(f)
	}
	block := append([]byte(nil), c.hpackBuf.data...)

	endStream := resp.BodyVariant == exchange.BodyEmpty
	_ = c.framer.WriteHeaders(http2.HeadersFrameParam{
		StreamID:      st.id,
		BlockFragment: block,
		EndHeaders:    true,
		EndStream:     endStream,
	})

	if !endStream {
		body := responseBodyBytes(resp)
		_ = c.framer.WriteData(st.id, true, body)
	}
	c.writeMu.Unlock()

	st.closeLocalHalf()
	c.mu.Lock()
	delete(c.streams, st.id)
	c.mu.Unlock()
}

func responseBodyBytes(resp *exchange.Response) []byte {
	switch resp.BodyVariant {
	case exchange.BodyRaw:
		b, _ := resp.Body.([]byte)
		return b
	case exchange.BodyString:
		s, _ := resp.Body.(string)
		return []byte(s)
	default:
		return nil
	}
}

func toLowerASCII(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'A' && c <= 'Z' {
			out[i] = c + ('a' - 'A')
		}
	}
	return string(out)
}
