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

// Package http2x implements the HTTP/2 connection engine: per-connection
// settings and stream bookkeeping, per-stream state mirroring RFC 7540,
// and connection/stream-level flow control.
package http2x

import (
	"io"
	"sync"

	"github.com/rivaas-dev/netkit/exchange"
)

// StreamState mirrors RFC 7540's per-stream state machine.
type StreamState int

const (
	Idle StreamState = iota
	Open
	HalfClosedLocal
	HalfClosedRemote
	Closed
)

func (s StreamState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Open:
		return "Open"
	case HalfClosedLocal:
		return "HalfClosedLocal"
	case HalfClosedRemote:
		return "HalfClosedRemote"
	default:
		return "Closed"
	}
}

// stream is one HTTP/2 stream's state, owned by the Conn's event loop and
// dispatched to its own goroutine once headers arrive, per the spec's
// "streams processed in parallel on the connection's event loop" model.
type stream struct {
	id    uint32
	mu    sync.Mutex
	state StreamState

	sendWindow *flowWindow
	recvWindow *flowWindow

	ex       *exchange.Exchange
	body     chan []byte // inbound DATA frames, consumed by ex.Request.Body
	bodyDone chan struct{}
}

func newStream(id uint32, initialSendWindow, initialRecvWindow int32) *stream {
	return &stream{
		id:         id,
		state:      Idle,
		sendWindow: newFlowWindow(initialSendWindow),
		recvWindow: newFlowWindow(initialRecvWindow),
		body:       make(chan []byte, 4),
		bodyDone:   make(chan struct{}),
	}
}

func (s *stream) transition(next StreamState) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
}

func (s *stream) State() StreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// closeRemoteHalf moves Open->HalfClosedRemote or HalfClosedLocal->Closed,
// mirroring receipt of END_STREAM from the peer.
func (s *stream) closeRemoteHalf() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Open:
		s.state = HalfClosedRemote
	case HalfClosedLocal:
		s.state = Closed
	}
}

// closeLocalHalf moves Open->HalfClosedLocal or HalfClosedRemote->Closed,
// mirroring this side sending END_STREAM.
func (s *stream) closeLocalHalf() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Open:
		s.state = HalfClosedLocal
	case HalfClosedRemote:
		s.state = Closed
	}
}

// bodyReader adapts a stream's inbound DATA frame channel to
// exchange.ReadCloser.
type bodyReader struct {
	s   *stream
	buf []byte
}

func (b *bodyReader) Read(p []byte) (int, error) {
	for len(b.buf) == 0 {
		select {
		case chunk, ok := <-b.s.body:
			if !ok {
				return 0, io.EOF
			}
			b.buf = chunk
		case <-b.s.bodyDone:
			select {
			case chunk, ok := <-b.s.body:
				if ok {
					b.buf = chunk
					continue
				}
			default:
			}
			return 0, io.EOF
		}
	}
	n := copy(p, b.buf)
	b.buf = b.buf[n:]
	return n, nil
}

func (b *bodyReader) Close() error { return nil }
