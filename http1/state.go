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

// Package http1 implements the HTTP/1.x connection engine: a per-connection
// state machine with strict FIFO pipelining and an H2C cleartext upgrade
// path into http2x.
package http1

// State is one stage of a single HTTP/1.x connection's per-request
// lifecycle.
type State int

const (
	AwaitingRequest State = iota
	ReadingHeaders
	ReadingBody
	Dispatched
	WritingResponse
	Closed
)

func (s State) String() string {
	switch s {
	case AwaitingRequest:
		return "AwaitingRequest"
	case ReadingHeaders:
		return "ReadingHeaders"
	case ReadingBody:
		return "ReadingBody"
	case Dispatched:
		return "Dispatched"
	case WritingResponse:
		return "WritingResponse"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}
