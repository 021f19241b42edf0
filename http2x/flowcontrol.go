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

import "sync"

const defaultInitialWindow = 65535

// flowWindow tracks one side (connection- or stream-level) of HTTP/2 flow
// control's receive window, emitting a WINDOW_UPDATE once consumed bytes
// cross a configurable low-water mark.
type flowWindow struct {
	mu          sync.Mutex
	size        int32
	initial     int32
	consumed    int32
	lowWaterPct int32 // percentage of initial consumed before emitting an update
}

func newFlowWindow(initial int32) *flowWindow {
	return &flowWindow{size: initial, initial: initial, lowWaterPct: 50}
}

// consume records n bytes of DATA received, returning the WINDOW_UPDATE
// increment to send (0 if the low-water mark hasn't been crossed).
func (w *flowWindow) consume(n int32) int32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.size -= n
	w.consumed += n
	if w.consumed >= w.initial*w.lowWaterPct/100 {
		inc := w.consumed
		w.consumed = 0
		w.size += inc
		return inc
	}
	return 0
}

// reserve attempts to deduct n bytes from the send-side window, returning
// false if insufficient (the caller must wait for WINDOW_UPDATE).
func (w *flowWindow) reserve(n int32) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.size < n {
		return false
	}
	w.size -= n
	return true
}

// grant applies a received WINDOW_UPDATE increment.
func (w *flowWindow) grant(inc int32) {
	w.mu.Lock()
	w.size += inc
	w.mu.Unlock()
}

func (w *flowWindow) available() int32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}
