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
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStreamStartsIdle(t *testing.T) {
	t.Parallel()

	st := newStream(1, defaultInitialWindow, defaultInitialWindow)
	assert.Equal(t, Idle, st.State())
}

func TestStreamStateTransitionsBothEndsClose(t *testing.T) {
	t.Parallel()

	st := newStream(1, defaultInitialWindow, defaultInitialWindow)
	st.transition(Open)
	assert.Equal(t, Open, st.State())

	st.closeRemoteHalf() // peer sent END_STREAM
	assert.Equal(t, HalfClosedRemote, st.State())

	st.closeLocalHalf() // this side's response completes
	assert.Equal(t, Closed, st.State())
}

func TestStreamStateLocalThenRemoteClose(t *testing.T) {
	t.Parallel()

	st := newStream(1, defaultInitialWindow, defaultInitialWindow)
	st.transition(Open)

	st.closeLocalHalf()
	assert.Equal(t, HalfClosedLocal, st.State())

	st.closeRemoteHalf()
	assert.Equal(t, Closed, st.State())
}

func TestStreamCloseHalfIsNoOpFromIdle(t *testing.T) {
	t.Parallel()

	st := newStream(1, defaultInitialWindow, defaultInitialWindow)
	st.closeRemoteHalf()
	assert.Equal(t, Idle, st.State(), "closing a half from Idle should not transition")
}

func TestStreamStateStringer(t *testing.T) {
	t.Parallel()

	cases := map[StreamState]string{
		Idle:             "Idle",
		Open:             "Open",
		HalfClosedLocal:  "HalfClosedLocal",
		HalfClosedRemote: "HalfClosedRemote",
		Closed:           "Closed",
	}
	for state, want := range cases {
		assert.Equal(t, want, state.String())
	}
}

func TestBodyReaderReadsChunksThenEOF(t *testing.T) {
	t.Parallel()

	st := newStream(1, defaultInitialWindow, defaultInitialWindow)
	br := &bodyReader{s: st}

	st.body <- []byte("hello ")
	st.body <- []byte("world")
	close(st.body)

	buf := make([]byte, 64)
	var got []byte
	for {
		n, err := br.Read(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, "hello world", string(got))
}
