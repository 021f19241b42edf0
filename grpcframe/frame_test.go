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

package grpcframe_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/netkit/grpcframe"
)

func TestFrameRoundTripUncompressed(t *testing.T) {
	t.Parallel()

	w := grpcframe.NewWriter(nil, 0)
	msg := []byte("TestMessage payload")

	framed, err := w.Frame(msg)
	require.NoError(t, err)

	r := grpcframe.NewReader(nil, 0)
	r.Write(framed)

	got, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, msg, got)
}

// TestFrameRoundTripArbitraryChunkSplits feeds one framed message into the
// Reader split at every possible byte boundary, confirming the Reader
// reassembles the frame regardless of how the transport happened to
// fragment it across reads.
func TestFrameRoundTripArbitraryChunkSplits(t *testing.T) {
	t.Parallel()

	w := grpcframe.NewWriter(nil, 0)
	msg := bytes.Repeat([]byte("TestMessage"), 37)
	framed, err := w.Frame(msg)
	require.NoError(t, err)

	for split := 0; split <= len(framed); split++ {
		split := split
		t.Run("", func(t *testing.T) {
			t.Parallel()

			r := grpcframe.NewReader(nil, 0)

			_, ok, err := r.Next()
			require.NoError(t, err)
			require.False(t, ok)

			r.Write(framed[:split])
			r.Write(framed[split:])

			got, ok, err := r.Next()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, msg, got)
		})
	}
}

func TestFrameDrainMultipleMessages(t *testing.T) {
	t.Parallel()

	w := grpcframe.NewWriter(nil, 0)
	msgs := [][]byte{[]byte("one"), []byte("two"), []byte("three")}

	r := grpcframe.NewReader(nil, 0)
	for _, m := range msgs {
		framed, err := w.Frame(m)
		require.NoError(t, err)
		r.Write(framed)
	}

	out, err := r.Drain()
	require.NoError(t, err)
	require.Len(t, out, len(msgs))
	for i, m := range msgs {
		assert.Equal(t, m, out[i])
	}
}

func TestFrameCompressedRoundTrip(t *testing.T) {
	t.Parallel()

	comp, err := grpcframe.ByName("gzip")
	require.NoError(t, err)

	w := grpcframe.NewWriter(comp, 0)
	msg := bytes.Repeat([]byte("compressible payload "), 100)

	framed, err := w.Frame(msg)
	require.NoError(t, err)
	assert.Equal(t, byte(1), framed[0], "compression flag should be set")

	r := grpcframe.NewReader(comp, 0)
	r.Write(framed)
	got, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, msg, got)
}

func TestFrameBelowThresholdStaysUncompressed(t *testing.T) {
	t.Parallel()

	comp, err := grpcframe.ByName("gzip")
	require.NoError(t, err)

	w := grpcframe.NewWriter(comp, 1024)
	msg := []byte("short")

	framed, err := w.Frame(msg)
	require.NoError(t, err)
	assert.Equal(t, byte(0), framed[0])
}

func TestReaderRejectsOversizedMessage(t *testing.T) {
	t.Parallel()

	w := grpcframe.NewWriter(nil, 0)
	framed, err := w.Frame(make([]byte, 100))
	require.NoError(t, err)

	r := grpcframe.NewReader(nil, 10)
	r.Write(framed)

	_, _, err = r.Next()
	require.Error(t, err)
}
