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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/netkit/grpcframe"
	"github.com/rivaas-dev/netkit/neterr"
)

func TestByNameBuiltinCompressors(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"gzip", "deflate", "snappy"} {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c, err := grpcframe.ByName(name)
			require.NoError(t, err)
			require.NotNil(t, c)
			assert.Equal(t, name, c.Name())

			msg := []byte("round trip through " + name)
			compressed, err := c.Compress(msg)
			require.NoError(t, err)

			decompressed, err := c.Decompress(compressed)
			require.NoError(t, err)
			assert.Equal(t, msg, decompressed)
		})
	}
}

func TestByNameIdentityReturnsNilCompressor(t *testing.T) {
	t.Parallel()

	c, err := grpcframe.ByName("identity")
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = grpcframe.ByName("")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestByNameUnsupportedEncoding(t *testing.T) {
	t.Parallel()

	_, err := grpcframe.ByName("br")
	require.Error(t, err)

	nerr, ok := err.(*neterr.Error)
	require.True(t, ok, "error should be a *neterr.Error")
	assert.Equal(t, neterr.UnsupportedMedia, nerr.Kind)
}
