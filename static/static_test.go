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

package static_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivaas-dev/netkit/exchange"
	"github.com/rivaas-dev/netkit/neterr"
	"github.com/rivaas-dev/netkit/static"
)

func newExchange(path string) *exchange.Exchange {
	return exchange.New(context.Background(), &exchange.Request{Method: "GET", Path: path})
}

func setupRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "index.html"), []byte("<html>index</html>"), 0o644))
	return dir
}

func TestServeExistingFile(t *testing.T) {
	t.Parallel()

	dir := setupRoot(t)
	h := static.NewHandler(dir, "/static/")
	ex := newExchange("/static/file.txt")

	require.NoError(t, h.Serve(ex))
	assert.Equal(t, 200, ex.Response.Status)

	rc, ok := ex.Response.Body.(io.ReadCloser)
	require.True(t, ok)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestServeDirectoryFallsBackToIndex(t *testing.T) {
	t.Parallel()

	dir := setupRoot(t)
	h := static.NewHandler(dir, "/static/")
	ex := newExchange("/static/sub")

	require.NoError(t, h.Serve(ex))
	assert.Equal(t, 200, ex.Response.Status)

	rc, ok := ex.Response.Body.(io.ReadCloser)
	require.True(t, ok)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "<html>index</html>", string(data))
}

func TestServeMissingFileReturnsNotFound(t *testing.T) {
	t.Parallel()

	dir := setupRoot(t)
	h := static.NewHandler(dir, "/static/")
	ex := newExchange("/static/nope.txt")

	err := h.Serve(ex)
	require.Error(t, err)

	nerr, ok := err.(*neterr.Error)
	require.True(t, ok)
	assert.Equal(t, neterr.NotFound, nerr.Kind)
}

func TestServeRejectsPathTraversal(t *testing.T) {
	t.Parallel()

	dir := setupRoot(t)
	h := static.NewHandler(dir, "/static/")

	cases := []string{
		"/static/../secret.txt",
		"/static/..%2f..%2fetc/passwd",
		"/static/.hidden",
	}
	for _, p := range cases {
		p := p
		t.Run(p, func(t *testing.T) {
			t.Parallel()

			ex := newExchange(p)
			err := h.Serve(ex)
			require.Error(t, err)

			nerr, ok := err.(*neterr.Error)
			require.True(t, ok)
			assert.Equal(t, neterr.NotFound, nerr.Kind)
		})
	}
}

func TestServeRejectsPathOutsidePrefix(t *testing.T) {
	t.Parallel()

	dir := setupRoot(t)
	h := static.NewHandler(dir, "/static/")
	ex := newExchange("/other/file.txt")

	err := h.Serve(ex)
	require.Error(t, err)
}
