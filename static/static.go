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

// Package static serves files from a root directory as Exchange responses,
// rejecting path-traversal attempts and falling back to index.html for
// directory requests.
package static

import (
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/rivaas-dev/netkit/exchange"
	"github.com/rivaas-dev/netkit/neterr"
)

// Handler serves files rooted at Dir, mounted under Prefix in the request
// path space (e.g. Prefix "/static/" against a route registered on pattern
// "/static/*path").
type Handler struct {
	Dir    string
	Prefix string
}

// NewHandler constructs a Handler serving dir under prefix.
func NewHandler(dir, prefix string) *Handler {
	return &Handler{Dir: dir, Prefix: prefix}
}

// Serve implements exchange.Handler. It rejects any path component that is
// absolute or dot-prefixed (".." or a hidden file) as NOT_FOUND, serves
// index.html when the resolved path is a directory, and NOT_FOUND when the
// resolved file does not exist.
func (h *Handler) Serve(ex *exchange.Exchange) error {
	rel := strings.TrimPrefix(ex.Request.Path, h.Prefix)
	if rel == ex.Request.Path && h.Prefix != "" {
		return neterr.New(neterr.NotFound, "path %q is not under %q", ex.Request.Path, h.Prefix)
	}

	full, err := resolve(h.Dir, rel)
	if err != nil {
		return err
	}

	info, err := os.Stat(full)
	if os.IsNotExist(err) {
		return neterr.New(neterr.NotFound, "no such resource: %s", rel)
	}
	if err != nil {
		return neterr.Wrap(neterr.Internal, err)
	}

	if info.IsDir() {
		full = filepath.Join(full, "index.html")
		info, err = os.Stat(full)
		if err != nil {
			return neterr.New(neterr.NotFound, "no index.html for directory: %s", rel)
		}
	}

	f, err := os.Open(full)
	if err != nil {
		return neterr.Wrap(neterr.Internal, err)
	}

	ex.Response.Status = 200
	ex.Response.SetHeader("Content-Type", contentType(full))
	ex.Response.BodyVariant = exchange.BodyResource
	ex.Response.Body = &closingReader{f}
	return nil
}

// resolve joins root with rel, rejecting any component that escapes root
// (an absolute segment, "..", or anything resolving outside root) as
// NOT_FOUND rather than leaking filesystem structure via a different error.
func resolve(root, rel string) (string, error) {
	rel = strings.TrimPrefix(rel, "/")
	for _, seg := range strings.Split(rel, "/") {
		if seg == "" {
			continue
		}
		if seg == ".." || filepath.IsAbs(seg) || strings.HasPrefix(seg, ".") {
			return "", neterr.New(neterr.NotFound, "rejected path segment: %q", seg)
		}
	}
	full := filepath.Join(root, filepath.FromSlash(rel))
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", neterr.New(neterr.NotFound, "path escapes root: %q", rel)
	}
	return full, nil
}

func contentType(path string) string {
	ext := filepath.Ext(path)
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

type closingReader struct {
	f *os.File
}

func (c *closingReader) Read(p []byte) (int, error) { return c.f.Read(p) }
func (c *closingReader) Close() error                { return c.f.Close() }

var _ io.ReadCloser = (*closingReader)(nil)
