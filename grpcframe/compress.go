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

package grpcframe

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"io"

	"github.com/golang/snappy"

	"github.com/rivaas-dev/netkit/neterr"
)

// Compressor compresses and decompresses gRPC message payloads. The three
// built-in implementations correspond to the "gzip", "deflate", and
// "snappy" grpc-encoding values.
type Compressor interface {
	Name() string
	Compress([]byte) ([]byte, error)
	Decompress([]byte) ([]byte, error)
}

// ByName resolves a Compressor for a grpc-encoding header value. "identity"
// and the empty value return a nil Compressor and no error; any value other
// than these and the three supported encodings fails with
// UNSUPPORTED_MEDIA_TYPE, surfaced over gRPC as UNIMPLEMENTED.
func ByName(name string) (Compressor, error) {
	switch name {
	case "gzip":
		return gzipCompressor{}, nil
	case "deflate":
		return deflateCompressor{}, nil
	case "snappy":
		return snappyCompressor{}, nil
	case "identity", "":
		return nil, nil
	default:
		return nil, neterr.New(neterr.UnsupportedMedia, "unknown grpc-encoding %q", name)
	}
}

type gzipCompressor struct{}

func (gzipCompressor) Name() string { return "gzip" }

func (gzipCompressor) Compress(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(p); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gzipCompressor) Decompress(p []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(p))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

type deflateCompressor struct{}

func (deflateCompressor) Name() string { return "deflate" }

func (deflateCompressor) Compress(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(p); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (deflateCompressor) Decompress(p []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(p))
	defer r.Close()
	return io.ReadAll(r)
}

type snappyCompressor struct{}

func (snappyCompressor) Name() string { return "snappy" }

func (snappyCompressor) Compress(p []byte) ([]byte, error) {
	return snappy.Encode(nil, p), nil
}

func (snappyCompressor) Decompress(p []byte) ([]byte, error) {
	return snappy.Decode(nil, p)
}
