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

// Package grpcframe implements the gRPC-over-HTTP/2 message framing layer:
// a 5-byte prefix (1-byte compression flag + 4-byte big-endian length)
// followed by the message payload.
package grpcframe

import (
	"encoding/binary"

	"github.com/rivaas-dev/netkit/neterr"
)

const prefixLen = 5

// Reader consumes a stream of byte chunks (as they arrive off the wire) and
// yields decoded messages, buffering partial frames across chunk
// boundaries. Not safe for concurrent use; one Reader per stream.
type Reader struct {
	compressor Compressor
	maxSize    int
	buf        []byte
}

// NewReader constructs a Reader. compressor may be nil (no compression
// configured); maxSize bounds the payload length declared in the frame
// prefix (the on-wire length, before any decompression), 0 meaning
// unbounded. The decompressed size is not bounded.
func NewReader(compressor Compressor, maxSize int) *Reader {
	return &Reader{compressor: compressor, maxSize: maxSize}
}

// Write feeds one chunk of wire bytes into the reader's internal buffer.
func (r *Reader) Write(chunk []byte) {
	r.buf = append(r.buf, chunk...)
}

// Next attempts to decode one complete frame from the buffered bytes. It
// returns (nil, false, nil) when more data is needed. The returned slice is
// owned by the caller; the reader does not retain it.
func (r *Reader) Next() (msg []byte, ok bool, err error) {
	if len(r.buf) < prefixLen {
		return nil, false, nil
	}
	compressed := r.buf[0] == 1
	length := binary.BigEndian.Uint32(r.buf[1:5])
	if r.maxSize > 0 && int(length) > r.maxSize {
		return nil, false, neterr.New(neterr.ResourceExhausted, "gRPC message length %d exceeds max %d", length, r.maxSize)
	}
	total := prefixLen + int(length)
	if len(r.buf) < total {
		return nil, false, nil
	}

	payload := make([]byte, length)
	copy(payload, r.buf[prefixLen:total])
	r.buf = r.buf[total:]

	if !compressed {
		return payload, true, nil
	}
	if r.compressor == nil {
		return nil, false, neterr.New(neterr.Internal, "gRPC frame is compressed but no compressor is configured")
	}
	decoded, err := r.compressor.Decompress(payload)
	if err != nil {
		return nil, false, neterr.Wrap(neterr.Internal, err)
	}
	return decoded, true, nil
}

// Drain decodes and returns every complete frame currently buffered.
func (r *Reader) Drain() ([][]byte, error) {
	var out [][]byte
	for {
		msg, ok, err := r.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, msg)
	}
}

// Writer serializes outgoing messages into framed buffers, optionally
// compressing when a Compressor is set and the message meets the threshold.
type Writer struct {
	compressor Compressor
	threshold  int
}

// NewWriter constructs a Writer. A message shorter than threshold bytes is
// sent uncompressed even when compressor is non-nil.
func NewWriter(compressor Compressor, threshold int) *Writer {
	return &Writer{compressor: compressor, threshold: threshold}
}

// Frame serializes one message into a single buffer: prefix followed by
// body, compressing the body first if configured and eligible.
func (w *Writer) Frame(msg []byte) ([]byte, error) {
	body := msg
	flag := byte(0)
	if w.compressor != nil && len(msg) >= w.threshold {
		compressed, err := w.compressor.Compress(msg)
		if err != nil {
			return nil, neterr.Wrap(neterr.Internal, err)
		}
		body = compressed
		flag = 1
	}

	out := make([]byte, prefixLen+len(body))
	out[0] = flag
	binary.BigEndian.PutUint32(out[1:5], uint32(len(body)))
	copy(out[prefixLen:], body)
	return out, nil
}
