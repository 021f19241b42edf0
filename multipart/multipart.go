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

// Package multipart decodes a multipart/form-data byte stream into a lazy,
// finite, non-restartable sequence of Parts, per RFC 7578.
package multipart

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"sync/atomic"

	"github.com/rivaas-dev/netkit/header"
	"github.com/rivaas-dev/netkit/neterr"
)

// Part is one section of a multipart body: its headers, derived name and
// optional filename, and a single-subscription byte stream. A Part's body
// must be fully read or explicitly dropped before the next Part is yielded.
type Part struct {
	Headers  []header.Header
	Name     string
	Filename string

	body     io.Reader
	consumed atomic.Bool
	claimed  atomic.Bool
}

// Read implements io.Reader. Concurrent reads from two goroutines fail with
// STREAM_CONTENTION rather than racing on the underlying buffer.
func (p *Part) Read(buf []byte) (int, error) {
	if !p.claimed.CompareAndSwap(false, true) {
		return 0, neterr.New(neterr.StreamContention, "part %q is already being read", p.Name)
	}
	defer p.claimed.Store(false)
	n, err := p.body.Read(buf)
	if err == io.EOF {
		p.consumed.Store(true)
	}
	return n, err
}

// Drop discards the remainder of the part's body without requiring the
// caller to read it, freeing the decoder to yield the next Part.
func (p *Part) Drop() error {
	if p.consumed.Load() {
		return nil
	}
	_, err := io.Copy(io.Discard, p.body)
	p.consumed.Store(true)
	return err
}

// Decoder yields successive Parts from a multipart/form-data byte stream.
// It is not safe for concurrent use; Parts must be consumed in order.
type Decoder struct {
	r        *bufio.Reader
	boundary string
	done     bool
	current  *Part
	reader   *partBodyReader // body reader of d.current, nil before first part
}

// NewDecoder constructs a Decoder for body, delimited by boundary (the value
// of the Content-Type "boundary" parameter, without the leading "--").
func NewDecoder(body io.Reader, boundary string) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(body, 4096), boundary: boundary}
}

// NextPart advances to and returns the next Part, draining any unconsumed
// remainder of the previous Part first. Returns io.EOF once the closing
// boundary has been consumed.
func (d *Decoder) NextPart() (*Part, error) {
	if d.done {
		return nil, io.EOF
	}
	if d.current != nil {
		if err := d.current.Drop(); err != nil {
			return nil, neterr.Wrap(neterr.BadRequest, err)
		}
		d.current = nil
	}
	d.checkDone()
	if d.done {
		return nil, io.EOF
	}

	if d.reader == nil {
		// First call: no part body reader has run yet to consume a boundary
		// line on our behalf, so explicitly consume the opening one.
		if err := d.consumeBoundaryLine(); err != nil {
			return nil, err
		}
		if d.done {
			return nil, io.EOF
		}
	}

	headers, err := d.readHeaders()
	if err != nil {
		return nil, err
	}
	name, filename := parseContentDisposition(headers)

	bodyReader := newPartBodyReader(d.r, d.boundary)
	d.reader = bodyReader
	part := &Part{Headers: headers, Name: name, Filename: filename, body: bodyReader}
	d.current = part
	return part, nil
}

// consumeBoundaryLine reads one "--boundary" or "--boundary--" line, setting
// d.done when the closing boundary is seen. Used only for the very first
// boundary; subsequent ones are consumed by partBodyReader while scanning
// for the end of a part's body.
func (d *Decoder) consumeBoundaryLine() error {
	line, err := d.r.ReadString('\n')
	if err != nil && line == "" {
		return neterr.Wrap(neterr.BadRequest, err)
	}
	line = strings.TrimRight(line, "\r\n")
	prefix := "--" + d.boundary
	switch {
	case line == prefix+"--":
		d.done = true
		return nil
	case line == prefix:
		return nil
	default:
		return neterr.New(neterr.BadRequest, "multipart: expected boundary line, got %q", line)
	}
}

func (d *Decoder) readHeaders() ([]header.Header, error) {
	var headers []header.Header
	for {
		line, err := d.r.ReadString('\n')
		if err != nil {
			return nil, neterr.Wrap(neterr.BadRequest, err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return headers, nil
		}
		name, val, ok := strings.Cut(line, ":")
		if !ok {
			return nil, neterr.New(neterr.MalformedHeader, "multipart: malformed part header %q", line)
		}
		h, err := header.Decode(strings.TrimSpace(name), val)
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
}

// after NextPart yields a part and the caller fully drains it (or Drop is
// called), the Decoder must know whether the boundary that terminated that
// part's body was the closing one; checkDone reconciles d.done with the
// last body reader's findings.
func (d *Decoder) checkDone() {
	if d.reader != nil && d.reader.terminal {
		d.done = true
	}
}

func parseContentDisposition(headers []header.Header) (name, filename string) {
	for _, h := range headers {
		if !strings.EqualFold(h.Name, "Content-Disposition") {
			continue
		}
		for _, param := range strings.Split(h.Value, ";") {
			param = strings.TrimSpace(param)
			k, v, ok := strings.Cut(param, "=")
			if !ok {
				continue
			}
			v = strings.Trim(v, `"`)
			switch strings.ToLower(strings.TrimSpace(k)) {
			case "name":
				name = v
			case "filename":
				filename = v
			}
		}
	}
	return name, filename
}

// partBodyReader reads bytes up to (but not including) the CRLF preceding
// the next boundary line, consuming that boundary line itself in the
// process and recording whether it was the closing "--boundary--" form.
type partBodyReader struct {
	r        *bufio.Reader
	boundary []byte
	buf      bytes.Buffer
	eof      bool
	terminal bool
}

func newPartBodyReader(r *bufio.Reader, boundary string) *partBodyReader {
	return &partBodyReader{r: r, boundary: []byte("--" + boundary)}
}

func (p *partBodyReader) Read(out []byte) (int, error) {
	if p.eof && p.buf.Len() == 0 {
		return 0, io.EOF
	}
	for p.buf.Len() == 0 {
		line, err := p.r.ReadBytes('\n')
		if err != nil && len(line) == 0 {
			p.eof = true
			return 0, neterr.New(neterr.BadRequest, "multipart: unexpected end of part body")
		}
		trimmed := bytes.TrimRight(line, "\r\n")
		if bytes.HasPrefix(trimmed, p.boundary) {
			p.eof = true
			p.terminal = bytes.Equal(trimmed, append(append([]byte{}, p.boundary...), []byte("--")...))
			return 0, io.EOF
		}
		p.buf.Write(trimmed)
		if next, _ := p.r.Peek(len(p.boundary)); !bytes.Equal(next, p.boundary) {
			p.buf.WriteString("\r\n")
		}
	}
	n, _ := p.buf.Read(out)
	return n, nil
}
