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

package http1

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/rivaas-dev/netkit/neterr"
)

// limitedBody wraps a Content-Length-bounded io.Reader. A handler that
// never subscribes still lets the connection progress: Close drains any
// unread remainder so the next pipelined request can be read.
type limitedBody struct {
	r io.Reader
}

func (b *limitedBody) Read(p []byte) (int, error) { return b.r.Read(p) }

func (b *limitedBody) Close() error {
	_, err := io.Copy(io.Discard, b.r)
	return err
}

// chunkedReader decodes an HTTP/1.1 chunked transfer-coded body.
type chunkedReader struct {
	r       *bufio.Reader
	remain  int64
	done    bool
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if c.done {
		return 0, io.EOF
	}
	if c.remain == 0 {
		size, err := c.readChunkSize()
		if err != nil {
			return 0, err
		}
		if size == 0 {
			c.done = true
			if err := c.consumeTrailers(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		c.remain = size
	}

	max := int64(len(p))
	if max > c.remain {
		max = c.remain
	}
	n, err := c.r.Read(p[:max])
	c.remain -= int64(n)
	if err != nil {
		return n, neterr.Wrap(neterr.BadRequest, err)
	}
	if c.remain == 0 {
		if _, err := c.r.Discard(2); err != nil { // trailing CRLF after chunk data
			return n, neterr.Wrap(neterr.BadRequest, err)
		}
	}
	return n, nil
}

func (c *chunkedReader) readChunkSize() (int64, error) {
	line, err := c.r.ReadString('\n')
	if err != nil {
		return 0, neterr.Wrap(neterr.BadRequest, err)
	}
	line = strings.TrimRight(line, "\r\n")
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	size, err := strconv.ParseInt(strings.TrimSpace(line), 16, 64)
	if err != nil {
		return 0, neterr.New(neterr.BadRequest, "invalid chunk size: %q", line)
	}
	return size, nil
}

func (c *chunkedReader) consumeTrailers() error {
	for {
		line, err := c.r.ReadString('\n')
		if err != nil {
			return neterr.Wrap(neterr.BadRequest, err)
		}
		if strings.TrimRight(line, "\r\n") == "" {
			return nil
		}
	}
}

func (c *chunkedReader) Close() error {
	if c.done {
		return nil
	}
	_, err := io.Copy(io.Discard, readerFunc(c.Read))
	return err
}

type readerFunc func([]byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }
