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
	"io"
	"strings"

	"github.com/rivaas-dev/netkit/header"
	"github.com/rivaas-dev/netkit/neterr"
)

// readLimitedLine reads one CRLF-terminated line, rejecting lines longer
// than maxHeaderBytes with HEADERS_TOO_LARGE (or URI_TOO_LONG for the
// request line, decided by the caller via the returned error's Kind).
func (c *Conn) readLimitedLine() (string, error) {
	var b strings.Builder
	for {
		chunk, err := c.reader.ReadString('\n')
		b.WriteString(chunk)
		if b.Len() > c.maxHeaderBytes {
			return "", neterr.New(neterr.HeadersTooLarge, "header line exceeds %d bytes", c.maxHeaderBytes)
		}
		if err == nil {
			break
		}
		if err == io.EOF && b.Len() == 0 {
			return "", io.EOF
		}
		if err != nil {
			return "", neterr.Wrap(neterr.BadRequest, err)
		}
	}
	return strings.TrimRight(b.String(), "\r\n"), nil
}

func parseRequestLine(line string) (method, target, proto string, err error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return "", "", "", neterr.New(neterr.BadRequest, "malformed request line: %q", line)
	}
	method, target, proto = parts[0], parts[1], parts[2]
	if len(target) > 8192 {
		return "", "", "", neterr.New(neterr.URITooLong, "request target exceeds 8192 bytes")
	}
	if !strings.HasPrefix(proto, "HTTP/1.") {
		return "", "", "", neterr.New(neterr.BadRequest, "unsupported protocol: %q", proto)
	}
	return method, target, proto, nil
}

func (c *Conn) readHeaders() ([]header.Header, error) {
	var headers []header.Header
	var totalBytes int
	for {
		line, err := c.readLimitedLine()
		if err != nil {
			return nil, err
		}
		if line == "" {
			return headers, nil
		}
		totalBytes += len(line)
		if totalBytes > c.maxHeaderBytes*16 {
			return nil, neterr.New(neterr.HeadersTooLarge, "header block exceeds configured limit")
		}
		name, val, ok := strings.Cut(line, ":")
		if !ok {
			return nil, neterr.New(neterr.MalformedHeader, "malformed header line: %q", line)
		}
		h, err := header.Decode(strings.TrimSpace(name), val)
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
}
