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
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rivaas-dev/netkit/exchange"
)

// writeResponse serializes resp onto w as a complete HTTP/1.1 response,
// computing Content-Length from the body variant (chunked transfer is used
// only when the body length cannot be known up front, e.g. a streamed
// resource).
func writeResponse(w *bufio.Writer, resp *exchange.Response) error {
	resp.Commit()

	reason := resp.Reason
	if reason == "" {
		reason = httpReason(resp.Status)
	}

	var bodyBytes []byte
	switch resp.BodyVariant {
	case exchange.BodyRaw:
		bodyBytes, _ = resp.Body.([]byte)
	case exchange.BodyString:
		s, _ := resp.Body.(string)
		bodyBytes = []byte(s)
	}

	fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", resp.Status, reason)
	for _, h := range resp.Headers {
		fmt.Fprintf(w, "%s: %s\r\n", h.Name, h.Value)
	}

	if resp.BodyVariant == exchange.BodyResource {
		fmt.Fprintf(w, "Transfer-Encoding: chunked\r\n\r\n")
		if r, ok := resp.Body.(io.Reader); ok {
			return writeChunked(w, r)
		}
		return nil
	}

	fmt.Fprintf(w, "Content-Length: %s\r\n\r\n", strconv.Itoa(len(bodyBytes)))
	_, err := w.Write(bodyBytes)
	return err
}

func writeChunked(w *bufio.Writer, r io.Reader) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			fmt.Fprintf(w, "%x\r\n", n)
			w.Write(buf[:n])
			w.WriteString("\r\n")
		}
		if err == io.EOF {
			w.WriteString("0\r\n\r\n")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func httpReason(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Unknown"
}
